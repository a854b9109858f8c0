package application_test

import (
	"context"
	"strings"
	"testing"

	"github.com/coincore-network/coincore-daemon/internal/core/application"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/stretchr/testify/require"
)

type onChainSendFixture struct {
	engine *application.OnChainSendEngine
	wallet *fakeWallet
}

func newOnChainSendFixture(t *testing.T, hook application.TxCompletionHook) *onChainSendFixture {
	t.Helper()

	wallet := &fakeWallet{
		asset:   domain.BTC,
		balance: balanceOf(domain.BTC, "1.0"),
		fees: ports.FeeOptions{
			domain.FeeLevelRegular:  money(domain.BTC, "0.0001"),
			domain.FeeLevelPriority: money(domain.BTC, "0.0005"),
		},
	}
	rates := &fakeRates{}
	source := application.NewOnChainAccount("Private Key Wallet", domain.USD, true, wallet, rates)
	address := domain.CryptoAddress{Asset: domain.BTC, Address: "1ExternalDestination"}

	engine := application.NewOnChainSendEngine(source, address, rates, nil, domain.USD, hook)
	return &onChainSendFixture{engine: engine, wallet: wallet}
}

func TestOnChainSendInitialise(t *testing.T) {
	t.Parallel()

	f := newOnChainSendFixture(t, nil)
	ptx, err := f.engine.InitialiseTx(context.Background())
	require.NoError(t, err)

	require.Equal(t, domain.FeeLevelRegular, ptx.FeeSelection.SelectedLevel)
	require.True(t, ptx.FeeSelection.AvailableLevels.Contains(domain.FeeLevelPriority))
	require.True(t, ptx.FeeSelection.AvailableLevels.Contains(domain.FeeLevelCustom))
	require.False(t, ptx.FeeSelection.AvailableLevels.Contains(domain.FeeLevelNone))

	require.True(t, ptx.FeeAmount.Equal(money(domain.BTC, "0.0001")))
	// The fee comes out of the same balance as the amount.
	require.True(t, ptx.AvailableBalance.Equal(money(domain.BTC, "0.9999")))
}

func TestOnChainSendFeeLevelSwitch(t *testing.T) {
	t.Parallel()

	f := newOnChainSendFixture(t, nil)
	ctx := context.Background()

	ptx, err := f.engine.InitialiseTx(ctx)
	require.NoError(t, err)

	ptx, err = f.engine.UpdateFeeLevel(ctx, ptx, domain.FeeLevelPriority, 0)
	require.NoError(t, err)
	require.True(t, ptx.FeeAmount.Equal(money(domain.BTC, "0.0005")))
	require.True(t, ptx.AvailableBalance.Equal(money(domain.BTC, "0.9995")))

	ptx, err = f.engine.UpdateFeeLevel(ctx, ptx, domain.FeeLevelCustom, 2000)
	require.NoError(t, err)
	require.True(t, ptx.FeeAmount.Equal(domain.NewMoneyFromMinor(domain.BTC, 2000)))
}

func TestOnChainSendRejectsUnofferedFeeLevel(t *testing.T) {
	t.Parallel()

	f := newOnChainSendFixture(t, nil)
	ctx := context.Background()

	ptx, err := f.engine.InitialiseTx(ctx)
	require.NoError(t, err)

	require.Panics(t, func() {
		_, _ = f.engine.UpdateFeeLevel(ctx, ptx, domain.FeeLevelNone, 0)
	})
}

func TestOnChainSendValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		amount       string
		customFee    int64
		expected     domain.ValidationState
		switchCustom bool
	}{
		{
			name:     "within_balance",
			amount:   "0.5",
			expected: domain.ValidationCanExecute,
		},
		{
			name:     "amount_plus_fee_over_balance",
			amount:   "0.99995",
			expected: domain.ValidationInsufficientFunds,
		},
		{
			name:         "custom_fee_not_set",
			amount:       "0.5",
			switchCustom: true,
			customFee:    0,
			expected:     domain.ValidationOptionInvalid,
		},
		{
			name:         "custom_fee_set",
			amount:       "0.5",
			switchCustom: true,
			customFee:    1500,
			expected:     domain.ValidationCanExecute,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newOnChainSendFixture(t, nil)
			ctx := context.Background()

			ptx, err := f.engine.InitialiseTx(ctx)
			require.NoError(t, err)
			if tt.switchCustom {
				ptx, err = f.engine.UpdateFeeLevel(ctx, ptx, domain.FeeLevelCustom, tt.customFee)
				require.NoError(t, err)
			}
			ptx, err = f.engine.UpdateAmount(ctx, money(domain.BTC, tt.amount), ptx)
			require.NoError(t, err)
			ptx, err = f.engine.ValidateAll(ctx, ptx)
			require.NoError(t, err)
			require.Equal(t, tt.expected, ptx.ValidationState)
		})
	}
}

func TestOnChainSendMemoLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		memo     string
		expected domain.ValidationState
	}{
		{
			name:     "short_memo",
			memo:     "x",
			expected: domain.ValidationCanExecute,
		},
		{
			name:     "longest_memo",
			memo:     strings.Repeat("m", 28),
			expected: domain.ValidationCanExecute,
		},
		{
			name:     "oversized_memo",
			memo:     strings.Repeat("m", 29),
			expected: domain.ValidationOptionInvalid,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newOnChainSendFixture(t, nil)
			ctx := context.Background()

			ptx, err := f.engine.InitialiseTx(ctx)
			require.NoError(t, err)
			ptx, err = f.engine.UpdateAmount(ctx, money(domain.BTC, "0.2"), ptx)
			require.NoError(t, err)
			ptx, err = f.engine.UpdateConfirmation(ctx, ptx, domain.ConfirmMemo{Text: tt.memo})
			require.NoError(t, err)
			ptx, err = f.engine.ValidateAll(ctx, ptx)
			require.NoError(t, err)
			require.Equal(t, tt.expected, ptx.ValidationState)
		})
	}
}

func TestOnChainSendLargeTxWarning(t *testing.T) {
	t.Parallel()

	f := newOnChainSendFixture(t, nil)
	ctx := context.Background()

	// At 20,000 USD per BTC, 0.8 BTC crosses the 10,000 USD threshold
	// while 0.3 BTC stays under it.
	ptx, err := f.engine.InitialiseTx(ctx)
	require.NoError(t, err)
	ptx, err = f.engine.UpdateAmount(ctx, money(domain.BTC, "0.8"), ptx)
	require.NoError(t, err)
	ptx, err = f.engine.BuildConfirmations(ctx, ptx)
	require.NoError(t, err)
	_, ok := ptx.ConfirmationByKind(domain.ConfirmationLargeTransactionWarning)
	require.True(t, ok)

	ptx, err = f.engine.UpdateAmount(ctx, money(domain.BTC, "0.3"), ptx)
	require.NoError(t, err)
	ptx, err = f.engine.BuildConfirmations(ctx, ptx)
	require.NoError(t, err)
	_, ok = ptx.ConfirmationByKind(domain.ConfirmationLargeTransactionWarning)
	require.False(t, ok)
}

func TestOnChainSendExecute(t *testing.T) {
	t.Parallel()

	var hookResults []domain.TxResult
	hook := func(ctx context.Context, result domain.TxResult) error {
		hookResults = append(hookResults, result)
		return nil
	}

	f := newOnChainSendFixture(t, hook)
	ctx := context.Background()

	ptx, err := f.engine.InitialiseTx(ctx)
	require.NoError(t, err)
	ptx, err = f.engine.UpdateAmount(ctx, money(domain.BTC, "0.2"), ptx)
	require.NoError(t, err)
	ptx, err = f.engine.UpdateConfirmation(ctx, ptx, domain.ConfirmMemo{Text: "rent"})
	require.NoError(t, err)
	ptx, err = f.engine.ValidateAll(ctx, ptx)
	require.NoError(t, err)

	result, err := f.engine.Execute(ctx, ptx, "hunter2")
	require.NoError(t, err)

	hashed, ok := result.(domain.HashedTxResult)
	require.True(t, ok)
	require.NotEmpty(t, hashed.TxID)

	require.Len(t, f.wallet.sends, 1)
	sent := f.wallet.sends[0]
	require.Equal(t, "1ExternalDestination", sent.Address)
	require.Equal(t, "rent", sent.Memo)
	require.Equal(t, "hunter2", sent.SecondPassword)
	require.True(t, sent.Amount.Equal(money(domain.BTC, "0.2")))

	require.Len(t, hookResults, 1)
	require.Equal(t, result, hookResults[0])
}

func TestOnChainSendHookFailureDoesNotFailTx(t *testing.T) {
	t.Parallel()

	hook := func(ctx context.Context, result domain.TxResult) error {
		return context.DeadlineExceeded
	}

	f := newOnChainSendFixture(t, hook)
	ctx := context.Background()

	ptx, err := f.engine.InitialiseTx(ctx)
	require.NoError(t, err)
	ptx, err = f.engine.UpdateAmount(ctx, money(domain.BTC, "0.1"), ptx)
	require.NoError(t, err)
	ptx, err = f.engine.ValidateAll(ctx, ptx)
	require.NoError(t, err)

	_, err = f.engine.Execute(ctx, ptx, "")
	require.NoError(t, err)
	require.Len(t, f.wallet.sends, 1)
}
