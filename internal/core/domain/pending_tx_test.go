package domain_test

import (
	"testing"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestPendingTx() *domain.PendingTx {
	return &domain.PendingTx{
		Amount:           domain.NewMoney(domain.BTC, decimal.NewFromFloat(0.5)),
		TotalBalance:     domain.NewMoney(domain.BTC, decimal.NewFromInt(2)),
		AvailableBalance: domain.NewMoney(domain.BTC, decimal.NewFromInt(2)),
		FeeAmount:        domain.NewMoneyFromMinor(domain.BTC, 1000),
		FeeSelection:     domain.NewFeeSelection(),
		Limits: &domain.TransferLimits{
			Min: domain.NewMoneyFromMinor(domain.BTC, 10000),
			Max: domain.NewMoney(domain.BTC, decimal.NewFromInt(1)),
		},
		SelectedFiat: domain.USD,
		Confirmations: []domain.TxConfirmation{
			domain.ConfirmAmount{Amount: domain.NewMoney(domain.BTC, decimal.NewFromFloat(0.5))},
		},
		ValidationState: domain.ValidationCanExecute,
	}
}

func TestPendingTxCopy(t *testing.T) {
	t.Parallel()

	original := newTestPendingTx()
	replacement := original.Copy()

	replacement.Confirmations[0] = domain.ConfirmMemo{Text: "changed"}
	replacement.Limits.Min = domain.ZeroMoney(domain.BTC)
	replacement.Memo = &domain.Memo{Text: "note"}

	require.IsType(t, domain.ConfirmAmount{}, original.Confirmations[0])
	require.True(t, original.Limits.Min.Equal(domain.NewMoneyFromMinor(domain.BTC, 10000)))
	require.Nil(t, original.Memo)
}

func TestPendingTxLimitViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		amount      decimal.Decimal
		minViolated bool
		maxViolated bool
	}{
		{
			name:        "below_min",
			amount:      decimal.RequireFromString("0.00005"),
			minViolated: true,
		},
		{
			name:   "exactly_min",
			amount: decimal.RequireFromString("0.0001"),
		},
		{
			name:   "exactly_max",
			amount: decimal.NewFromInt(1),
		},
		{
			name:        "above_max",
			amount:      decimal.RequireFromString("1.00000001"),
			maxViolated: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ptx := newTestPendingTx()
			ptx.Amount = domain.NewMoney(domain.BTC, tt.amount)
			require.Equal(t, tt.minViolated, ptx.IsMinLimitViolated())
			require.Equal(t, tt.maxViolated, ptx.IsMaxLimitViolated())
		})
	}
}

func TestPendingTxNilLimitsNeverViolated(t *testing.T) {
	t.Parallel()

	ptx := newTestPendingTx()
	ptx.Limits = nil

	require.False(t, ptx.IsMinLimitViolated())
	require.False(t, ptx.IsMaxLimitViolated())
}

func TestPendingTxTotal(t *testing.T) {
	t.Parallel()

	ptx := newTestPendingTx()
	total := ptx.Total()
	require.True(t, total.Equal(ptx.Amount.Add(ptx.FeeAmount)))
}

func TestPendingTxAddOrReplaceConfirmation(t *testing.T) {
	t.Parallel()

	ptx := newTestPendingTx()
	ptx.Confirmations = []domain.TxConfirmation{
		domain.ConfirmFrom{Label: "source", Asset: domain.BTC},
		domain.ConfirmAmount{Amount: ptx.Amount},
		domain.ConfirmMemo{Text: "before"},
	}

	ptx.AddOrReplaceConfirmation(domain.ConfirmMemo{Text: "after"})

	require.Len(t, ptx.Confirmations, 3)
	memo, ok := ptx.ConfirmationByKind(domain.ConfirmationMemo)
	require.True(t, ok)
	require.Equal(t, "after", memo.(domain.ConfirmMemo).Text)
	// Order preserved: memo stays in third position.
	require.IsType(t, domain.ConfirmMemo{}, ptx.Confirmations[2])

	ptx.AddOrReplaceConfirmation(domain.ConfirmDescription{Text: "new line"})
	require.Len(t, ptx.Confirmations, 4)
}

func TestValidationStates(t *testing.T) {
	t.Parallel()

	require.True(t, domain.ValidationCanExecute.CanExecute())
	require.False(t, domain.ValidationUninitialised.CanExecute())
	require.False(t, domain.ValidationInsufficientFunds.CanExecute())

	failure := domain.NewValidationFailure(domain.ValidationUnderMinLimit)
	var txFailure *domain.TxValidationFailure
	require.ErrorAs(t, failure, &txFailure)
	require.Equal(t, domain.ValidationUnderMinLimit, txFailure.State)
}

func TestFeeSelectionDefault(t *testing.T) {
	t.Parallel()

	selection := domain.NewFeeSelection()
	require.Equal(t, domain.FeeLevelNone, selection.SelectedLevel)
	require.True(t, selection.AvailableLevels.Contains(domain.FeeLevelNone))
	require.False(t, selection.AvailableLevels.Contains(domain.FeeLevelRegular))
}
