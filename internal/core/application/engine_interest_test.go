package application_test

import (
	"context"
	"testing"

	"github.com/coincore-network/coincore-daemon/internal/core/application"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/stretchr/testify/require"
)

type interestFixture struct {
	deposit   *application.InterestDepositEngine
	withdraw  *application.InterestWithdrawEngine
	custodial *fakeCustodial
}

func newInterestFixture(t *testing.T) interestFixture {
	t.Helper()

	custodial := &fakeCustodial{
		tradingBalances: map[string]domain.AccountBalance{
			"BTC": balanceOf(domain.BTC, "1.0"),
		},
		interestBalance: balanceOf(domain.BTC, "0.4"),
		interestLimits: ports.InterestLimits{
			MinDeposit:    money(domain.BTC, "0.01"),
			MaxWithdrawal: money(domain.BTC, "10"),
		},
		cryptoFee:      money(domain.BTC, "0"),
		cryptoMinLimit: money(domain.BTC, "0.001"),
	}
	identity := application.NewIdentityGate(&fakeIdentity{tier: ports.TierGold, eligible: true})
	rates := &fakeRates{}

	trading := application.NewCustodialTradingAccount(
		domain.BTC, "BTC Trading Account", domain.USD, custodial, rates, identity,
	)
	interest := application.NewInterestAccount(
		domain.BTC, "BTC Interest Account", domain.USD, custodial, rates, identity,
	)

	return interestFixture{
		deposit: application.NewInterestDepositEngine(
			trading, interest, custodial, rates, nil, domain.USD,
		),
		withdraw: application.NewInterestWithdrawEngine(
			interest, trading, custodial, rates, nil, domain.USD,
		),
		custodial: custodial,
	}
}

func TestInterestDepositLimits(t *testing.T) {
	t.Parallel()

	f := newInterestFixture(t)
	ptx, err := f.deposit.InitialiseTx(context.Background())
	require.NoError(t, err)

	require.NotNil(t, ptx.Limits)
	require.True(t, ptx.Limits.Min.Equal(money(domain.BTC, "0.01")))
	// Deposits are capped by the spendable trading balance.
	require.True(t, ptx.Limits.Max.Equal(money(domain.BTC, "1.0")))
	require.True(t, ptx.FeeAmount.IsZero())
}

func TestInterestDepositRequiresAgreements(t *testing.T) {
	t.Parallel()

	f := newInterestFixture(t)
	ctx := context.Background()

	ptx, err := f.deposit.InitialiseTx(ctx)
	require.NoError(t, err)
	ptx, err = f.deposit.UpdateAmount(ctx, money(domain.BTC, "0.1"), ptx)
	require.NoError(t, err)
	ptx, err = f.deposit.BuildConfirmations(ctx, ptx)
	require.NoError(t, err)

	// Both agreements start unticked.
	ptx, err = f.deposit.ValidateAll(ctx, ptx)
	require.NoError(t, err)
	require.Equal(t, domain.ValidationOptionInvalid, ptx.ValidationState)

	// Ticking only the terms agreement is not enough.
	ptx, err = f.deposit.UpdateConfirmation(ctx, ptx, domain.ConfirmAgreement{
		AgreementKind: domain.ConfirmationAgreementInterestTerms,
		Accepted:      true,
	})
	require.NoError(t, err)
	ptx, err = f.deposit.ValidateAll(ctx, ptx)
	require.NoError(t, err)
	require.Equal(t, domain.ValidationOptionInvalid, ptx.ValidationState)

	ptx, err = f.deposit.UpdateConfirmation(ctx, ptx, domain.ConfirmAgreement{
		AgreementKind: domain.ConfirmationAgreementInterestTransfer,
		Accepted:      true,
	})
	require.NoError(t, err)
	ptx, err = f.deposit.ValidateAll(ctx, ptx)
	require.NoError(t, err)
	require.Equal(t, domain.ValidationCanExecute, ptx.ValidationState)
}

func TestInterestDepositValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		expected domain.ValidationState
	}{
		{
			name:     "under_min_deposit",
			amount:   "0.005",
			expected: domain.ValidationUnderMinLimit,
		},
		{
			name:     "over_trading_balance",
			amount:   "1.1",
			expected: domain.ValidationInsufficientFunds,
		},
		{
			name:     "within_limits",
			amount:   "0.5",
			expected: domain.ValidationCanExecute,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newInterestFixture(t)
			ctx := context.Background()

			ptx, err := f.deposit.InitialiseTx(ctx)
			require.NoError(t, err)
			ptx, err = f.deposit.UpdateAmount(ctx, money(domain.BTC, tt.amount), ptx)
			require.NoError(t, err)
			ptx, err = f.deposit.ValidateAmount(ctx, ptx)
			require.NoError(t, err)
			require.Equal(t, tt.expected, ptx.ValidationState)
		})
	}
}

func TestInterestDepositExecute(t *testing.T) {
	t.Parallel()

	f := newInterestFixture(t)
	ctx := context.Background()

	ptx, err := f.deposit.InitialiseTx(ctx)
	require.NoError(t, err)
	ptx, err = f.deposit.UpdateAmount(ctx, money(domain.BTC, "0.2"), ptx)
	require.NoError(t, err)
	ptx, err = f.deposit.BuildConfirmations(ctx, ptx)
	require.NoError(t, err)
	for _, kind := range []domain.ConfirmationKind{
		domain.ConfirmationAgreementInterestTerms,
		domain.ConfirmationAgreementInterestTransfer,
	} {
		ptx, err = f.deposit.UpdateConfirmation(ctx, ptx, domain.ConfirmAgreement{
			AgreementKind: kind, Accepted: true,
		})
		require.NoError(t, err)
	}
	ptx, err = f.deposit.ValidateAll(ctx, ptx)
	require.NoError(t, err)

	result, err := f.deposit.Execute(ctx, ptx, "")
	require.NoError(t, err)
	require.IsType(t, domain.UnHashedTxResult{}, result)
	require.Len(t, f.custodial.deposits, 1)
	require.True(t, f.custodial.deposits[0].Equal(money(domain.BTC, "0.2")))
}

func TestInterestWithdrawMaxIsBalanceBound(t *testing.T) {
	t.Parallel()

	f := newInterestFixture(t)
	ptx, err := f.withdraw.InitialiseTx(context.Background())
	require.NoError(t, err)

	require.NotNil(t, ptx.Limits)
	require.True(t, ptx.Limits.Min.Equal(money(domain.BTC, "0.001")))
	// The venue allows 10 BTC but only 0.4 BTC is held at interest.
	require.True(t, ptx.Limits.Max.Equal(money(domain.BTC, "0.4")))
}

func TestInterestWithdrawExecuteTargetsCustodialAddress(t *testing.T) {
	t.Parallel()

	f := newInterestFixture(t)
	ctx := context.Background()

	ptx, err := f.withdraw.InitialiseTx(ctx)
	require.NoError(t, err)
	ptx, err = f.withdraw.UpdateAmount(ctx, money(domain.BTC, "0.3"), ptx)
	require.NoError(t, err)
	ptx, err = f.withdraw.ValidateAll(ctx, ptx)
	require.NoError(t, err)
	require.True(t, ptx.ValidationState.CanExecute())

	_, err = f.withdraw.Execute(ctx, ptx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"custodial-BTC"}, f.custodial.interestWithdrawals)
}
