package application_test

import (
	"context"
	"testing"

	"github.com/coincore-network/coincore-daemon/internal/core/application"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestIdentityGateVerification(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	gate := application.NewIdentityGate(&fakeIdentity{tier: ports.TierSilver, eligible: true})
	require.True(t, gate.IsVerifiedFor(ctx, ports.TierSilver))
	require.False(t, gate.IsVerifiedFor(ctx, ports.TierGold))
	require.True(t, gate.IsEligibleFor(ctx, ports.FeatureInterest))
}

func TestIdentityGateFailsClosed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	gate := application.NewIdentityGate(&fakeIdentity{tier: ports.TierGold, failing: true})
	require.False(t, gate.IsVerifiedFor(ctx, ports.TierSilver))
	require.False(t, gate.IsEligibleFor(ctx, ports.FeatureInterest))
}

func TestIdentityBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := &fakeIdentity{tier: ports.TierGold, failing: true}
	gate := application.NewIdentityGate(svc)

	// Trip the breaker, then recover the service: the gate keeps
	// answering closed until the breaker times out.
	for i := 0; i < 5; i++ {
		require.False(t, gate.IsVerifiedFor(ctx, ports.TierSilver))
	}
	svc.failing = false
	require.False(t, gate.IsVerifiedFor(ctx, ports.TierSilver))
}

func TestConvertLimitsToAsset(t *testing.T) {
	t.Parallel()

	limits := domain.TransferLimits{
		Min: money(domain.USD, "5"),
		Max: money(domain.USD, "50000"),
	}
	rate := domain.NewExchangeRate(domain.BTC, domain.USD, decimal.NewFromInt(20000))

	converted := application.ConvertLimitsToAsset(limits, rate)
	require.True(t, converted.Min.Equal(money(domain.BTC, "0.00025")))
	require.True(t, converted.Max.Equal(money(domain.BTC, "2.5")))
}

func TestConvertLimitsToAssetRounding(t *testing.T) {
	t.Parallel()

	// 5 USD at 30,000 USD/BTC is 0.000166... BTC. The minimum must round
	// up so an amount exactly on it clears the fiat floor, the maximum
	// must round down so it never exceeds the fiat ceiling.
	limits := domain.TransferLimits{
		Min: money(domain.USD, "5"),
		Max: money(domain.USD, "50000"),
	}
	rate := domain.NewExchangeRate(domain.BTC, domain.USD, decimal.NewFromInt(30000))

	converted := application.ConvertLimitsToAsset(limits, rate)
	require.True(t, converted.Min.Equal(money(domain.BTC, "0.00016667")))
	require.True(t, converted.Max.Equal(money(domain.BTC, "1.66666666")))
}

func TestLimitsGateWrapsErrors(t *testing.T) {
	t.Parallel()

	custodial := &fakeCustodial{limitsErr: context.DeadlineExceeded}
	gate := application.NewLimitsGate(custodial)

	_, err := gate.TransferLimits(context.Background(), domain.USD, ports.ProductWithdraw)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
