package application_test

import (
	"context"
	"testing"

	"github.com/coincore-network/coincore-daemon/internal/core/application"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/stretchr/testify/require"
)

func newTradingWithdrawEngine(
	t *testing.T, venueMin string,
) *application.TradingToOnChainEngine {
	t.Helper()

	custodial := &fakeCustodial{
		tradingBalances: map[string]domain.AccountBalance{
			"BTC": balanceOf(domain.BTC, "1.0"),
		},
		cryptoFee:      money(domain.BTC, "0.0005"),
		cryptoMinLimit: money(domain.BTC, venueMin),
		limits: domain.TransferLimits{
			Min: money(domain.USD, "5"),
			Max: money(domain.USD, "50000"),
		},
	}
	identity := application.NewIdentityGate(&fakeIdentity{tier: ports.TierSilver, eligible: true})
	rates := &fakeRates{}

	source := application.NewCustodialTradingAccount(
		domain.BTC, "BTC Trading Account", domain.USD, custodial, rates, identity,
	)
	address := domain.CryptoAddress{Asset: domain.BTC, Address: "1ExternalDestination"}

	return application.NewTradingToOnChainEngine(
		source, address, custodial, application.NewLimitsGate(custodial),
		identity, rates, nil, domain.USD,
	)
}

// The withdrawal minimum is whichever is stricter: the venue's own
// minimum for the asset, or the tiered product minimum converted from
// fiat at the current rate (5 USD at 20,000 USD/BTC -> 0.00025 BTC).
func TestTradingToOnChainMinLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		venueMin string
		wantMin  string
	}{
		{name: "venue minimum stricter", venueMin: "0.001", wantMin: "0.001"},
		{name: "product minimum stricter", venueMin: "0.0001", wantMin: "0.00025"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := newTradingWithdrawEngine(t, tt.venueMin)
			ptx, err := engine.InitialiseTx(context.Background())
			require.NoError(t, err)

			require.NotNil(t, ptx.Limits)
			require.True(t, ptx.Limits.Min.Equal(money(domain.BTC, tt.wantMin)))
			require.True(t, ptx.Limits.Max.Equal(money(domain.BTC, "2.5")))

			// The venue deducts its fee from the balance up front.
			require.True(t, ptx.FeeAmount.Equal(money(domain.BTC, "0.0005")))
			require.True(t, ptx.AvailableBalance.Equal(money(domain.BTC, "0.9995")))
		})
	}
}
