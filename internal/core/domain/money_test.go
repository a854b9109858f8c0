package domain_test

import (
	"testing"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMoneyArithmetic(t *testing.T) {
	t.Parallel()

	a := domain.NewMoney(domain.BTC, decimal.NewFromFloat(1.5))
	b := domain.NewMoney(domain.BTC, decimal.NewFromFloat(0.5))

	require.Equal(t, "2.00000000 BTC", a.Add(b).String())
	require.Equal(t, "1.00000000 BTC", a.Sub(b).String())
	require.True(t, a.GreaterThan(b))
	require.True(t, b.LessThan(a))
	require.False(t, a.IsZero())
	require.True(t, domain.ZeroMoney(domain.BTC).IsZero())
}

func TestMoneyMismatchedAssetsPanics(t *testing.T) {
	t.Parallel()

	btc := domain.NewMoney(domain.BTC, decimal.NewFromInt(1))
	eth := domain.NewMoney(domain.ETH, decimal.NewFromInt(1))

	require.Panics(t, func() { btc.Add(eth) })
	require.Panics(t, func() { btc.Sub(eth) })
	require.Panics(t, func() { btc.GreaterThan(eth) })
}

func TestMoneySubToZero(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		balance  float64
		fee      float64
		expected float64
	}{
		{
			name:     "fee_below_balance",
			balance:  1.0,
			fee:      0.2,
			expected: 0.8,
		},
		{
			name:     "fee_equals_balance",
			balance:  0.5,
			fee:      0.5,
			expected: 0,
		},
		{
			name:     "fee_above_balance_clamps_to_zero",
			balance:  0.1,
			fee:      0.5,
			expected: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			balance := domain.NewMoney(domain.BTC, decimal.NewFromFloat(tt.balance))
			fee := domain.NewMoney(domain.BTC, decimal.NewFromFloat(tt.fee))
			got := balance.SubToZero(fee)
			require.True(t, got.Amount().Equal(decimal.NewFromFloat(tt.expected)))
			require.False(t, got.IsNegative())
		})
	}
}

func TestMoneyRounding(t *testing.T) {
	t.Parallel()

	// BTC user precision is 8 decimal places.
	v := domain.NewMoney(domain.BTC, decimal.RequireFromString("0.123456789"))

	ceil := v.RoundCeil()
	floor := v.RoundFloor()

	require.True(t, ceil.Amount().Equal(decimal.RequireFromString("0.12345679")))
	require.True(t, floor.Amount().Equal(decimal.RequireFromString("0.12345678")))
	require.True(t, ceil.GreaterThanOrEqual(v))
	require.True(t, floor.LessThanOrEqual(v))
}

func TestMoneyMinorUnits(t *testing.T) {
	t.Parallel()

	usd := domain.NewMoney(domain.USD, decimal.RequireFromString("12.34"))
	require.Equal(t, int64(1234), usd.MinorUnits())

	btc := domain.NewMoneyFromMinor(domain.BTC, 150000000)
	require.True(t, btc.Amount().Equal(decimal.NewFromFloat(1.5)))
}

func TestMinMaxMoney(t *testing.T) {
	t.Parallel()

	small := domain.NewMoney(domain.BTC, decimal.NewFromInt(1))
	large := domain.NewMoney(domain.BTC, decimal.NewFromInt(2))

	require.Equal(t, small, domain.MinMoney(small, large))
	require.Equal(t, large, domain.MaxMoney(small, large))
}

func TestExchangeRateConvert(t *testing.T) {
	t.Parallel()

	rate := domain.NewExchangeRate(domain.BTC, domain.USD, decimal.NewFromInt(20000))
	amount := domain.NewMoney(domain.BTC, decimal.NewFromFloat(2.0))

	converted := rate.Convert(amount)
	require.Equal(t, domain.USD.Ticker, converted.Asset().Ticker)
	require.True(t, converted.Amount().Equal(decimal.NewFromInt(40000)))

	inverse := rate.Inverse()
	back := inverse.Convert(converted)
	require.True(t, back.Amount().Equal(amount.Amount()))

	require.Panics(t, func() {
		rate.Convert(domain.NewMoney(domain.ETH, decimal.NewFromInt(1)))
	})
}

func TestExchangeRateInverseZero(t *testing.T) {
	t.Parallel()

	rate := domain.NewExchangeRate(domain.BTC, domain.USD, decimal.Zero)
	require.False(t, rate.IsValid())

	require.NotPanics(t, func() {
		inverse := rate.Inverse()
		require.False(t, inverse.IsValid())
		require.True(t, inverse.Rate.IsZero())
	})
}
