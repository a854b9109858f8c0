package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ExchangeRate expresses how much one unit of From is worth in To.
type ExchangeRate struct {
	From Asset
	To   Asset
	Rate decimal.Decimal
}

// NewExchangeRate returns the rate between the two assets.
func NewExchangeRate(from, to Asset, rate decimal.Decimal) ExchangeRate {
	return ExchangeRate{From: from, To: to, Rate: rate}
}

// IsValid returns whether the rate can be used for conversions.
func (r ExchangeRate) IsValid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && r.Rate.IsPositive()
}

// Convert converts an amount of From into the equivalent amount of To.
// Panics if the amount is not denominated in From.
func (r ExchangeRate) Convert(m Money) Money {
	if m.Asset().Ticker != r.From.Ticker {
		panic(fmt.Sprintf(
			"cannot convert %s with a %s/%s rate", m.Asset(), r.From, r.To,
		))
	}
	return NewMoney(r.To, m.Amount().Mul(r.Rate))
}

// Inverse returns the To/From rate. An invalid rate inverts to the
// zero value rather than dividing by zero.
func (r ExchangeRate) Inverse() ExchangeRate {
	if r.Rate.IsZero() {
		return ExchangeRate{}
	}
	return ExchangeRate{
		From: r.To,
		To:   r.From,
		Rate: decimal.NewFromInt(1).Div(r.Rate),
	}
}

func (r ExchangeRate) String() string {
	return fmt.Sprintf("1 %s = %s %s", r.From, r.Rate, r.To)
}
