package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount of a single asset. Arithmetic between
// two Money values of different assets is a programming error and
// panics; cross-asset math must go through an ExchangeRate first.
type Money struct {
	asset Asset
	value decimal.Decimal
}

// NewMoney returns an amount of the given asset expressed in major
// units.
func NewMoney(asset Asset, value decimal.Decimal) Money {
	return Money{asset: asset, value: value}
}

// NewMoneyFromMinor returns an amount of the given asset expressed in
// its minor unit (satoshi, cent, stroop...).
func NewMoneyFromMinor(asset Asset, minor int64) Money {
	return Money{asset: asset, value: decimal.New(minor, -asset.Precision)}
}

// ZeroMoney returns the zero amount of the given asset.
func ZeroMoney(asset Asset) Money {
	return Money{asset: asset, value: decimal.Zero}
}

// Asset returns the asset the amount is denominated in.
func (m Money) Asset() Asset {
	return m.asset
}

// Amount returns the amount in major units.
func (m Money) Amount() decimal.Decimal {
	return m.value
}

// MinorUnits returns the amount in the asset's minor unit, truncated.
func (m Money) MinorUnits() int64 {
	return m.value.Shift(m.asset.Precision).IntPart()
}

func (m Money) assertSameAsset(other Money) {
	if m.asset.Ticker != other.asset.Ticker {
		panic(fmt.Sprintf(
			"money arithmetic between different assets: %s and %s",
			m.asset, other.asset,
		))
	}
}

// Add returns m + other. Panics if the assets differ.
func (m Money) Add(other Money) Money {
	m.assertSameAsset(other)
	return Money{asset: m.asset, value: m.value.Add(other.value)}
}

// Sub returns m - other. Panics if the assets differ.
func (m Money) Sub(other Money) Money {
	m.assertSameAsset(other)
	return Money{asset: m.asset, value: m.value.Sub(other.value)}
}

// SubToZero returns m - other clamped at zero, so that fee-subtracted
// availability never goes negative.
func (m Money) SubToZero(other Money) Money {
	res := m.Sub(other)
	if res.IsNegative() {
		return ZeroMoney(m.asset)
	}
	return res
}

// Cmp compares two amounts of the same asset. Panics if the assets
// differ.
func (m Money) Cmp(other Money) int {
	m.assertSameAsset(other)
	return m.value.Cmp(other.value)
}

// LessThan returns whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.Cmp(other) < 0
}

// LessThanOrEqual returns whether m <= other.
func (m Money) LessThanOrEqual(other Money) bool {
	return m.Cmp(other) <= 0
}

// GreaterThan returns whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.Cmp(other) > 0
}

// GreaterThanOrEqual returns whether m >= other.
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.Cmp(other) >= 0
}

// Equal returns whether the two amounts are the same asset and value.
func (m Money) Equal(other Money) bool {
	return m.asset.Ticker == other.asset.Ticker && m.value.Equal(other.value)
}

// IsZero returns whether the amount is zero.
func (m Money) IsZero() bool {
	return m.value.IsZero()
}

// IsPositive returns whether the amount is strictly positive.
func (m Money) IsPositive() bool {
	return m.value.IsPositive()
}

// IsNegative returns whether the amount is strictly negative.
func (m Money) IsNegative() bool {
	return m.value.IsNegative()
}

// RoundCeil rounds the amount up at the asset's user precision.
func (m Money) RoundCeil() Money {
	return Money{asset: m.asset, value: m.value.RoundCeil(m.asset.UserPrecision)}
}

// RoundFloor rounds the amount down at the asset's user precision.
func (m Money) RoundFloor() Money {
	return Money{asset: m.asset, value: m.value.RoundFloor(m.asset.UserPrecision)}
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.value.StringFixed(m.asset.UserPrecision), m.asset.Ticker)
}

// MaxMoney returns the greater of the two amounts. Panics if the assets
// differ.
func MaxMoney(a, b Money) Money {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// MinMoney returns the smaller of the two amounts. Panics if the assets
// differ.
func MinMoney(a, b Money) Money {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
