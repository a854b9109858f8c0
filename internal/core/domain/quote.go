package domain

import "time"

// PricedQuote is a time-boxed exchange price used to lock in a swap or
// sell rate before execution. A quote past ExpiresAt must be refreshed
// before execution is permitted.
type PricedQuote struct {
	ID    string
	Pair  Pair
	Price ExchangeRate
	// CreatedAt and ExpiresAt bound the validity window.
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns whether the quote validity window has passed.
func (q PricedQuote) IsExpired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// TimeToExpiry returns how long the quote remains valid, clamped at
// zero.
func (q PricedQuote) TimeToExpiry(now time.Time) time.Duration {
	if q.IsExpired(now) {
		return 0
	}
	return q.ExpiresAt.Sub(now)
}
