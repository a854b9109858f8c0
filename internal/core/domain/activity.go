package domain

import "time"

// ActivityType classifies a historical item across venues.
type ActivityType int

const (
	ActivitySent ActivityType = iota
	ActivityReceived
	ActivitySwapped
	ActivitySold
	ActivityBought
	ActivityInterestEarned
	ActivityWithdrawn
	ActivityDeposited
)

// ActivityItem is one historical entry, normalized across venues: an
// on-chain transaction, a custodial order, an interest payment or a
// fiat withdrawal all map onto it.
type ActivityItem struct {
	TxID      string
	Type      ActivityType
	Asset     Asset
	Amount    Money
	Fee       Money
	Timestamp time.Time
	Pending   bool
	// Address involved, when the venue exposes one.
	Address string
}
