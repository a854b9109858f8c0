package domain

import "context"

// AccountKind is the closed set of venues an account can live on.
// Action routing switches exhaustively on this, so adding a venue is a
// compile-time exercise.
type AccountKind int

const (
	KindNonCustodial AccountKind = iota
	KindCustodialTrading
	KindInterest
	KindLinkedBank
)

func (k AccountKind) String() string {
	switch k {
	case KindNonCustodial:
		return "non_custodial"
	case KindCustodialTrading:
		return "custodial_trading"
	case KindInterest:
		return "interest"
	case KindLinkedBank:
		return "linked_bank"
	default:
		return "unknown"
	}
}

// AccountBalance is the balance snapshot reported by an account.
type AccountBalance struct {
	Total      Money
	Pending    Money
	Actionable Money
	// ExchangeRate used to derive the fiat equivalents, possibly invalid
	// when the rate service is unreachable.
	ExchangeRate ExchangeRate
}

// TotalFiat returns the total balance converted at the snapshot rate,
// or a zero fiat amount when the rate is invalid.
func (b AccountBalance) TotalFiat() Money {
	if !b.ExchangeRate.IsValid() {
		return ZeroMoney(b.ExchangeRate.To)
	}
	return b.ExchangeRate.Convert(b.Total)
}

// TxSourceState tells whether an account can currently act as the
// source of a transaction.
type TxSourceState int

const (
	SourceCanTransact TxSourceState = iota
	SourceNoFunds
	SourceFundsLocked
	SourceNotSupported
)

// Account is one balance-bearing entity: a non-custodial on-chain
// wallet, a custodial trading balance, an interest account or a linked
// fiat bank account.
//
// Balance fetches may hit the network. On-chain accounts must degrade
// to a zero balance with IsFunded()==false on refresh failure rather
// than surfacing the error from Actions.
type Account interface {
	Label() string
	Asset() Asset
	Kind() AccountKind
	Balance(ctx context.Context) (AccountBalance, error)
	Actions(ctx context.Context) (ActionSet, error)
	Activity(ctx context.Context) ([]ActivityItem, error)
	ReceiveAddress(ctx context.Context) (ReceiveAddress, error)
	SourceState(ctx context.Context) (TxSourceState, error)
	IsDefault() bool
	// IsFunded reports the last known funded state. It is eventually
	// consistent: written only by the balance refresh path, read freely.
	IsFunded() bool
}
