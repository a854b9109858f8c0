package domain

// Asset identifies a currency handled by the engine, either a crypto
// asset or a fiat currency.
type Asset struct {
	// Ticker in upper case, eg. "BTC" or "USD".
	Ticker string
	// Precision is the number of decimal places of the asset's minor unit.
	Precision int32
	// UserPrecision is the number of decimal places shown to the user and
	// used when rounding converted limits.
	UserPrecision int32
	// Fiat is true for fiat currencies.
	Fiat bool
}

var (
	BTC = Asset{Ticker: "BTC", Precision: 8, UserPrecision: 8}
	BCH = Asset{Ticker: "BCH", Precision: 8, UserPrecision: 8}
	ETH = Asset{Ticker: "ETH", Precision: 18, UserPrecision: 8}
	XLM = Asset{Ticker: "XLM", Precision: 7, UserPrecision: 7}

	USD = Asset{Ticker: "USD", Precision: 2, UserPrecision: 2, Fiat: true}
	EUR = Asset{Ticker: "EUR", Precision: 2, UserPrecision: 2, Fiat: true}
	GBP = Asset{Ticker: "GBP", Precision: 2, UserPrecision: 2, Fiat: true}
)

// IsCrypto returns whether the asset is a crypto asset.
func (a Asset) IsCrypto() bool {
	return !a.Fiat
}

// IsZero returns whether the asset is the zero value, ie. not a known
// asset.
func (a Asset) IsZero() bool {
	return a.Ticker == ""
}

func (a Asset) String() string {
	return a.Ticker
}

// Pair is an ordered source/destination asset pair, the unit a transfer
// quote is keyed by.
type Pair struct {
	Source      Asset
	Destination Asset
}

func (p Pair) String() string {
	return p.Source.Ticker + "-" + p.Destination.Ticker
}

// TransferDirection qualifies the venues at the two ends of a quoted
// transfer.
type TransferDirection int

const (
	// TransferInternal moves value between two custodial balances.
	TransferInternal TransferDirection = iota
	// TransferFromUserKey moves value from a non-custodial wallet into a
	// custodial balance.
	TransferFromUserKey
	// TransferToUserKey moves value from a custodial balance to a
	// non-custodial wallet.
	TransferToUserKey
)

func (d TransferDirection) String() string {
	switch d {
	case TransferInternal:
		return "internal"
	case TransferFromUserKey:
		return "from_userkey"
	case TransferToUserKey:
		return "to_userkey"
	default:
		return "unknown"
	}
}

// RequiresRefundAddress returns whether an order with this direction
// must carry a refund address for the non-custodial leg.
func (d TransferDirection) RequiresRefundAddress() bool {
	return d == TransferFromUserKey
}
