package domain

// ConfirmationKind discriminates the closed set of confirmation line
// items. Per-kind patching matches on it.
type ConfirmationKind int

const (
	ConfirmationFrom ConfirmationKind = iota
	ConfirmationTo
	ConfirmationAmount
	ConfirmationReceivedAmount
	ConfirmationTransactionFee
	ConfirmationNetworkFee
	ConfirmationTotal
	ConfirmationMemo
	ConfirmationDescription
	ConfirmationPaymentMethod
	ConfirmationEstimatedCompletion
	ConfirmationExchangePrice
	ConfirmationSale
	ConfirmationAgreementInterestTerms
	ConfirmationAgreementInterestTransfer
	ConfirmationLargeTransactionWarning
)

// TxConfirmation is one user-visible fact about a pending transaction,
// shown before execution.
type TxConfirmation interface {
	Kind() ConfirmationKind
}

// ConfirmFrom names the source account.
type ConfirmFrom struct {
	Label string
	Asset Asset
}

func (ConfirmFrom) Kind() ConfirmationKind { return ConfirmationFrom }

// ConfirmTo names the destination.
type ConfirmTo struct {
	Label  string
	Action AssetAction
}

func (ConfirmTo) Kind() ConfirmationKind { return ConfirmationTo }

// ConfirmAmount is the transacted amount. Received marks the line as
// the amount landing on the destination after fees.
type ConfirmAmount struct {
	Amount   Money
	Received bool
}

func (c ConfirmAmount) Kind() ConfirmationKind {
	if c.Received {
		return ConfirmationReceivedAmount
	}
	return ConfirmationAmount
}

// ConfirmTransactionFee is a venue fee charged on top of the amount.
type ConfirmTransactionFee struct {
	Fee Money
}

func (ConfirmTransactionFee) Kind() ConfirmationKind { return ConfirmationTransactionFee }

// ConfirmNetworkFee is an on-chain network fee with its fiat exchange
// value.
type ConfirmNetworkFee struct {
	Fee      Money
	Exchange Money
	Asset    Asset
}

func (ConfirmNetworkFee) Kind() ConfirmationKind { return ConfirmationNetworkFee }

// ConfirmTotal is amount plus fee with its fiat exchange value.
type ConfirmTotal struct {
	TotalWithFee Money
	Exchange     Money
}

func (ConfirmTotal) Kind() ConfirmationKind { return ConfirmationTotal }

// ConfirmMemo is a user-editable memo attached to the destination.
type ConfirmMemo struct {
	Text string
}

func (ConfirmMemo) Kind() ConfirmationKind { return ConfirmationMemo }

// ConfirmDescription is a user-editable free-text note.
type ConfirmDescription struct {
	Text string
}

func (ConfirmDescription) Kind() ConfirmationKind { return ConfirmationDescription }

// ConfirmPaymentMethod describes the bank destination of a fiat
// withdrawal.
type ConfirmPaymentMethod struct {
	Label         string
	AccountNumber string
	AccountType   string
	Action        AssetAction
}

func (ConfirmPaymentMethod) Kind() ConfirmationKind { return ConfirmationPaymentMethod }

// ConfirmEstimatedCompletion tells the user the transaction settles
// asynchronously.
type ConfirmEstimatedCompletion struct{}

func (ConfirmEstimatedCompletion) Kind() ConfirmationKind { return ConfirmationEstimatedCompletion }

// ConfirmExchangePrice is the quote price a swap or sell is locked
// against.
type ConfirmExchangePrice struct {
	Price Money
	Asset Asset
}

func (ConfirmExchangePrice) Kind() ConfirmationKind { return ConfirmationExchangePrice }

// ConfirmSale is the sold amount with its fiat exchange value.
type ConfirmSale struct {
	Amount   Money
	Exchange Money
}

func (ConfirmSale) Kind() ConfirmationKind { return ConfirmationSale }

// ConfirmAgreement is a checkbox the user must tick before executing.
type ConfirmAgreement struct {
	AgreementKind ConfirmationKind
	Accepted      bool
}

func (c ConfirmAgreement) Kind() ConfirmationKind { return c.AgreementKind }

// ConfirmLargeTransactionWarning flags amounts above the configured
// fiat threshold.
type ConfirmLargeTransactionWarning struct {
	Threshold Money
}

func (ConfirmLargeTransactionWarning) Kind() ConfirmationKind {
	return ConfirmationLargeTransactionWarning
}
