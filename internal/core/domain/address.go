package domain

// ReceiveAddress is a destination an account can produce for incoming
// funds.
type ReceiveAddress struct {
	Asset   Asset
	Address string
	Label   string
	// Memo for assets whose venues demand one (XLM style), empty
	// otherwise.
	Memo string
}

// TransferTarget is the destination side of a transaction: either a
// parsed address or another account.
type TransferTarget interface {
	TargetAsset() Asset
	TargetLabel() string
}

// CryptoAddress is an externally provided on-chain destination.
type CryptoAddress struct {
	Asset   Asset
	Address string
	Label   string
	Memo    string
}

func (a CryptoAddress) TargetAsset() Asset {
	return a.Asset
}

func (a CryptoAddress) TargetLabel() string {
	if a.Label != "" {
		return a.Label
	}
	return a.Address
}

// BankAccountTarget is a linked fiat bank account acting as withdrawal
// destination.
type BankAccountTarget struct {
	Currency      Asset
	BankID        string
	AccountNumber string
	AccountType   string
	Label         string
}

func (t BankAccountTarget) TargetAsset() Asset {
	return t.Currency
}

func (t BankAccountTarget) TargetLabel() string {
	return t.Label
}

// AccountTarget wraps an account used as transaction destination.
type AccountTarget struct {
	Account Account
}

func (t AccountTarget) TargetAsset() Asset {
	return t.Account.Asset()
}

func (t AccountTarget) TargetLabel() string {
	return t.Account.Label()
}
