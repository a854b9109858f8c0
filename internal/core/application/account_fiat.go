package application

import (
	"context"
	"sync/atomic"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
)

// FiatCustodialAccount is a fiat balance held on the custodial ledger,
// funded by deposits and sells, withdrawable to a linked bank.
type FiatCustodialAccount struct {
	currency domain.Asset
	label    string

	custodial ports.CustodialService
	identity  *IdentityGate

	hasFunds atomic.Bool
}

// NewFiatCustodialAccount returns the fiat account for the currency.
func NewFiatCustodialAccount(
	currency domain.Asset, label string,
	custodial ports.CustodialService, identity *IdentityGate,
) *FiatCustodialAccount {
	return &FiatCustodialAccount{
		currency:  currency,
		label:     label,
		custodial: custodial,
		identity:  identity,
	}
}

func (a *FiatCustodialAccount) Label() string            { return a.label }
func (a *FiatCustodialAccount) Asset() domain.Asset      { return a.currency }
func (a *FiatCustodialAccount) Kind() domain.AccountKind { return domain.KindCustodialTrading }
func (a *FiatCustodialAccount) IsDefault() bool          { return false }
func (a *FiatCustodialAccount) IsFunded() bool           { return a.hasFunds.Load() }

func (a *FiatCustodialAccount) Balance(ctx context.Context) (domain.AccountBalance, error) {
	balance, err := a.custodial.FiatBalance(ctx, a.currency)
	if err != nil {
		return domain.AccountBalance{}, err
	}
	a.hasFunds.Store(balance.Total.IsPositive())
	return balance, nil
}

func (a *FiatCustodialAccount) Actions(ctx context.Context) (domain.ActionSet, error) {
	balance, err := a.Balance(ctx)
	if err != nil {
		return nil, err
	}

	actions := domain.NewActionSet(domain.ActionViewActivity, domain.ActionBuy)
	if balance.Actionable.IsPositive() &&
		a.identity.IsEligibleFor(ctx, ports.FeatureWithdrawFiat) {
		actions[domain.ActionFiatWithdraw] = struct{}{}
	}
	return actions, nil
}

func (a *FiatCustodialAccount) Activity(ctx context.Context) ([]domain.ActivityItem, error) {
	return a.custodial.Activity(ctx, a.currency)
}

func (a *FiatCustodialAccount) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	return domain.ReceiveAddress{Asset: a.currency, Label: a.label}, nil
}

func (a *FiatCustodialAccount) SourceState(ctx context.Context) (domain.TxSourceState, error) {
	balance, err := a.Balance(ctx)
	if err != nil {
		return domain.SourceNotSupported, err
	}
	switch {
	case !balance.Total.IsPositive():
		return domain.SourceNoFunds, nil
	case !balance.Actionable.IsPositive():
		return domain.SourceFundsLocked, nil
	default:
		return domain.SourceCanTransact, nil
	}
}

// LinkedBankAccount is a linked fiat bank destination. It bears no
// balance and offers no actions; it only serves as withdrawal target.
type LinkedBankAccount struct {
	currency      domain.Asset
	label         string
	bankID        string
	accountNumber string
	accountType   string

	custodial ports.CustodialService
}

// NewLinkedBankAccount returns the linked bank destination.
func NewLinkedBankAccount(
	currency domain.Asset, label, bankID, accountNumber, accountType string,
	custodial ports.CustodialService,
) *LinkedBankAccount {
	return &LinkedBankAccount{
		currency:      currency,
		label:         label,
		bankID:        bankID,
		accountNumber: accountNumber,
		accountType:   accountType,
		custodial:     custodial,
	}
}

func (a *LinkedBankAccount) Label() string            { return a.label }
func (a *LinkedBankAccount) Asset() domain.Asset      { return a.currency }
func (a *LinkedBankAccount) Kind() domain.AccountKind { return domain.KindLinkedBank }
func (a *LinkedBankAccount) IsDefault() bool          { return false }
func (a *LinkedBankAccount) IsFunded() bool           { return false }

func (a *LinkedBankAccount) Balance(ctx context.Context) (domain.AccountBalance, error) {
	zero := domain.ZeroMoney(a.currency)
	return domain.AccountBalance{Total: zero, Pending: zero, Actionable: zero}, nil
}

func (a *LinkedBankAccount) Actions(ctx context.Context) (domain.ActionSet, error) {
	return domain.NewActionSet(), nil
}

func (a *LinkedBankAccount) Activity(ctx context.Context) ([]domain.ActivityItem, error) {
	return []domain.ActivityItem{}, nil
}

func (a *LinkedBankAccount) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	return domain.ReceiveAddress{
		Asset: a.currency, Address: a.bankID, Label: a.label,
	}, nil
}

func (a *LinkedBankAccount) SourceState(ctx context.Context) (domain.TxSourceState, error) {
	return domain.SourceNotSupported, nil
}

// WithdrawFeeAndMinLimit fetches what the venue charges for withdrawing
// to this bank.
func (a *LinkedBankAccount) WithdrawFeeAndMinLimit(
	ctx context.Context,
) (ports.WithdrawFeeAndMinLimit, error) {
	return a.custodial.FiatWithdrawFeeAndMinLimit(ctx, a.currency)
}

// Target returns the bank as a transfer target.
func (a *LinkedBankAccount) Target() domain.BankAccountTarget {
	return domain.BankAccountTarget{
		Currency:      a.currency,
		BankID:        a.bankID,
		AccountNumber: a.accountNumber,
		AccountType:   a.accountType,
		Label:         a.label,
	}
}
