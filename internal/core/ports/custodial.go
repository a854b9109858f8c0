package ports

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
)

// Product scopes fee/limit lookups on the custodial service.
type Product int

const (
	ProductBuy Product = iota
	ProductSell
	ProductSwap
	ProductSavings
	ProductWithdraw
)

// WithdrawFeeAndMinLimit is the fee and the minimum amount the
// custodial service demands for a withdrawal.
type WithdrawFeeAndMinLimit struct {
	Fee      domain.Money
	MinLimit domain.Money
}

// InterestLimits bounds deposits into and withdrawals out of an
// interest account.
type InterestLimits struct {
	MinDeposit    domain.Money
	MaxWithdrawal domain.Money
	// Rate is the current annual interest rate in percent.
	Rate float64
}

// CustodialOrder is an order registered on the custodial ledger.
type CustodialOrder struct {
	ID      string
	QuoteID string
	Volume  domain.Money
}

// CustodialService is the request/response surface of the custodial
// wallet provider, keyed by asset ticker and fiat currency code. The
// implementations backing it are out of scope.
type CustodialService interface {
	TradingBalance(ctx context.Context, asset domain.Asset) (domain.AccountBalance, error)
	InterestBalance(ctx context.Context, asset domain.Asset) (domain.AccountBalance, error)
	FiatBalance(ctx context.Context, currency domain.Asset) (domain.AccountBalance, error)

	FiatWithdrawFeeAndMinLimit(ctx context.Context, currency domain.Asset) (WithdrawFeeAndMinLimit, error)
	CryptoWithdrawFeeAndMinLimit(ctx context.Context, asset domain.Asset, product Product) (WithdrawFeeAndMinLimit, error)
	ProductTransferLimits(ctx context.Context, fiat domain.Asset, product Product) (domain.TransferLimits, error)
	InterestLimits(ctx context.Context, asset domain.Asset) (InterestLimits, error)

	CreateWithdrawOrder(ctx context.Context, amount domain.Money, bankID string) error
	CreateCustodialOrder(
		ctx context.Context, direction domain.TransferDirection,
		quoteID string, volume domain.Money, refundAddress string,
	) (CustodialOrder, error)
	TransferFunds(ctx context.Context, amount domain.Money, address string) error
	CreateInterestDeposit(ctx context.Context, amount domain.Money) error
	CreateInterestWithdrawal(ctx context.Context, amount domain.Money, targetAddress string) error

	// CreatePendingDeposit records an incoming on-chain transfer so the
	// custodial ledger credits it once confirmed.
	CreatePendingDeposit(ctx context.Context, asset domain.Asset, address, hash string, amount domain.Money) error

	CustodialAccountAddress(ctx context.Context, asset domain.Asset) (string, error)
	Activity(ctx context.Context, asset domain.Asset) ([]domain.ActivityItem, error)
	SupportedFiat(ctx context.Context) ([]domain.Asset, error)
	// LinkedBanks lists the bank accounts linked for withdrawals in the
	// given currency.
	LinkedBanks(ctx context.Context, currency domain.Asset) ([]domain.BankAccountTarget, error)
}
