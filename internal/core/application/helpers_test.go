package application_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/shopspring/decimal"
	"github.com/thanhpk/randstr"
)

// fakeRates serves a fixed price table. Setting failing makes every
// lookup error, exercising the degrade paths.
type fakeRates struct {
	failing bool
}

func (r *fakeRates) Rate(
	ctx context.Context, from, to domain.Asset,
) (domain.ExchangeRate, error) {
	if r.failing {
		return domain.ExchangeRate{}, context.DeadlineExceeded
	}
	prices := map[string]decimal.Decimal{
		"BTC": decimal.NewFromInt(20000),
		"ETH": decimal.NewFromInt(2000),
	}
	switch {
	case from.Fiat && to.Fiat:
		return domain.NewExchangeRate(from, to, decimal.NewFromInt(1)), nil
	case from.Fiat:
		return domain.NewExchangeRate(from, to, decimal.NewFromInt(1).Div(prices[to.Ticker])), nil
	case to.Fiat:
		return domain.NewExchangeRate(from, to, prices[from.Ticker]), nil
	default:
		return domain.NewExchangeRate(from, to, prices[from.Ticker].Div(prices[to.Ticker])), nil
	}
}

// fakeQuotes mints a fresh quote id on every call and counts calls, so
// tests can observe quote rotation and which directions were requested.
type fakeQuotes struct {
	rates    fakeRates
	calls    int32
	validity time.Duration

	mtx        sync.Mutex
	directions []domain.TransferDirection
}

func (q *fakeQuotes) Quote(
	ctx context.Context, pair domain.Pair, direction domain.TransferDirection,
) (domain.PricedQuote, error) {
	atomic.AddInt32(&q.calls, 1)
	q.mtx.Lock()
	q.directions = append(q.directions, direction)
	q.mtx.Unlock()
	rate, err := q.rates.Rate(ctx, pair.Source, pair.Destination)
	if err != nil {
		return domain.PricedQuote{}, err
	}
	validity := q.validity
	if validity == 0 {
		validity = time.Minute
	}
	now := time.Now()
	return domain.PricedQuote{
		ID:        randstr.Hex(16),
		Pair:      pair,
		Price:     rate,
		CreatedAt: now,
		ExpiresAt: now.Add(validity),
	}, nil
}

func (q *fakeQuotes) callCount() int32 {
	return atomic.LoadInt32(&q.calls)
}

func (q *fakeQuotes) requestedDirections() []domain.TransferDirection {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return append([]domain.TransferDirection(nil), q.directions...)
}

type fakeIdentity struct {
	tier     ports.Tier
	eligible bool
	failing  bool
}

func (i *fakeIdentity) IsVerifiedFor(ctx context.Context, tier ports.Tier) (bool, error) {
	if i.failing {
		return false, context.DeadlineExceeded
	}
	return i.tier >= tier, nil
}

func (i *fakeIdentity) IsEligibleFor(ctx context.Context, feature ports.Feature) (bool, error) {
	if i.failing {
		return false, context.DeadlineExceeded
	}
	return i.eligible, nil
}

// fakeCustodial answers from fixed tables, recording the mutating calls
// so tests can assert on what was submitted.
type fakeCustodial struct {
	tradingBalances map[string]domain.AccountBalance
	fiatBalances    map[string]domain.AccountBalance
	interestBalance domain.AccountBalance

	fiatFee        domain.Money
	fiatMinLimit   domain.Money
	cryptoFee      domain.Money
	cryptoMinLimit domain.Money
	limits         domain.TransferLimits
	limitsErr      error
	interestLimits ports.InterestLimits
	linkedBanks    []domain.BankAccountTarget

	withdrawOrders      []domain.Money
	custodialOrders     []ports.CustodialOrder
	transfers           []string
	deposits            []domain.Money
	interestWithdrawals []string
	pendingDeposits     []string
}

func (c *fakeCustodial) TradingBalance(
	ctx context.Context, asset domain.Asset,
) (domain.AccountBalance, error) {
	return c.tradingBalances[asset.Ticker], nil
}

func (c *fakeCustodial) InterestBalance(
	ctx context.Context, asset domain.Asset,
) (domain.AccountBalance, error) {
	return c.interestBalance, nil
}

func (c *fakeCustodial) FiatBalance(
	ctx context.Context, currency domain.Asset,
) (domain.AccountBalance, error) {
	return c.fiatBalances[currency.Ticker], nil
}

func (c *fakeCustodial) FiatWithdrawFeeAndMinLimit(
	ctx context.Context, currency domain.Asset,
) (ports.WithdrawFeeAndMinLimit, error) {
	return ports.WithdrawFeeAndMinLimit{Fee: c.fiatFee, MinLimit: c.fiatMinLimit}, nil
}

func (c *fakeCustodial) CryptoWithdrawFeeAndMinLimit(
	ctx context.Context, asset domain.Asset, product ports.Product,
) (ports.WithdrawFeeAndMinLimit, error) {
	return ports.WithdrawFeeAndMinLimit{Fee: c.cryptoFee, MinLimit: c.cryptoMinLimit}, nil
}

func (c *fakeCustodial) ProductTransferLimits(
	ctx context.Context, fiat domain.Asset, product ports.Product,
) (domain.TransferLimits, error) {
	if c.limitsErr != nil {
		return domain.TransferLimits{}, c.limitsErr
	}
	return c.limits, nil
}

func (c *fakeCustodial) InterestLimits(
	ctx context.Context, asset domain.Asset,
) (ports.InterestLimits, error) {
	return c.interestLimits, nil
}

func (c *fakeCustodial) CreateWithdrawOrder(
	ctx context.Context, amount domain.Money, bankID string,
) error {
	c.withdrawOrders = append(c.withdrawOrders, amount)
	return nil
}

func (c *fakeCustodial) CreateCustodialOrder(
	ctx context.Context, direction domain.TransferDirection,
	quoteID string, volume domain.Money, refundAddress string,
) (ports.CustodialOrder, error) {
	order := ports.CustodialOrder{
		ID:      randstr.Hex(8),
		QuoteID: quoteID,
		Volume:  volume,
	}
	c.custodialOrders = append(c.custodialOrders, order)
	return order, nil
}

func (c *fakeCustodial) TransferFunds(
	ctx context.Context, amount domain.Money, address string,
) error {
	c.transfers = append(c.transfers, address)
	return nil
}

func (c *fakeCustodial) CreateInterestDeposit(
	ctx context.Context, amount domain.Money,
) error {
	c.deposits = append(c.deposits, amount)
	return nil
}

func (c *fakeCustodial) CreateInterestWithdrawal(
	ctx context.Context, amount domain.Money, targetAddress string,
) error {
	c.interestWithdrawals = append(c.interestWithdrawals, targetAddress)
	return nil
}

func (c *fakeCustodial) CreatePendingDeposit(
	ctx context.Context, asset domain.Asset, address, hash string, amount domain.Money,
) error {
	c.pendingDeposits = append(c.pendingDeposits, hash)
	return nil
}

func (c *fakeCustodial) CustodialAccountAddress(
	ctx context.Context, asset domain.Asset,
) (string, error) {
	return "custodial-" + asset.Ticker, nil
}

func (c *fakeCustodial) Activity(
	ctx context.Context, asset domain.Asset,
) ([]domain.ActivityItem, error) {
	return nil, nil
}

func (c *fakeCustodial) SupportedFiat(ctx context.Context) ([]domain.Asset, error) {
	return []domain.Asset{domain.USD, domain.EUR}, nil
}

func (c *fakeCustodial) LinkedBanks(
	ctx context.Context, currency domain.Asset,
) ([]domain.BankAccountTarget, error) {
	var banks []domain.BankAccountTarget
	for _, bank := range c.linkedBanks {
		if bank.Currency.Ticker == currency.Ticker {
			banks = append(banks, bank)
		}
	}
	return banks, nil
}

type fakeWallet struct {
	asset   domain.Asset
	balance domain.AccountBalance
	fees    ports.FeeOptions
	sends   []ports.SendRequest
}

func (w *fakeWallet) Asset() domain.Asset { return w.asset }

func (w *fakeWallet) Balance(ctx context.Context) (domain.AccountBalance, error) {
	return w.balance, nil
}

func (w *fakeWallet) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	return domain.ReceiveAddress{
		Asset:   w.asset,
		Address: "onchain-" + w.asset.Ticker,
	}, nil
}

func (w *fakeWallet) FeeOptions(ctx context.Context) (ports.FeeOptions, error) {
	return w.fees, nil
}

func (w *fakeWallet) History(ctx context.Context) ([]domain.ActivityItem, error) {
	return nil, nil
}

func (w *fakeWallet) Send(ctx context.Context, req ports.SendRequest) (string, error) {
	w.sends = append(w.sends, req)
	return randstr.Hex(32), nil
}

func money(asset domain.Asset, value string) domain.Money {
	return domain.NewMoney(asset, decimal.RequireFromString(value))
}

func balanceOf(asset domain.Asset, value string) domain.AccountBalance {
	total := money(asset, value)
	return domain.AccountBalance{
		Total:      total,
		Pending:    domain.ZeroMoney(asset),
		Actionable: total,
	}
}
