package main

import (
	"context"
	"sync"
	"time"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/shopspring/decimal"
	"github.com/thanhpk/randstr"
)

// The simulator runs the full engine pipeline against these in-process
// service fakes, seeded with deterministic balances and prices.

type simRates struct{}

func (simRates) Rate(
	ctx context.Context, from, to domain.Asset,
) (domain.ExchangeRate, error) {
	prices := map[string]decimal.Decimal{
		"BTC": decimal.NewFromInt(60000),
		"BCH": decimal.NewFromInt(300),
		"ETH": decimal.NewFromInt(2500),
		"XLM": decimal.NewFromFloat(0.11),
	}
	switch {
	case from.Fiat && to.Fiat:
		return domain.NewExchangeRate(from, to, decimal.NewFromInt(1)), nil
	case from.Fiat:
		return domain.NewExchangeRate(from, to, decimal.NewFromInt(1).Div(prices[to.Ticker])), nil
	case to.Fiat:
		return domain.NewExchangeRate(from, to, prices[from.Ticker]), nil
	default:
		rate := prices[from.Ticker].Div(prices[to.Ticker])
		return domain.NewExchangeRate(from, to, rate), nil
	}
}

type simQuotes struct {
	rates simRates
}

func (q simQuotes) Quote(
	ctx context.Context, pair domain.Pair, direction domain.TransferDirection,
) (domain.PricedQuote, error) {
	rate, err := q.rates.Rate(ctx, pair.Source, pair.Destination)
	if err != nil {
		return domain.PricedQuote{}, err
	}
	now := time.Now()
	return domain.PricedQuote{
		ID:        randstr.Hex(16),
		Pair:      pair,
		Price:     rate,
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Second),
	}, nil
}

type simIdentity struct {
	tier ports.Tier
}

func (i simIdentity) IsVerifiedFor(ctx context.Context, tier ports.Tier) (bool, error) {
	return i.tier >= tier, nil
}

func (i simIdentity) IsEligibleFor(ctx context.Context, feature ports.Feature) (bool, error) {
	return true, nil
}

type simCustodial struct {
	mtx      sync.Mutex
	rates    simRates
	userFiat domain.Asset
	balances map[string]decimal.Decimal
}

func newSimCustodial(userFiat domain.Asset) *simCustodial {
	return &simCustodial{
		rates:    simRates{},
		userFiat: userFiat,
		balances: map[string]decimal.Decimal{
			"BTC": decimal.NewFromFloat(0.5),
			"ETH": decimal.NewFromInt(4),
			"USD": decimal.NewFromInt(2500),
		},
	}
}

func (s *simCustodial) balance(asset domain.Asset) domain.AccountBalance {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	total := domain.NewMoney(asset, s.balances[asset.Ticker])
	rate, _ := s.rates.Rate(context.Background(), asset, s.userFiat)
	return domain.AccountBalance{
		Total:        total,
		Pending:      domain.ZeroMoney(asset),
		Actionable:   total,
		ExchangeRate: rate,
	}
}

func (s *simCustodial) debit(asset domain.Asset, amount domain.Money) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	next := s.balances[asset.Ticker].Sub(amount.Amount())
	if next.IsNegative() {
		next = decimal.Zero
	}
	s.balances[asset.Ticker] = next
}

func (s *simCustodial) TradingBalance(
	ctx context.Context, asset domain.Asset,
) (domain.AccountBalance, error) {
	return s.balance(asset), nil
}

func (s *simCustodial) InterestBalance(
	ctx context.Context, asset domain.Asset,
) (domain.AccountBalance, error) {
	return domain.AccountBalance{
		Total:      domain.ZeroMoney(asset),
		Pending:    domain.ZeroMoney(asset),
		Actionable: domain.ZeroMoney(asset),
	}, nil
}

func (s *simCustodial) FiatBalance(
	ctx context.Context, currency domain.Asset,
) (domain.AccountBalance, error) {
	return s.balance(currency), nil
}

func (s *simCustodial) FiatWithdrawFeeAndMinLimit(
	ctx context.Context, currency domain.Asset,
) (ports.WithdrawFeeAndMinLimit, error) {
	return ports.WithdrawFeeAndMinLimit{
		Fee:      domain.NewMoney(currency, decimal.NewFromInt(1)),
		MinLimit: domain.NewMoney(currency, decimal.NewFromInt(10)),
	}, nil
}

func (s *simCustodial) CryptoWithdrawFeeAndMinLimit(
	ctx context.Context, asset domain.Asset, product ports.Product,
) (ports.WithdrawFeeAndMinLimit, error) {
	return ports.WithdrawFeeAndMinLimit{
		Fee:      domain.NewMoneyFromMinor(asset, 1000),
		MinLimit: domain.NewMoneyFromMinor(asset, 10000),
	}, nil
}

func (s *simCustodial) ProductTransferLimits(
	ctx context.Context, fiat domain.Asset, product ports.Product,
) (domain.TransferLimits, error) {
	return domain.TransferLimits{
		Min: domain.NewMoney(fiat, decimal.NewFromInt(5)),
		Max: domain.NewMoney(fiat, decimal.NewFromInt(50000)),
	}, nil
}

func (s *simCustodial) InterestLimits(
	ctx context.Context, asset domain.Asset,
) (ports.InterestLimits, error) {
	return ports.InterestLimits{
		MinDeposit:    domain.NewMoneyFromMinor(asset, 10000),
		MaxWithdrawal: domain.NewMoney(asset, decimal.NewFromInt(1)),
		Rate:          4.5,
	}, nil
}

func (s *simCustodial) CreateWithdrawOrder(
	ctx context.Context, amount domain.Money, bankID string,
) error {
	s.debit(amount.Asset(), amount)
	return nil
}

func (s *simCustodial) CreateCustodialOrder(
	ctx context.Context, direction domain.TransferDirection,
	quoteID string, volume domain.Money, refundAddress string,
) (ports.CustodialOrder, error) {
	if direction == domain.TransferInternal {
		s.debit(volume.Asset(), volume)
	}
	return ports.CustodialOrder{
		ID:      randstr.Hex(8),
		QuoteID: quoteID,
		Volume:  volume,
	}, nil
}

func (s *simCustodial) TransferFunds(
	ctx context.Context, amount domain.Money, address string,
) error {
	s.debit(amount.Asset(), amount)
	return nil
}

func (s *simCustodial) CreateInterestDeposit(
	ctx context.Context, amount domain.Money,
) error {
	s.debit(amount.Asset(), amount)
	return nil
}

func (s *simCustodial) CreateInterestWithdrawal(
	ctx context.Context, amount domain.Money, targetAddress string,
) error {
	return nil
}

func (s *simCustodial) CreatePendingDeposit(
	ctx context.Context, asset domain.Asset, address, hash string, amount domain.Money,
) error {
	return nil
}

func (s *simCustodial) CustodialAccountAddress(
	ctx context.Context, asset domain.Asset,
) (string, error) {
	return "sim-custodial-" + asset.Ticker, nil
}

func (s *simCustodial) Activity(
	ctx context.Context, asset domain.Asset,
) ([]domain.ActivityItem, error) {
	return nil, nil
}

func (s *simCustodial) SupportedFiat(ctx context.Context) ([]domain.Asset, error) {
	return []domain.Asset{domain.USD, domain.EUR, domain.GBP}, nil
}

func (s *simCustodial) LinkedBanks(
	ctx context.Context, currency domain.Asset,
) ([]domain.BankAccountTarget, error) {
	return []domain.BankAccountTarget{{
		Currency:      currency,
		BankID:        "sim-bank",
		AccountNumber: "****1234",
		AccountType:   "checking",
		Label:         "Sim Bank",
	}}, nil
}

type simWallet struct {
	mtx     sync.Mutex
	asset   domain.Asset
	balance decimal.Decimal
}

func newSimWallet(asset domain.Asset, balance decimal.Decimal) *simWallet {
	return &simWallet{asset: asset, balance: balance}
}

func (w *simWallet) Asset() domain.Asset { return w.asset }

func (w *simWallet) Balance(ctx context.Context) (domain.AccountBalance, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	total := domain.NewMoney(w.asset, w.balance)
	return domain.AccountBalance{
		Total:      total,
		Pending:    domain.ZeroMoney(w.asset),
		Actionable: total,
	}, nil
}

func (w *simWallet) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	return domain.ReceiveAddress{
		Asset:   w.asset,
		Address: "sim-onchain-" + w.asset.Ticker,
		Label:   w.asset.Ticker + " Wallet",
	}, nil
}

func (w *simWallet) FeeOptions(ctx context.Context) (ports.FeeOptions, error) {
	return ports.FeeOptions{
		domain.FeeLevelRegular:  domain.NewMoneyFromMinor(w.asset, 500),
		domain.FeeLevelPriority: domain.NewMoneyFromMinor(w.asset, 2000),
	}, nil
}

func (w *simWallet) History(ctx context.Context) ([]domain.ActivityItem, error) {
	return nil, nil
}

func (w *simWallet) Send(ctx context.Context, req ports.SendRequest) (string, error) {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	w.balance = w.balance.Sub(req.Amount.Amount()).Sub(req.Fee.Amount())
	if w.balance.IsNegative() {
		w.balance = decimal.Zero
	}
	return randstr.Hex(32), nil
}
