package application

import (
	"context"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
)

// CustodialTradingAccount is a crypto balance held on the custodial
// ledger. Its funded flag is a single-writer cached field, written only
// from the balance refresh path and eventually consistent.
type CustodialTradingAccount struct {
	asset    domain.Asset
	label    string
	userFiat domain.Asset

	custodial ports.CustodialService
	rates     ports.RateService
	identity  *IdentityGate

	hasFunds        atomic.Bool
	hasTransactions atomic.Bool
}

// NewCustodialTradingAccount returns the trading account for the asset.
func NewCustodialTradingAccount(
	asset domain.Asset, label string, userFiat domain.Asset,
	custodial ports.CustodialService, rates ports.RateService, identity *IdentityGate,
) *CustodialTradingAccount {
	return &CustodialTradingAccount{
		asset:     asset,
		label:     label,
		userFiat:  userFiat,
		custodial: custodial,
		rates:     rates,
		identity:  identity,
	}
}

func (a *CustodialTradingAccount) Label() string            { return a.label }
func (a *CustodialTradingAccount) Asset() domain.Asset      { return a.asset }
func (a *CustodialTradingAccount) Kind() domain.AccountKind { return domain.KindCustodialTrading }

// Default is, presently, only ever a non-custodial account.
func (a *CustodialTradingAccount) IsDefault() bool { return false }

func (a *CustodialTradingAccount) IsFunded() bool { return a.hasFunds.Load() }

// Balance fetches the custodial balance and the display rate together.
// A missing rate degrades to an invalid rate, not an error.
func (a *CustodialTradingAccount) Balance(ctx context.Context) (domain.AccountBalance, error) {
	var balance domain.AccountBalance
	var rate domain.ExchangeRate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := a.custodial.TradingBalance(gctx, a.asset)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	g.Go(func() error {
		r, err := a.rates.Rate(gctx, a.asset, a.userFiat)
		if err != nil {
			log.WithError(err).WithField("asset", a.asset.Ticker).
				Warn("could not fetch display rate for trading balance")
			return nil
		}
		rate = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.AccountBalance{}, err
	}

	balance.ExchangeRate = rate
	a.hasFunds.Store(balance.Total.IsPositive())
	return balance, nil
}

// Actions derives the available actions from balance, eligibility and
// venue capability. Eligibility checks fail closed inside the gate.
func (a *CustodialTradingAccount) Actions(ctx context.Context) (domain.ActionSet, error) {
	balance, err := a.Balance(ctx)
	if err != nil {
		return nil, err
	}

	funded := balance.Total.IsPositive()
	actionable := balance.Actionable.IsPositive()
	eligibleBuy := a.identity.IsEligibleFor(ctx, ports.FeatureSimpleBuy)
	eligibleInterest := a.identity.IsEligibleFor(ctx, ports.FeatureInterest)

	fiatAccounts, err := a.custodial.SupportedFiat(ctx)
	if err != nil {
		fiatAccounts = nil
	}

	actions := domain.NewActionSet(domain.ActionReceive, domain.ActionBuy)
	if a.hasTransactions.Load() {
		actions[domain.ActionViewActivity] = struct{}{}
	}
	if funded && actionable {
		actions[domain.ActionSend] = struct{}{}
	}
	if funded && eligibleInterest {
		actions[domain.ActionInterestDeposit] = struct{}{}
	}
	if funded && eligibleBuy {
		actions[domain.ActionSwap] = struct{}{}
		if len(fiatAccounts) > 0 {
			actions[domain.ActionSell] = struct{}{}
		}
	}
	return actions, nil
}

func (a *CustodialTradingAccount) Activity(ctx context.Context) ([]domain.ActivityItem, error) {
	items, err := a.custodial.Activity(ctx, a.asset)
	if err != nil {
		log.WithError(err).WithField("asset", a.asset.Ticker).
			Warn("could not fetch custodial activity")
		return []domain.ActivityItem{}, nil
	}
	a.hasTransactions.Store(len(items) > 0)
	return items, nil
}

func (a *CustodialTradingAccount) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	address, err := a.custodial.CustodialAccountAddress(ctx, a.asset)
	if err != nil {
		return domain.ReceiveAddress{}, err
	}
	return domain.ReceiveAddress{Asset: a.asset, Address: address, Label: a.label}, nil
}

func (a *CustodialTradingAccount) SourceState(ctx context.Context) (domain.TxSourceState, error) {
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

// OnTxCompleted registers an incoming hashed transfer as a pending
// deposit so the ledger credits it once confirmed.
func (a *CustodialTradingAccount) OnTxCompleted(ctx context.Context, result domain.TxResult) error {
	hashed, ok := result.(domain.HashedTxResult)
	if !ok {
		return nil
	}
	address, err := a.custodial.CustodialAccountAddress(ctx, a.asset)
	if err != nil {
		return err
	}
	return a.custodial.CreatePendingDeposit(
		ctx, a.asset, address, hashed.TxID, hashed.Amount,
	)
}
