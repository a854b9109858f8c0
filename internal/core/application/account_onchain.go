package application

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
)

// OnChainAccount is a non-custodial account backed by a per-asset
// wallet manager. It keeps the last known good balance so a failed
// refresh degrades to the cached snapshot, or to zero with
// IsFunded()==false when nothing was ever fetched, instead of
// propagating the error into action resolution.
type OnChainAccount struct {
	label     string
	userFiat  domain.Asset
	isDefault bool

	wallet ports.OnChainWallet
	rates  ports.RateService

	hasFunds atomic.Bool

	cacheMtx  sync.RWMutex
	lastKnown *domain.AccountBalance
}

// NewOnChainAccount returns an account over the given wallet manager.
func NewOnChainAccount(
	label string, userFiat domain.Asset, isDefault bool,
	wallet ports.OnChainWallet, rates ports.RateService,
) *OnChainAccount {
	return &OnChainAccount{
		label:     label,
		userFiat:  userFiat,
		isDefault: isDefault,
		wallet:    wallet,
		rates:     rates,
	}
}

func (a *OnChainAccount) Label() string            { return a.label }
func (a *OnChainAccount) Asset() domain.Asset      { return a.wallet.Asset() }
func (a *OnChainAccount) Kind() domain.AccountKind { return domain.KindNonCustodial }
func (a *OnChainAccount) IsDefault() bool          { return a.isDefault }
func (a *OnChainAccount) IsFunded() bool           { return a.hasFunds.Load() }

// Balance refreshes from the wallet manager and falls back to the last
// known good snapshot on failure.
func (a *OnChainAccount) Balance(ctx context.Context) (domain.AccountBalance, error) {
	balance, err := a.wallet.Balance(ctx)
	if err != nil {
		log.WithError(err).WithField("asset", a.Asset().Ticker).
			Warn("on-chain balance refresh failed, degrading to last known")
		return a.degradedBalance(), nil
	}

	if rate, rerr := a.rates.Rate(ctx, a.Asset(), a.userFiat); rerr == nil {
		balance.ExchangeRate = rate
	}

	a.cacheMtx.Lock()
	a.lastKnown = &balance
	a.cacheMtx.Unlock()
	a.hasFunds.Store(balance.Total.IsPositive())
	return balance, nil
}

func (a *OnChainAccount) degradedBalance() domain.AccountBalance {
	a.cacheMtx.RLock()
	defer a.cacheMtx.RUnlock()
	if a.lastKnown != nil {
		return *a.lastKnown
	}
	a.hasFunds.Store(false)
	zero := domain.ZeroMoney(a.Asset())
	return domain.AccountBalance{Total: zero, Pending: zero, Actionable: zero}
}

// Actions never fails: an unreachable chain backend reads as an
// unfunded account that can still receive.
func (a *OnChainAccount) Actions(ctx context.Context) (domain.ActionSet, error) {
	balance, _ := a.Balance(ctx)

	actions := domain.NewActionSet(domain.ActionReceive, domain.ActionViewActivity)
	if balance.Actionable.IsPositive() {
		actions[domain.ActionSend] = struct{}{}
		actions[domain.ActionSell] = struct{}{}
		actions[domain.ActionSwap] = struct{}{}
	}
	return actions, nil
}

func (a *OnChainAccount) Activity(ctx context.Context) ([]domain.ActivityItem, error) {
	return a.wallet.History(ctx)
}

func (a *OnChainAccount) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	return a.wallet.ReceiveAddress(ctx)
}

func (a *OnChainAccount) SourceState(ctx context.Context) (domain.TxSourceState, error) {
	balance, _ := a.Balance(ctx)
	if !balance.Actionable.IsPositive() {
		return domain.SourceNoFunds, nil
	}
	return domain.SourceCanTransact, nil
}

// Wallet exposes the backing wallet manager to engines.
func (a *OnChainAccount) Wallet() ports.OnChainWallet {
	return a.wallet
}
