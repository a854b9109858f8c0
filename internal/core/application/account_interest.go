package application

import (
	"context"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
)

// InterestAccount is a custodial savings balance earning interest.
type InterestAccount struct {
	asset    domain.Asset
	label    string
	userFiat domain.Asset

	custodial ports.CustodialService
	rates     ports.RateService
	identity  *IdentityGate

	hasFunds atomic.Bool
}

// NewInterestAccount returns the interest account for the asset.
func NewInterestAccount(
	asset domain.Asset, label string, userFiat domain.Asset,
	custodial ports.CustodialService, rates ports.RateService, identity *IdentityGate,
) *InterestAccount {
	return &InterestAccount{
		asset:     asset,
		label:     label,
		userFiat:  userFiat,
		custodial: custodial,
		rates:     rates,
		identity:  identity,
	}
}

func (a *InterestAccount) Label() string            { return a.label }
func (a *InterestAccount) Asset() domain.Asset      { return a.asset }
func (a *InterestAccount) Kind() domain.AccountKind { return domain.KindInterest }
func (a *InterestAccount) IsDefault() bool          { return false }
func (a *InterestAccount) IsFunded() bool           { return a.hasFunds.Load() }

func (a *InterestAccount) Balance(ctx context.Context) (domain.AccountBalance, error) {
	balance, err := a.custodial.InterestBalance(ctx, a.asset)
	if err != nil {
		return domain.AccountBalance{}, err
	}
	if rate, rerr := a.rates.Rate(ctx, a.asset, a.userFiat); rerr == nil {
		balance.ExchangeRate = rate
	}
	a.hasFunds.Store(balance.Total.IsPositive())
	return balance, nil
}

// Actions: an interest account never offers on-chain send; it only
// supports withdrawing back out and viewing activity.
func (a *InterestAccount) Actions(ctx context.Context) (domain.ActionSet, error) {
	balance, err := a.Balance(ctx)
	if err != nil {
		return nil, err
	}

	actions := domain.NewActionSet(domain.ActionViewActivity)
	if balance.Actionable.IsPositive() && a.identity.IsEligibleFor(ctx, ports.FeatureInterest) {
		actions[domain.ActionInterestWithdraw] = struct{}{}
	}
	return actions, nil
}

func (a *InterestAccount) Activity(ctx context.Context) ([]domain.ActivityItem, error) {
	items, err := a.custodial.Activity(ctx, a.asset)
	if err != nil {
		log.WithError(err).WithField("asset", a.asset.Ticker).
			Warn("could not fetch interest activity")
		return []domain.ActivityItem{}, nil
	}
	return items, nil
}

func (a *InterestAccount) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	address, err := a.custodial.CustodialAccountAddress(ctx, a.asset)
	if err != nil {
		return domain.ReceiveAddress{}, err
	}
	return domain.ReceiveAddress{Asset: a.asset, Address: address, Label: a.label}, nil
}

func (a *InterestAccount) SourceState(ctx context.Context) (domain.TxSourceState, error) {
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
