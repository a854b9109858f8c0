package domain

import "context"

// AccountGroup aggregates all accounts of one asset, eg. "all BTC
// accounts". Its balance is the sum of member balances and its action
// set the intersection of member action sets: an action is offered at
// group level only when it is valid for every member.
type AccountGroup struct {
	label    string
	asset    Asset
	accounts []Account
}

// NewAccountGroup returns a group over the given accounts. All members
// must share the group's asset.
func NewAccountGroup(label string, asset Asset, accounts []Account) (*AccountGroup, error) {
	for _, a := range accounts {
		if a.Asset().Ticker != asset.Ticker {
			return nil, ErrGroupAssetMismatch
		}
	}
	return &AccountGroup{label: label, asset: asset, accounts: accounts}, nil
}

func (g *AccountGroup) Label() string {
	return g.label
}

func (g *AccountGroup) Asset() Asset {
	return g.asset
}

// Accounts returns the group members.
func (g *AccountGroup) Accounts() []Account {
	return g.accounts
}

// Balance sums the balances of all members. The exchange rate of the
// first member balance is carried over, all members share the asset.
func (g *AccountGroup) Balance(ctx context.Context) (AccountBalance, error) {
	total := ZeroMoney(g.asset)
	pending := ZeroMoney(g.asset)
	actionable := ZeroMoney(g.asset)
	var rate ExchangeRate

	for _, a := range g.accounts {
		b, err := a.Balance(ctx)
		if err != nil {
			return AccountBalance{}, err
		}
		total = total.Add(b.Total)
		pending = pending.Add(b.Pending)
		actionable = actionable.Add(b.Actionable)
		if !rate.IsValid() {
			rate = b.ExchangeRate
		}
	}
	return AccountBalance{
		Total:        total,
		Pending:      pending,
		Actionable:   actionable,
		ExchangeRate: rate,
	}, nil
}

// Actions intersects the action sets of all members.
func (g *AccountGroup) Actions(ctx context.Context) (ActionSet, error) {
	if len(g.accounts) == 0 {
		return NewActionSet(), nil
	}

	res, err := g.accounts[0].Actions(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range g.accounts[1:] {
		actions, err := a.Actions(ctx)
		if err != nil {
			return nil, err
		}
		res = res.Intersect(actions)
	}
	return res, nil
}

// Activity merges the activity of all members.
func (g *AccountGroup) Activity(ctx context.Context) ([]ActivityItem, error) {
	items := make([]ActivityItem, 0)
	for _, a := range g.accounts {
		list, err := a.Activity(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, list...)
	}
	return items, nil
}

// IsFunded returns whether any member is funded.
func (g *AccountGroup) IsFunded() bool {
	for _, a := range g.accounts {
		if a.IsFunded() {
			return true
		}
	}
	return false
}
