package domain_test

import (
	"context"
	"testing"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubAccount struct {
	label   string
	asset   domain.Asset
	balance domain.AccountBalance
	actions domain.ActionSet
	funded  bool
}

func (a stubAccount) Label() string            { return a.label }
func (a stubAccount) Asset() domain.Asset      { return a.asset }
func (a stubAccount) Kind() domain.AccountKind { return domain.KindCustodialTrading }
func (a stubAccount) IsDefault() bool          { return false }
func (a stubAccount) IsFunded() bool           { return a.funded }

func (a stubAccount) Balance(ctx context.Context) (domain.AccountBalance, error) {
	return a.balance, nil
}

func (a stubAccount) Actions(ctx context.Context) (domain.ActionSet, error) {
	return a.actions, nil
}

func (a stubAccount) Activity(ctx context.Context) ([]domain.ActivityItem, error) {
	return nil, nil
}

func (a stubAccount) ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error) {
	return domain.ReceiveAddress{Asset: a.asset, Address: "stub"}, nil
}

func (a stubAccount) SourceState(ctx context.Context) (domain.TxSourceState, error) {
	return domain.SourceCanTransact, nil
}

func newStubAccount(label string, total float64, funded bool, actions ...domain.AssetAction) stubAccount {
	money := domain.NewMoney(domain.BTC, decimal.NewFromFloat(total))
	return stubAccount{
		label: label,
		asset: domain.BTC,
		balance: domain.AccountBalance{
			Total:      money,
			Pending:    domain.ZeroMoney(domain.BTC),
			Actionable: money,
		},
		actions: domain.NewActionSet(actions...),
		funded:  funded,
	}
}

func TestAccountGroupRejectsMixedAssets(t *testing.T) {
	t.Parallel()

	ethAccount := stubAccount{label: "eth", asset: domain.ETH}
	_, err := domain.NewAccountGroup("group", domain.BTC, []domain.Account{
		newStubAccount("btc", 1, true),
		ethAccount,
	})
	require.ErrorIs(t, err, domain.ErrGroupAssetMismatch)
}

func TestAccountGroupBalanceSumsMembers(t *testing.T) {
	t.Parallel()

	group, err := domain.NewAccountGroup("group", domain.BTC, []domain.Account{
		newStubAccount("wallet", 1.5, true),
		newStubAccount("trading", 0.5, true),
	})
	require.NoError(t, err)

	balance, err := group.Balance(context.Background())
	require.NoError(t, err)
	require.True(t, balance.Total.Equal(domain.NewMoney(domain.BTC, decimal.NewFromInt(2))))
	require.True(t, balance.Actionable.Equal(balance.Total))
}

func TestAccountGroupActionsIntersect(t *testing.T) {
	t.Parallel()

	group, err := domain.NewAccountGroup("group", domain.BTC, []domain.Account{
		newStubAccount("wallet", 1, true,
			domain.ActionSend, domain.ActionReceive, domain.ActionSwap),
		newStubAccount("trading", 1, true,
			domain.ActionSend, domain.ActionSwap, domain.ActionSell),
	})
	require.NoError(t, err)

	actions, err := group.Actions(context.Background())
	require.NoError(t, err)
	require.True(t, actions.Contains(domain.ActionSend))
	require.True(t, actions.Contains(domain.ActionSwap))
	require.False(t, actions.Contains(domain.ActionReceive))
	require.False(t, actions.Contains(domain.ActionSell))
}

func TestAccountGroupFundedIfAnyMemberFunded(t *testing.T) {
	t.Parallel()

	group, err := domain.NewAccountGroup("group", domain.BTC, []domain.Account{
		newStubAccount("wallet", 0, false),
		newStubAccount("trading", 1, true),
	})
	require.NoError(t, err)
	require.True(t, group.IsFunded())

	empty, err := domain.NewAccountGroup("empty", domain.BTC, []domain.Account{
		newStubAccount("wallet", 0, false),
	})
	require.NoError(t, err)
	require.False(t, empty.IsFunded())
}
