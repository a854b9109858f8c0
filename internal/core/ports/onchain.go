package ports

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
)

// FeeOptions maps each offered fee level to its absolute fee for the
// transaction being composed.
type FeeOptions map[domain.FeeLevel]domain.Money

// SendRequest is a fully specified on-chain send handed to the wallet
// manager for signing and broadcast.
type SendRequest struct {
	Asset          domain.Asset
	Amount         domain.Money
	Fee            domain.Money
	Address        string
	Memo           string
	SecondPassword string
}

// OnChainWallet is the per-asset wallet manager. The engine never
// touches keys or signatures, only this surface.
type OnChainWallet interface {
	Asset() domain.Asset
	Balance(ctx context.Context) (domain.AccountBalance, error)
	ReceiveAddress(ctx context.Context) (domain.ReceiveAddress, error)
	FeeOptions(ctx context.Context) (FeeOptions, error)
	History(ctx context.Context) ([]domain.ActivityItem, error)
	// Send signs and broadcasts, returning the chain transaction id.
	Send(ctx context.Context, req SendRequest) (string, error)
}
