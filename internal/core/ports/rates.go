package ports

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
)

// RateService provides current exchange rates between any two assets.
type RateService interface {
	Rate(ctx context.Context, from, to domain.Asset) (domain.ExchangeRate, error)
}
