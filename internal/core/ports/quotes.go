package ports

import (
	"context"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
)

// QuoteService prices a pair for a transfer direction. Each quote
// carries its expiry.
type QuoteService interface {
	Quote(
		ctx context.Context,
		pair domain.Pair,
		direction domain.TransferDirection,
	) (domain.PricedQuote, error)
}
