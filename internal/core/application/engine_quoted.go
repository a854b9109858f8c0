package application

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
)

// quotedEngine is the shared machinery of engines that price against a
// refreshing transfer quote: sell, swap and buy.
type quotedEngine struct {
	baseEngine
	custodial ports.CustodialService
	quotes    *QuoteEngine
	limits    *LimitsGate
	identity  *IdentityGate
	product   ports.Product
	direction domain.TransferDirection
}

// fetchLimits resolves the fiat product limits and converts them into
// the source asset at the quoted price. A limits fetch failure is
// recoverable: the snapshot carries nil limits and validation reports
// the unknown-error state until a re-initialise succeeds.
func (e *quotedEngine) fetchLimits(
	ctx context.Context, fiat domain.Asset, quote domain.PricedQuote,
) *domain.TransferLimits {
	fiatLimits, err := e.limits.TransferLimits(ctx, fiat, e.product)
	if err != nil {
		log.WithError(err).WithField("product", int(e.product)).
			Warn("could not resolve transfer limits")
		return nil
	}

	if e.source.Asset().Fiat {
		limits := fiatLimits
		return &limits
	}
	converted := ConvertLimitsToAsset(fiatLimits, quote.Price)
	return &converted
}

// validateQuotedAmount applies the limit evaluation order: under-min
// first, then the tier ceiling, then funds. A user below the minimum is
// never told "insufficient funds" even when also out of funds.
func (e *quotedEngine) validateQuotedAmount(
	ctx context.Context, ptx *domain.PendingTx, feeInSource domain.Money,
) error {
	if ptx.Limits == nil {
		return domain.NewValidationFailure(domain.ValidationUnknownError)
	}
	switch {
	case ptx.Amount.Add(feeInSource).LessThan(ptx.Limits.Min):
		return domain.NewValidationFailure(domain.ValidationUnderMinLimit)
	case ptx.Amount.Sub(feeInSource).GreaterThan(ptx.Limits.Max):
		return tierLimitFailure(ctx, e.identity)
	case ptx.Amount.GreaterThan(ptx.AvailableBalance):
		return domain.NewValidationFailure(domain.ValidationInsufficientFunds)
	default:
		return nil
	}
}

// latestQuote returns a fresh quote for execution. If the quote engine
// rotated since confirmations were built, the new id is used; a stale
// id is never submitted.
func (e *quotedEngine) latestQuote(ctx context.Context) (domain.PricedQuote, error) {
	return e.quotes.Latest(ctx)
}

// executeOrder submits the custodial order against the freshest quote.
func (e *quotedEngine) executeOrder(
	ctx context.Context, ptx *domain.PendingTx, refundAddress string,
) (ports.CustodialOrder, error) {
	quote, err := e.latestQuote(ctx)
	if err != nil {
		return ports.CustodialOrder{}, err
	}
	if !e.direction.RequiresRefundAddress() {
		refundAddress = ""
	}
	return e.custodial.CreateCustodialOrder(
		ctx, e.direction, quote.ID, ptx.Amount, refundAddress,
	)
}
