package application

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/coincore-network/coincore-daemon/config"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
)

// IdentityGate wraps the identity service behind a circuit breaker and
// fails closed: a service failure, a timeout or an open breaker all
// read as "not verified/not eligible". Gating never defaults open.
type IdentityGate struct {
	svc     ports.IdentityService
	breaker *gobreaker.CircuitBreaker
}

// NewIdentityGate returns a gate over the given identity service.
func NewIdentityGate(svc ports.IdentityService) *IdentityGate {
	maxFailures := uint32(config.GetInt(config.IdentityBreakerMaxFailuresKey))
	return &IdentityGate{
		svc: svc,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "identity",
			Timeout: config.GetDuration(config.IdentityBreakerTimeoutKey),
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.WithFields(log.Fields{"from": from.String(), "to": to.String()}).
					Warn("identity breaker state changed")
			},
		}),
	}
}

// IsVerifiedFor returns whether the user holds the given tier, false on
// any failure.
func (g *IdentityGate) IsVerifiedFor(ctx context.Context, tier ports.Tier) bool {
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.svc.IsVerifiedFor(ctx, tier)
	})
	if err != nil {
		log.WithError(err).WithField("tier", tier.String()).
			Warn("tier check failed, treating as not verified")
		return false
	}
	return res.(bool)
}

// IsEligibleFor returns whether the user may use the given feature,
// false on any failure.
func (g *IdentityGate) IsEligibleFor(ctx context.Context, feature ports.Feature) bool {
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.svc.IsEligibleFor(ctx, feature)
	})
	if err != nil {
		log.WithError(err).Warn("eligibility check failed, treating as not eligible")
		return false
	}
	return res.(bool)
}

// LimitsGate resolves tiered transfer limits for engines.
type LimitsGate struct {
	custodial ports.CustodialService
}

// NewLimitsGate returns a gate over the custodial limits endpoints.
func NewLimitsGate(custodial ports.CustodialService) *LimitsGate {
	return &LimitsGate{custodial: custodial}
}

// TransferLimits returns the fiat-denominated limits for the product at
// the user's current tier.
func (g *LimitsGate) TransferLimits(
	ctx context.Context, fiat domain.Asset, product ports.Product,
) (domain.TransferLimits, error) {
	limits, err := g.custodial.ProductTransferLimits(ctx, fiat, product)
	if err != nil {
		return domain.TransferLimits{}, fmt.Errorf("fetching transfer limits: %w", err)
	}
	return limits, nil
}

// ConvertLimitsToAsset converts fiat-denominated limits into the source
// asset using the given source-asset-to-fiat rate. The minimum rounds
// up and the maximum rounds down at the asset's user precision, so a
// user exactly on a fiat boundary is never rejected by rounding and
// never exceeds the fiat ceiling.
func ConvertLimitsToAsset(
	limits domain.TransferLimits, assetToFiat domain.ExchangeRate,
) domain.TransferLimits {
	inverse := assetToFiat.Inverse()
	return domain.TransferLimits{
		Min: inverse.Convert(limits.Min).RoundCeil(),
		Max: inverse.Convert(limits.Max).RoundFloor(),
	}
}

// tierLimitFailure resolves which tier ceiling was hit. The tier is
// re-checked here rather than cached from initialisation so a tier
// change between initialise and validate is reflected; a failed check
// reads as silver for correct upsell messaging.
func tierLimitFailure(ctx context.Context, identity *IdentityGate) error {
	if identity != nil && identity.IsVerifiedFor(ctx, ports.TierGold) {
		return domain.NewValidationFailure(domain.ValidationOverGoldTierLimit)
	}
	return domain.NewValidationFailure(domain.ValidationOverSilverTierLimit)
}
