package ports

import "context"

// Tier is a KYC verification level gating transaction size limits.
type Tier int

const (
	TierBronze Tier = iota
	TierSilver
	TierGold
)

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	default:
		return "unknown"
	}
}

// Feature is a per-feature eligibility flag resolved by the identity
// service.
type Feature int

const (
	FeatureSimpleBuy Feature = iota
	FeatureInterest
	FeatureSwap
	FeatureWithdrawFiat
)

// IdentityService is the KYC surface. Callers must treat a service
// failure as "not eligible": gating never defaults open to an
// unverified user.
type IdentityService interface {
	IsVerifiedFor(ctx context.Context, tier Tier) (bool, error)
	IsEligibleFor(ctx context.Context, feature Feature) (bool, error)
}
