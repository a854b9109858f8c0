package rates

import (
	"context"
	"fmt"

	"github.com/coincore-network/coincore-daemon/config"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// CachedRateService decorates a RateService with a TTL cache so
// repeated balance and confirmation refreshes on the same pair do not
// hammer the upstream price source.
type CachedRateService struct {
	inner ports.RateService
	cache *gocache.Cache
}

// NewCachedRateService wraps the service with the configured TTL.
func NewCachedRateService(inner ports.RateService) *CachedRateService {
	ttl := config.GetDuration(config.RateCacheTTLKey)
	return &CachedRateService{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *CachedRateService) Rate(
	ctx context.Context, from, to domain.Asset,
) (domain.ExchangeRate, error) {
	key := fmt.Sprintf("%s-%s", from.Ticker, to.Ticker)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(domain.ExchangeRate), nil
	}

	rate, err := s.inner.Rate(ctx, from, to)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	s.cache.SetDefault(key, rate)
	log.WithField("pair", key).Debug("exchange rate cached")
	return rate, nil
}
