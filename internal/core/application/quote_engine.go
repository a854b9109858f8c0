package application

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/singleflight"

	"github.com/coincore-network/coincore-daemon/config"
	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/core/ports"
	"github.com/coincore-network/coincore-daemon/internal/metrics"
)

// QuoteEngine keeps a continuously refreshed priced quote for one
// (pair, direction). Refresh is timer driven and independent from the
// transaction pipeline; engines read the latest value. Expired quotes
// are refreshed on read, with at most one refresh in flight.
type QuoteEngine struct {
	svc       ports.QuoteService
	pair      domain.Pair
	direction domain.TransferDirection
	interval  time.Duration
	limiter   ratelimit.Limiter
	group     singleflight.Group
	now       func() time.Time

	mtx    sync.RWMutex
	latest *domain.PricedQuote
	subs   map[chan domain.PricedQuote]struct{}

	stopOnce sync.Once
	stop     chan struct{}
}

// NewQuoteEngine returns a quote engine for the pair. Call Start to
// begin timer-driven refresh; Latest also refreshes lazily so an
// unstarted engine still serves fresh quotes.
func NewQuoteEngine(
	svc ports.QuoteService, pair domain.Pair, direction domain.TransferDirection,
) *QuoteEngine {
	return &QuoteEngine{
		svc:       svc,
		pair:      pair,
		direction: direction,
		interval:  config.GetDuration(config.QuoteRefreshIntervalKey),
		limiter:   ratelimit.New(config.GetInt(config.QuoteRequestsPerSecondKey)),
		now:       time.Now,
		subs:      make(map[chan domain.PricedQuote]struct{}),
		stop:      make(chan struct{}),
	}
}

// Start begins the refresh loop. It returns after the first refresh
// attempt so callers observe an initial quote or its error.
func (q *QuoteEngine) Start(ctx context.Context) error {
	if _, err := q.refresh(ctx); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(q.interval)
		defer ticker.Stop()
		for {
			select {
			case <-q.stop:
				return
			case <-ticker.C:
				if _, err := q.refresh(context.Background()); err != nil {
					log.WithError(err).WithField("pair", q.pair.String()).
						Warn("quote refresh failed")
				}
			}
		}
	}()
	return nil
}

// Stop halts the refresh loop. Reads after Stop still work, refreshing
// lazily.
func (q *QuoteEngine) Stop() {
	q.stopOnce.Do(func() { close(q.stop) })
}

// Latest returns the current quote, refreshing first when none is held
// or the held one expired. Execution paths call this at submit time so
// a stale quote id is never used.
func (q *QuoteEngine) Latest(ctx context.Context) (domain.PricedQuote, error) {
	q.mtx.RLock()
	held := q.latest
	q.mtx.RUnlock()

	if held != nil && !held.IsExpired(q.now()) {
		return *held, nil
	}
	return q.refresh(ctx)
}

// Stream returns a channel receiving every refreshed quote until the
// context is cancelled or the engine stops. A slow receiver misses
// updates rather than blocking the refresh loop.
func (q *QuoteEngine) Stream(ctx context.Context) <-chan domain.PricedQuote {
	ch := make(chan domain.PricedQuote, 1)
	q.mtx.Lock()
	q.subs[ch] = struct{}{}
	q.mtx.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-q.stop:
		}
		q.mtx.Lock()
		delete(q.subs, ch)
		close(ch)
		q.mtx.Unlock()
	}()
	return ch
}

// refresh fetches a new quote, deduplicating concurrent callers onto a
// single in-flight request.
func (q *QuoteEngine) refresh(ctx context.Context) (domain.PricedQuote, error) {
	res, err, _ := q.group.Do(q.pair.String(), func() (interface{}, error) {
		q.limiter.Take()
		quote, err := q.svc.Quote(ctx, q.pair, q.direction)
		if err != nil {
			return nil, err
		}

		q.mtx.Lock()
		q.latest = &quote
		for sub := range q.subs {
			select {
			case sub <- quote:
			default:
			}
		}
		q.mtx.Unlock()

		metrics.QuoteRefreshes.WithLabelValues(q.pair.String()).Inc()
		log.WithFields(log.Fields{
			"pair":    q.pair.String(),
			"quote":   quote.ID,
			"expires": quote.ExpiresAt,
		}).Debug("quote refreshed")
		return quote, nil
	})
	if err != nil {
		return domain.PricedQuote{}, err
	}
	return res.(domain.PricedQuote), nil
}
