// Package quotecache decorates a price feed with Redis caching.
// A closed valuation window is immutable, so its series caches with a
// long TTL; a still-open window stays fresh with a short one.
package quotecache

import (
	"context"
	"time"

	"github.com/HaelyDee/tax-help/internal/valuation"
	"github.com/HaelyDee/tax-help/pkg/logger"
	"github.com/HaelyDee/tax-help/pkg/redis"
)

// Feed wraps an inner feed, transparently caching fetched series.
// Cache failures degrade to a direct fetch and never fail a report.
type Feed struct {
	inner  valuation.Feed
	cache  *redis.Cache
	logger *logger.Logger
	now    func() time.Time
}

var _ valuation.Feed = (*Feed)(nil)

// New decorates a feed with caching.
func New(inner valuation.Feed, cache *redis.Cache, log *logger.Logger) *Feed {
	return &Feed{
		inner:  inner,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

// WithClock overrides the wall clock. 테스트 전용.
func (f *Feed) WithClock(now func() time.Time) *Feed {
	f.now = now
	return f
}

// DailyCloses serves from cache when possible, otherwise fetches from
// the inner feed and stores the result.
func (f *Feed) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]valuation.PricePoint, error) {
	key := redis.SeriesKey(symbol,
		valuation.DateOnly(start).Format(valuation.DateFormat),
		valuation.DateOnly(end).Format(valuation.DateFormat))

	var cached []valuation.PricePoint
	if found, err := f.cache.Get(ctx, key, &cached); err == nil && found && len(cached) > 0 {
		f.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"count":  len(cached),
		}).Debug("Quote cache hit")
		return cached, nil
	}

	points, err := f.inner.DailyCloses(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	ttl := redis.TTLOpenWindow
	if valuation.DateOnly(end).Before(valuation.DateOnly(f.now())) {
		ttl = redis.TTLClosedWindow
	}

	if err := f.cache.Set(ctx, key, points, ttl); err != nil {
		// Best effort: a cache write failure must not fail the report.
		f.logger.WithError(err).Warn("Quote cache write failed")
	}

	return points, nil
}
