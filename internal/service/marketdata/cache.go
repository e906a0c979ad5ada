package marketdata

import (
	"context"
	"fmt"
	"time"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	"VolScan/pkg/cache"
	applogger "VolScan/pkg/logger"
)

// CachedClient wraps a MarketData provider with a read-through cache so
// repeated scans inside one interval do not re-fetch the same history.
type CachedClient struct {
	inner domrepo.MarketData
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

// NewCached returns a caching decorator around inner. A zero ttl
// disables expiry handling on the cache side.
func NewCached(inner domrepo.MarketData, c cache.Service, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, cache: c, ttl: ttl}
}

// SetLogger injects the logger, forwarding it to the wrapped provider.
func (c *CachedClient) SetLogger(l *applogger.Logger) {
	c.l = l
	if s, ok := c.inner.(interface{ SetLogger(*applogger.Logger) }); ok {
		s.SetLogger(l)
	}
}

// DailyBars serves from cache when a fresh entry exists, otherwise
// delegates and stores the result. Cache failures never fail the fetch.
func (c *CachedClient) DailyBars(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	key := fmt.Sprintf("bars:%s:%d", symbol, days)

	var cached models.PriceSeries
	if err := c.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	series, err := c.inner.DailyBars(ctx, symbol, days)
	if err != nil {
		return models.PriceSeries{}, err
	}

	if err := c.cache.Set(ctx, key, series, c.ttl); err != nil && c.l != nil {
		c.l.Warn("bar cache write failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
	}
	return series, nil
}
