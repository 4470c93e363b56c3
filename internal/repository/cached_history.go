package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PromoPulse/internal/domain/models"
	domrepo "PromoPulse/internal/domain/repository"
	"PromoPulse/pkg/cache"
	applogger "PromoPulse/pkg/logger"
)

// CachedMetricHistory decorates a MetricHistoryProvider with a short-TTL
// cache so back-to-back cycles (e.g. a manual run right after a tick) do
// not hammer ClickHouse. Cache trouble degrades to a direct read.
type CachedMetricHistory struct {
	inner domrepo.MetricHistoryProvider
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

// NewCachedMetricHistory wraps inner with the given cache service.
func NewCachedMetricHistory(inner domrepo.MetricHistoryProvider, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedMetricHistory {
	if l == nil {
		l = applogger.Nop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedMetricHistory{inner: inner, cache: c, ttl: ttl, l: l}
}

func (p *CachedMetricHistory) Fetch(ctx context.Context, metricName string, granularity models.Granularity, count int) ([]float64, error) {
	key := fmt.Sprintf("history:%s:%s:%d", metricName, granularity, count)

	var samples []float64
	err := p.cache.Get(ctx, key, &samples)
	if err == nil {
		return samples, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		p.l.Warn("history cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	samples, err = p.inner.Fetch(ctx, metricName, granularity, count)
	if err != nil {
		return nil, err
	}
	if cerr := p.cache.Set(ctx, key, samples, p.ttl); cerr != nil {
		p.l.Warn("history cache write failed", applogger.String("key", key), applogger.Error(cerr))
	}
	return samples, nil
}
