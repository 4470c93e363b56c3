package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"PromoPulse/internal/domain/models"
	"PromoPulse/pkg/cache"
)

type countingProvider struct {
	samples []float64
	err     error
	calls   int
}

func (p *countingProvider) Fetch(_ context.Context, _ string, _ models.Granularity, _ int) ([]float64, error) {
	p.calls++
	return p.samples, p.err
}

func TestCachedHistoryServesSecondReadFromCache(t *testing.T) {
	inner := &countingProvider{samples: []float64{3, 2, 1}}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCachedMetricHistory(inner, mc, time.Minute, nil)

	ctx := context.Background()
	first, err := p.Fetch(ctx, "member_signup_rate", models.GranDay, 30)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, err := p.Fetch(ctx, "member_signup_rate", models.GranDay, 30)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", inner.calls)
	}
	if len(first) != 3 || len(second) != 3 || second[0] != 3 {
		t.Fatalf("cached samples mismatch: %v vs %v", first, second)
	}
}

func TestCachedHistoryDistinctKeysPerGranularity(t *testing.T) {
	inner := &countingProvider{samples: []float64{1, 2}}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCachedMetricHistory(inner, mc, time.Minute, nil)

	ctx := context.Background()
	if _, err := p.Fetch(ctx, "m", models.GranDay, 30); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := p.Fetch(ctx, "m", models.GranWeek, 30); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("different granularities must not share cache entries")
	}
}

func TestCachedHistoryPropagatesUpstreamError(t *testing.T) {
	inner := &countingProvider{err: errors.New("clickhouse down")}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	p := NewCachedMetricHistory(inner, mc, time.Minute, nil)

	if _, err := p.Fetch(context.Background(), "m", models.GranDay, 30); err == nil {
		t.Fatalf("expected upstream error to surface")
	}
}
