package repository

import (
	"context"
	"database/sql"
	"fmt"

	"PromoPulse/internal/domain/models"
	pkgch "PromoPulse/pkg/clickhouse"
	applogger "PromoPulse/pkg/logger"
)

// CHMetricHistory implements MetricHistoryProvider over the metric buckets
// the aggregation pipeline writes to ClickHouse. Rows are keyed by metric
// name and granularity; the newest bucket comes back first, matching the
// most-recent-first contract of the evaluator.
type CHMetricHistory struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHMetricHistory creates a provider reading from the given table
// (database-qualified, e.g. "promopulse.metric_buckets").
func NewCHMetricHistory(ch *pkgch.Client, table string) *CHMetricHistory {
	return &CHMetricHistory{db: ch.DB(), table: table, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHMetricHistory) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

func (s *CHMetricHistory) Fetch(ctx context.Context, metricName string, granularity models.Granularity, count int) ([]float64, error) {
	if count <= 0 {
		return nil, nil
	}
	const qtpl = `
        SELECT value
        FROM %s
        WHERE metric = ? AND granularity = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, metricName, string(granularity), count)
	if err != nil {
		s.l.Error("clickhouse metric history query error",
			applogger.String("metric", metricName),
			applogger.String("granularity", string(granularity)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer rows.Close()

	out := make([]float64, 0, count)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
