package di

import (
	"fmt"

	"PromoPulse/internal/domain/repository"
	"PromoPulse/internal/engine"
	internalrepo "PromoPulse/internal/repository"
	pkgcache "PromoPulse/pkg/cache"
	pkgch "PromoPulse/pkg/clickhouse"
	"PromoPulse/pkg/config"
	pkgkafka "PromoPulse/pkg/kafka"
	"PromoPulse/pkg/logger"
	"PromoPulse/pkg/metrics"
	"PromoPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client for metric history.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCache creates the history cache backend from config.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Backend == "redis" {
		c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisAddr(cfg.Cache.Redis.Host, cfg.Cache.Redis.Port),
			pkgcache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return pkgcache.NewMemoryCache(), nil
}

// ProvideHistoryProvider wires the ClickHouse reader, optionally behind
// the cache decorator.
func ProvideHistoryProvider(
	chClient *pkgch.Client,
	c pkgcache.Service,
	cfg *config.Config,
	l *logger.Logger,
) repository.MetricHistoryProvider {
	table := cfg.ClickHouse.MetricsTable
	if table == "" {
		table = cfg.ClickHouse.Database + ".metric_buckets"
	}
	ch := internalrepo.NewCHMetricHistory(chClient, table)
	ch.SetLogger(l)
	if c == nil {
		return ch
	}
	return internalrepo.NewCachedMetricHistory(ch, c, cfg.Cache.TTL, l)
}

// ProvideKafkaProducer creates the alerts producer, nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Alerts.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Alerts.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Alerts.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Alerts.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Alerts.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Alerts.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideNotifier builds the alert fan-out: structured log always, Kafka
// when configured.
func ProvideNotifier(
	producer *pkgkafka.Producer,
	m repository.Metrics,
	cfg *config.Config,
	l *logger.Logger,
) repository.AlertNotifier {
	notifiers := []repository.AlertNotifier{internalrepo.NewLogAlertNotifier(l)}
	if producer != nil {
		notifiers = append(notifiers, internalrepo.NewKafkaAlertNotifier(producer, cfg.Alerts.Kafka.Topic, m))
	}
	return internalrepo.NewMultiNotifier(notifiers...)
}

// ProvideEngine assembles the detection engine.
func ProvideEngine(
	provider repository.MetricHistoryProvider,
	notifier repository.AlertNotifier,
	m repository.Metrics,
	cfg *config.Config,
	l *logger.Logger,
) *engine.DetectionEngine {
	return engine.New(provider, notifier, engine.Options{
		Interval:       cfg.Detection.Interval,
		SeedDefaults:   cfg.Detection.SeedDefaults,
		HistorySamples: cfg.Detection.HistorySamples,
		DedupWindow:    cfg.Detection.DedupWindow,
		Metrics:        m,
		Logger:         l,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	eng *engine.DetectionEngine,
	chClient *pkgch.Client,
	c pkgcache.Service,
	producer *pkgkafka.Producer,
	l *logger.Logger,
) *server.App {
	return server.New(cfg, eng, chClient, c, producer, l)
}
