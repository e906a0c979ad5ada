package di

import (
	"context"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/jmoiron/sqlx"

	domrepo "VolScan/internal/domain/repository"
	domsvc "VolScan/internal/domain/service"
	internalrepo "VolScan/internal/repository"
	"VolScan/internal/service/alerts"
	"VolScan/internal/service/marketdata"
	"VolScan/internal/services/classifier"
	"VolScan/internal/services/indicators"
	"VolScan/internal/services/screener"
	"VolScan/internal/services/timing"
	"VolScan/internal/services/volatility"
	"VolScan/internal/usecase"
	"VolScan/pkg/cache"
	pkgch "VolScan/pkg/clickhouse"
	"VolScan/pkg/config"
	pkgkafka "VolScan/pkg/kafka"
	"VolScan/pkg/metrics"
	"VolScan/pkg/server"
)

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideBarStore creates the daily-bar store. ClickHouse when enabled,
// otherwise an in-memory store good enough for development runs.
func ProvideBarStore(cfg *config.Config) (domrepo.BarStore, error) {
	if !cfg.ClickHouse.Enabled {
		return internalrepo.NewMemBarStore(), nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewCHBarStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideTrackingStore creates the signal/prediction store. Postgres
// when enabled, otherwise in-memory (tracking state lost on restart).
func ProvideTrackingStore(cfg *config.Config) (domrepo.TrackingStore, error) {
	if !cfg.Postgres.Enabled {
		return internalrepo.NewMemTrackingStore(), nil
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User,
		cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	store := internalrepo.NewPGTrackingStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return store, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher, or nil
// when Kafka is disabled (signals are then persisted and alerted only).
func ProvideSignalPublisher(cfg *config.Config) (domrepo.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic), nil
}

// ProvideCache creates the bar cache: layered Redis when enabled,
// in-process memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("volscan"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideMarketData creates the upstream bar provider behind a
// read-through cache keyed by (symbol, lookback).
func ProvideMarketData(cfg *config.Config, c cache.Service) domrepo.MarketData {
	client := marketdata.New(marketdata.Config{
		BaseURL:     cfg.MarketData.BaseURL,
		APIKey:      cfg.MarketData.APIKey,
		APISecret:   cfg.MarketData.APISecret,
		Timeout:     cfg.MarketData.Timeout,
		MaxRetries:  cfg.MarketData.MaxRetries,
		RequestsSec: cfg.MarketData.RequestsSec,
	})
	return marketdata.NewCached(client, c, cfg.Scanner.Interval)
}

// ProvideSnapshotBuilder creates the indicator engine with its regime
// classifier.
func ProvideSnapshotBuilder(cfg *config.Config) domsvc.SnapshotBuilder {
	vol := volatility.New(volatility.Thresholds{
		ExtremeMin: cfg.Regime.ExtremeMin,
		HighMin:    cfg.Regime.HighMin,
		LowMax:     cfg.Regime.LowMax,
	}, 0, 0)
	return indicators.NewEngine(vol)
}

// ProvideScreener creates the eligibility screener.
func ProvideScreener(cfg *config.Config) domsvc.Screener {
	return screener.New(cfg.Thresholds.ATRPercentileMin)
}

// ProvideClassifier creates the signal classifier.
func ProvideClassifier(cfg *config.Config) domsvc.Classifier {
	return classifier.New(classifier.Config{
		RSIOverbought:   cfg.Thresholds.RSIOverbought,
		RSIOversold:     cfg.Thresholds.RSIOversold,
		HVPercentileMin: cfg.Thresholds.HVPercentileMin,
		Weights: classifier.Weights{
			RSI:    cfg.Strength.RSIWeight,
			Band:   cfg.Strength.BandWeight,
			ATR:    cfg.Strength.ATRWeight,
			Regime: cfg.Strength.RegimeWeight,
		},
		StopATRMultiple:   cfg.Risk.StopATRMultiple,
		TargetATRMultiple: cfg.Risk.TargetATRMultiple,
	})
}

// ProvideTimingResolver creates the entry-window resolver.
func ProvideTimingResolver() domsvc.TimingResolver {
	return timing.New()
}

// ProvideTracker creates the outcome tracker use case.
func ProvideTracker(
	cfg *config.Config,
	store domrepo.TrackingStore,
	bars domrepo.BarStore,
	m domrepo.Metrics,
) *usecase.TrackerUseCase {
	return usecase.NewTrackerUseCase(usecase.TrackerConfig{
		HoldingDays: cfg.Risk.HoldingDays,
	}, store, bars, m)
}

// ProvideScan creates the scan pipeline use case.
func ProvideScan(
	cfg *config.Config,
	market domrepo.MarketData,
	bars domrepo.BarStore,
	builder domsvc.SnapshotBuilder,
	scr domsvc.Screener,
	class domsvc.Classifier,
	tr domsvc.TimingResolver,
	tracker *usecase.TrackerUseCase,
	pub domrepo.SignalPublisher,
	m domrepo.Metrics,
) *usecase.ScanUseCase {
	return usecase.NewScanUseCase(usecase.ScanConfig{
		Watchlist:    cfg.Scanner.Watchlist,
		LookbackDays: cfg.Scanner.LookbackDays,
		Workers:      cfg.Scanner.Workers,
		MaxSignals:   cfg.Scanner.MaxSignals,
	}, market, bars, builder, scr, class, tr, tracker, pub, m)
}

// ProvideNotifier creates the webhook alert notifier.
func ProvideNotifier(cfg *config.Config) *alerts.Notifier {
	return alerts.New(alerts.Config{
		DiscordWebhookURL: cfg.Alerts.DiscordWebhookURL,
		SlackWebhookURL:   cfg.Alerts.SlackWebhookURL,
		MinStrength:       cfg.Alerts.MinStrength,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	scan *usecase.ScanUseCase,
	tracker *usecase.TrackerUseCase,
	notifier *alerts.Notifier,
	barStore domrepo.BarStore,
	trackingStore domrepo.TrackingStore,
	pub domrepo.SignalPublisher,
	market domrepo.MarketData,
) *server.App {
	return server.New(cfg, scan, tracker, notifier, barStore, trackingStore, pub, market)
}
