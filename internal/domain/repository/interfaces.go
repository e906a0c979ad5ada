package repository

import (
	"context"
	"errors"
	"time"

	"VolScan/internal/domain/models"
)

// ErrNoData marks a symbol the upstream knows nothing about. Distinct
// from an empty (zero-bar) history, which is returned as a valid empty
// series.
var ErrNoData = errors.New("no market data for symbol")

// MarketData fetches daily OHLCV history from the upstream provider.
type MarketData interface {
	// DailyBars returns up to `days` trailing daily bars for symbol,
	// date-ascending. Returns ErrNoData when the symbol is unknown.
	DailyBars(ctx context.Context, symbol string, days int) (models.PriceSeries, error)
}

// BarStore persists daily bar history (append-only).
type BarStore interface {
	Init(ctx context.Context) error
	StoreBars(ctx context.Context, bars []models.PriceBar) error
	// BarsSince returns bars for symbol strictly after the given date,
	// date-ascending.
	BarsSince(ctx context.Context, symbol string, after time.Time) ([]models.PriceBar, error)
	Health(ctx context.Context) error
	Close() error
}

// TrackingStore owns Signal and PredictionRecord persistence. Signals
// are append-only; prediction records transition PENDING -> terminal
// exactly once. Resolve must be exclusive per record: a terminal status
// is never overwritten, concurrent resolvers lose quietly.
type TrackingStore interface {
	Init(ctx context.Context) error
	AppendSignal(ctx context.Context, sig models.Signal) error
	Signals(ctx context.Context, typ models.SignalType, limit int) ([]models.Signal, error)
	Pending(ctx context.Context) ([]models.PredictionRecord, error)
	Records(ctx context.Context, status models.PredictionStatus, symbol string, limit int) ([]models.PredictionRecord, error)
	// Resolve moves a PENDING record to the given terminal status.
	// Returns false when the record was already terminal (no-op).
	Resolve(ctx context.Context, signalID string, status models.PredictionStatus, price float64, date time.Time, returnPct float64) (bool, error)
	// HasPending reports whether symbol already has a PENDING record of
	// the given type (duplicate suppression).
	HasPending(ctx context.Context, symbol string, typ models.SignalType) (bool, error)
	Close() error
}

// SignalPublisher pushes emitted signals onto the alerting bus.
type SignalPublisher interface {
	Publish(ctx context.Context, sig models.Signal) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordSymbolScanned(symbol string)
	RecordSymbolSkipped(reason string)
	RecordSignal(signalType string, strength int)
	RecordResolution(signalType, status string)
	RecordScanDuration(seconds float64)
	RecordError(kind string)
}
