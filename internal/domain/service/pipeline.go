package service

import (
	"VolScan/internal/domain/models"
)

// SnapshotBuilder derives the full indicator snapshot for one symbol's
// series at its latest bar. Pure; returns false when the series is too
// short for any indicator to be trusted.
type SnapshotBuilder interface {
	Build(series models.PriceSeries) (models.IndicatorSnapshot, bool)
}

// Screener decides whether one symbol is eligible for classification.
// A nil snapshot means the symbol had too few bars for indicators.
type Screener interface {
	Screen(symbol string, snap *models.IndicatorSnapshot) models.ScreenResult
}

// Classifier evaluates a passing screen result and emits at most one
// signal for it.
type Classifier interface {
	Classify(snap models.IndicatorSnapshot) (models.Signal, bool)
}

// TimingResolver maps a signal's type and strength bucket to the
// recommended entry window. Deterministic, no state.
type TimingResolver interface {
	Window(sig models.Signal) string
}
