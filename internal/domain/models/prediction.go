package models

import "time"

// PredictionStatus is the lifecycle state of a tracked prediction.
type PredictionStatus string

const (
	StatusPending   PredictionStatus = "PENDING"
	StatusTargetHit PredictionStatus = "TARGET_HIT"
	StatusStopHit   PredictionStatus = "STOP_HIT"
	StatusExpired   PredictionStatus = "EXPIRED"
)

// Terminal reports whether the status is final.
func (s PredictionStatus) Terminal() bool {
	return s == StatusTargetHit || s == StatusStopHit || s == StatusExpired
}

// PredictionRecord tracks one emitted signal until it resolves.
// Created PENDING at emission; transitions to a terminal state exactly
// once and is never re-opened.
type PredictionRecord struct {
	SignalID        string           `json:"signal_id"`
	Symbol          string           `json:"symbol"`
	Type            SignalType       `json:"type"`
	Strength        int              `json:"strength"`
	EntryPrice      float64          `json:"entry_price"`
	StopLoss        float64          `json:"stop_loss"`
	TargetPrice     float64          `json:"target_price"`
	CreatedAt       time.Time        `json:"created_at"`
	Status          PredictionStatus `json:"status"`
	ResolutionPrice float64          `json:"resolution_price,omitempty"`
	ResolutionDate  time.Time        `json:"resolution_date,omitempty"`
	ReturnPct       float64          `json:"return_pct,omitempty"`
}

// ReturnFor computes the direction-aware percentage return for a
// resolution at price p. Bearish signals profit when price falls.
func (r PredictionRecord) ReturnFor(p float64) float64 {
	if r.EntryPrice == 0 {
		return 0
	}
	if r.Type.Bearish() {
		return (r.EntryPrice - p) / r.EntryPrice * 100
	}
	return (p - r.EntryPrice) / r.EntryPrice * 100
}

// TypeSummary aggregates terminal records of one signal type.
type TypeSummary struct {
	Type         SignalType `json:"type"`
	Count        int        `json:"count"`
	Wins         int        `json:"wins"`
	Losses       int        `json:"losses"`
	Expired      int        `json:"expired"`
	WinRate      float64    `json:"win_rate"` // wins / (wins+losses) * 100
	AvgReturn    float64    `json:"avg_return"`
	ProfitFactor float64    `json:"profit_factor"`
}

// PerformanceSummary is the derived accuracy view over all terminal
// records. Recomputed on demand, no independent identity.
type PerformanceSummary struct {
	Total   int           `json:"total"`
	Pending int           `json:"pending"`
	ByType  []TypeSummary `json:"by_type"`
}
