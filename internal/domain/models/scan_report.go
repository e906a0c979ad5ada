package models

import "time"

// ScanReport is the outcome of one full pipeline run over the
// watchlist. Signals are ordered by descending strength, ties broken
// by symbol, and capped by configuration.
type ScanReport struct {
	StartedAt      time.Time         `json:"started_at"`
	Duration       time.Duration     `json:"duration_ms"`
	SymbolsScanned int               `json:"symbols_scanned"`
	SymbolsSkipped int               `json:"symbols_skipped"`
	Screened       []ScreenResult    `json:"screened"`
	Signals        []Signal          `json:"signals"`
	Skipped        map[string]string `json:"skipped,omitempty"`
	StoreError     string            `json:"store_error,omitempty"`
}

// Top returns the highest-ranked signal, or nil when the run produced
// none.
func (r *ScanReport) Top() *Signal {
	if len(r.Signals) == 0 {
		return nil
	}
	return &r.Signals[0]
}
