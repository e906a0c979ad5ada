package screener

import (
	"fmt"

	"VolScan/internal/domain/models"
)

// Screener applies the pre-trade eligibility filter to indicator
// snapshots. A failed screen is an ordinary exclusion, never an error:
// the reason travels with the result so callers can report why a
// symbol dropped out of the scan.
type Screener struct {
	minATRPercentile float64
}

// New builds a screener that requires the ATR percentile to exceed
// minATRPercentile for a symbol to pass.
func New(minATRPercentile float64) *Screener {
	return &Screener{minATRPercentile: minATRPercentile}
}

// Screen evaluates a single symbol. A nil snapshot means the symbol
// had too little history to compute indicators at all.
func (s *Screener) Screen(symbol string, snap *models.IndicatorSnapshot) models.ScreenResult {
	if snap == nil {
		return models.ScreenResult{
			Symbol: symbol,
			Reason: fmt.Sprintf("insufficient history: need at least %d bars", models.MinBars),
		}
	}
	if snap.Volume <= 0 {
		return models.ScreenResult{
			Symbol:   symbol,
			Reason:   "no volume on latest bar",
			Snapshot: snap,
		}
	}
	if snap.ATRPercentile <= s.minATRPercentile {
		return models.ScreenResult{
			Symbol: symbol,
			Reason: fmt.Sprintf("ATR percentile %.1f at or below minimum %.1f",
				snap.ATRPercentile, s.minATRPercentile),
			Snapshot: snap,
		}
	}
	return models.ScreenResult{Symbol: symbol, Passed: true, Snapshot: snap}
}

// ScreenAll evaluates symbols in the given order and preserves it in the
// output. snapshots carries nil entries for symbols whose history was
// too short.
func (s *Screener) ScreenAll(symbols []string, snapshots map[string]*models.IndicatorSnapshot) []models.ScreenResult {
	out := make([]models.ScreenResult, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, s.Screen(sym, snapshots[sym]))
	}
	return out
}
