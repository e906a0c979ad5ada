package timing

import "VolScan/internal/domain/models"

// Entry windows by signal type and strength bucket. Strong directional
// signals trade the morning momentum windows; moderate ones wait for
// the afternoon ranges. Hedges use the midday lull regardless of
// strength, and volatility plays enter near the open while ranges are
// still being set.
const (
	windowPutStrong  = "10:00–10:30"
	windowPutMod     = "14:30–15:00"
	windowCallStrong = "9:45–10:15"
	windowCallMod    = "15:00–15:30"
	windowHedge      = "11:30–13:00"
	windowVolatility = "9:45–10:30"
)

// Resolver maps a signal type and strength to its recommended entry
// window. Stateless; every lookup with the same inputs yields the same
// window.
type Resolver struct{}

// New builds a timing resolver.
func New() *Resolver { return &Resolver{} }

// Window returns the entry window for sig. Strength buckets are
// strong (4..5) and moderate (1..3).
func (Resolver) Window(sig models.Signal) string {
	strong := sig.Strong()
	switch sig.Type {
	case models.SignalPut:
		if strong {
			return windowPutStrong
		}
		return windowPutMod
	case models.SignalCall:
		if strong {
			return windowCallStrong
		}
		return windowCallMod
	case models.SignalHedge:
		return windowHedge
	case models.SignalVolatility:
		return windowVolatility
	default:
		return ""
	}
}
