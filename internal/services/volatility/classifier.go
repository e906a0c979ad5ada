package volatility

import (
	"VolScan/internal/domain/models"
	"VolScan/internal/services/features"
)

// Thresholds are the regime boundaries on the HV percentile scale.
// They come from configuration so they can be tuned without touching
// classification logic.
type Thresholds struct {
	ExtremeMin float64 // percentile >= ExtremeMin -> EXTREME
	HighMin    float64 // percentile >= HighMin    -> HIGH
	LowMax     float64 // percentile <= LowMax     -> LOW
}

// Classifier computes 20-day annualized historical volatility, ranks it
// against its own trailing history and maps the rank to a regime.
type Classifier struct {
	thresholds Thresholds
	hvPeriod   int
	rankWindow int
}

// New builds a classifier. hvPeriod and rankWindow fall back to the
// standard 20-day / 100-day windows when zero.
func New(t Thresholds, hvPeriod, rankWindow int) *Classifier {
	if hvPeriod <= 0 {
		hvPeriod = 20
	}
	if rankWindow <= 0 {
		rankWindow = 100
	}
	return &Classifier{thresholds: t, hvPeriod: hvPeriod, rankWindow: rankWindow}
}

// Classify returns the annualized HV of the latest window, its
// percentile within the trailing rolling-HV history and the regime
// bucket. A series too short for the HV window yields zero HV with the
// percentile ranked over whatever history exists.
func (c *Classifier) Classify(bars []models.PriceBar) (float64, float64, models.VolatilityRegime) {
	rets := features.ComputeLogReturns(bars)
	hv := features.RealizedVolatility(rets, c.hvPeriod)

	history := features.RollingVolatility(rets, c.hvPeriod)
	if len(history) > c.rankWindow {
		history = history[len(history)-c.rankWindow:]
	}
	pct := features.PercentileRank(history, hv)

	return hv, pct, c.regimeFor(pct)
}

func (c *Classifier) regimeFor(percentile float64) models.VolatilityRegime {
	switch {
	case percentile >= c.thresholds.ExtremeMin:
		return models.RegimeExtreme
	case percentile >= c.thresholds.HighMin:
		return models.RegimeHigh
	case percentile <= c.thresholds.LowMax:
		return models.RegimeLow
	default:
		return models.RegimeNormal
	}
}
