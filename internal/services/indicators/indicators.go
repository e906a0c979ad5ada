package indicators

import (
	"math"

	"VolScan/internal/domain/models"
	"VolScan/internal/services/features"
)

const (
	rsiPeriod       = 14
	atrPeriod       = 14
	bollingerPeriod = 20
	bollingerStd    = 2.0
	atrRankWindow   = 100
)

// RSI computes the 14-period Relative Strength Index with Wilder
// smoothing over the full series, using bars up to and including the
// last one. Returns (0, false) when fewer than period+1 bars exist.
func RSI(bars []models.PriceBar, period int) (float64, bool) {
	if len(bars) < period+1 {
		return 0, false
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing for the remainder of the series.
	for i := period + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(bar models.PriceBar, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if d := math.Abs(bar.High - prevClose); d > tr {
		tr = d
	}
	if d := math.Abs(bar.Low - prevClose); d > tr {
		tr = d
	}
	return tr
}

// ATRSeries computes the Wilder-smoothed Average True Range at every bar
// where the period is filled, oldest first. The value at index i of the
// result corresponds to bar period+i of the input.
func ATRSeries(bars []models.PriceBar, period int) []float64 {
	if len(bars) < period+1 {
		return nil
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += trueRange(bars[i], bars[i-1].Close)
	}
	atr := sum / float64(period)

	out := make([]float64, 0, len(bars)-period)
	out = append(out, atr)
	for i := period + 1; i < len(bars); i++ {
		tr := trueRange(bars[i], bars[i-1].Close)
		atr = (atr*float64(period-1) + tr) / float64(period)
		out = append(out, atr)
	}
	return out
}

// ATR returns the latest Average True Range value.
func ATR(bars []models.PriceBar, period int) (float64, bool) {
	s := ATRSeries(bars, period)
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// Bollinger computes the 20-period SMA of closes with bands at
// +-stdDev standard deviations. Undefined before period bars.
func Bollinger(bars []models.PriceBar, period int, stdDev float64) (upper, middle, lower float64, ok bool) {
	if len(bars) < period {
		return 0, 0, 0, false
	}

	var sum float64
	for i := len(bars) - period; i < len(bars); i++ {
		sum += bars[i].Close
	}
	middle = sum / float64(period)

	var variance float64
	for i := len(bars) - period; i < len(bars); i++ {
		d := bars[i].Close - middle
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return middle + sd*stdDev, middle, middle - sd*stdDev, true
}

// VolatilityClassifier classifies the volatility state of a bar series.
// Satisfied by volatility.Classifier.
type VolatilityClassifier interface {
	Classify(bars []models.PriceBar) (hv, percentile float64, regime models.VolatilityRegime)
}

// Engine derives indicator snapshots from price series. Pure and
// deterministic: identical series always yield identical snapshots.
type Engine struct {
	vol VolatilityClassifier
}

// NewEngine builds an indicator engine over the given volatility classifier.
func NewEngine(vol VolatilityClassifier) *Engine {
	return &Engine{vol: vol}
}

// Build computes the full snapshot for the latest bar of series.
// Returns false when the series has fewer than models.MinBars bars: no
// indicator is trusted below that, and no numeric value is produced.
func (e *Engine) Build(series models.PriceSeries) (models.IndicatorSnapshot, bool) {
	bars := series.Bars
	if len(bars) < models.MinBars {
		return models.IndicatorSnapshot{}, false
	}
	last := bars[len(bars)-1]

	snap := models.IndicatorSnapshot{
		Symbol: series.Symbol,
		Date:   last.Date,
		Close:  last.Close,
		Volume: last.Volume,
	}

	if v, ok := RSI(bars, rsiPeriod); ok {
		snap.RSI14 = v
	}

	atrs := ATRSeries(bars, atrPeriod)
	if len(atrs) > 0 {
		snap.ATR14 = atrs[len(atrs)-1]
		rank := atrs
		if len(rank) > atrRankWindow {
			rank = rank[len(rank)-atrRankWindow:]
		}
		snap.ATRPercentile = features.PercentileRank(rank, snap.ATR14)
	}

	if upper, middle, lower, ok := Bollinger(bars, bollingerPeriod, bollingerStd); ok {
		snap.BollingerOK = true
		snap.BollingerUpper = upper
		snap.SMA20 = middle
		snap.BollingerLower = lower
		if middle > 0 {
			snap.BandWidth = (upper - lower) / middle
		}
		if width := upper - lower; width > 0 {
			snap.PercentB = (last.Close - lower) / width
		}
	}

	snap.HV20, snap.HVPercentile, snap.Regime = e.vol.Classify(bars)
	return snap, true
}
