package features

import (
	"math"

	"VolScan/internal/domain/models"
)

// TradingDaysPerYear is the annualization base for daily bars.
const TradingDaysPerYear = 252

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(bars)-1, or nil if insufficient data.
func ComputeLogReturns(bars []models.PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		cur := bars[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over the
// latest window of log returns. Returns 0 when the window cannot be filled.
func RealizedVolatility(logReturns []float64, window int) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * TradingDaysPerYear)
}

// RollingVolatility computes the annualized realized volatility at every
// position where the window fits, oldest first. Used for percentile
// ranking of the current value against its own history.
func RollingVolatility(logReturns []float64, window int) []float64 {
	if window <= 1 || len(logReturns) < window {
		return nil
	}
	out := make([]float64, 0, len(logReturns)-window+1)
	for end := window; end <= len(logReturns); end++ {
		out = append(out, RealizedVolatility(logReturns[:end], window))
	}
	return out
}

// PercentileRank ranks value within history on a 0..100 scale using the
// rank-inclusive convention: count of values <= value, divided by total.
func PercentileRank(history []float64, value float64) float64 {
	if len(history) == 0 {
		return 0
	}
	n := 0
	for _, v := range history {
		if v <= value {
			n++
		}
	}
	return float64(n) / float64(len(history)) * 100
}
