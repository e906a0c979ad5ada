package models

import "time"

// PriceBar is one daily OHLCV record for a symbol. Immutable once recorded.
type PriceBar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries is a contiguous, date-ascending sequence of bars for one symbol.
type PriceSeries struct {
	Symbol string
	Bars   []PriceBar
}

// MinBars is the minimum series length before any indicator is trusted.
const MinBars = 14

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Last returns the most recent bar and false if the series is empty.
func (s PriceSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes extracts the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// SortedByDate reports whether bar dates are strictly increasing.
func (s PriceSeries) SortedByDate() bool {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return false
		}
	}
	return true
}
