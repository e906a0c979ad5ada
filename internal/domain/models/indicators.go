package models

import "time"

// VolatilityRegime is the discrete volatility bucket for a symbol.
type VolatilityRegime string

const (
	RegimeLow     VolatilityRegime = "LOW"
	RegimeNormal  VolatilityRegime = "NORMAL"
	RegimeHigh    VolatilityRegime = "HIGH"
	RegimeExtreme VolatilityRegime = "EXTREME"
)

// IndicatorSnapshot carries every derived metric for a symbol at an
// evaluation date. Recomputed fresh each run; a new snapshot supersedes
// the previous one, fields are never mutated in place.
type IndicatorSnapshot struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`

	RSI14         float64 `json:"rsi14"`
	ATR14         float64 `json:"atr14"`
	ATRPercentile float64 `json:"atr_percentile"` // 0..100, rank within trailing 100 ATR values

	// BollingerOK is false when the series is shorter than the band
	// period; the band fields are then meaningless and must not be
	// compared against price.
	BollingerOK    bool    `json:"bollinger_ok"`
	SMA20          float64 `json:"sma20"`
	BollingerUpper float64 `json:"bollinger_upper"`
	BollingerLower float64 `json:"bollinger_lower"`
	BandWidth      float64 `json:"band_width"` // (upper-lower)/sma, 0 when SMA undefined
	PercentB       float64 `json:"percent_b"`  // (close-lower)/(upper-lower)

	HV20         float64          `json:"historical_volatility_20d"` // annualized
	HVPercentile float64          `json:"hv_percentile"`
	Regime       VolatilityRegime `json:"volatility_regime"`

	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// ScreenResult is one screener verdict. Order of results follows the
// input universe order.
type ScreenResult struct {
	Symbol   string             `json:"symbol"`
	Passed   bool               `json:"passed"`
	Reason   string             `json:"reason,omitempty"`
	Snapshot *IndicatorSnapshot `json:"snapshot,omitempty"`
}
