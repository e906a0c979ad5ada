package volatility

import (
	"math"
	"testing"
	"time"

	"VolScan/internal/domain/models"
)

func defaultThresholds() Thresholds {
	return Thresholds{ExtremeMin: 90, HighMin: 70, LowMax: 20}
}

// calmThenShocked builds a series that trades flat and then swings hard,
// pushing the latest rolling HV to the top of its own history.
func calmThenShocked(calm, shocked int) []models.PriceBar {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, 0, calm+shocked)
	price := 100.0
	for i := 0; i < calm; i++ {
		price *= 1 + 0.0005*math.Sin(float64(i))
		bars = append(bars, models.PriceBar{Symbol: "X", Date: day.AddDate(0, 0, i), Close: price})
	}
	for i := 0; i < shocked; i++ {
		if i%2 == 0 {
			price *= 1.08
		} else {
			price *= 0.93
		}
		bars = append(bars, models.PriceBar{Symbol: "X", Date: day.AddDate(0, 0, calm+i), Close: price})
	}
	return bars
}

func TestClassifyExtremeAfterShock(t *testing.T) {
	c := New(defaultThresholds(), 20, 100)
	hv, pct, regime := c.Classify(calmThenShocked(120, 25))
	if hv <= 0 {
		t.Fatalf("expected positive HV, got %v", hv)
	}
	if pct < 90 {
		t.Fatalf("expected percentile >= 90 after shock, got %v", pct)
	}
	if regime != models.RegimeExtreme {
		t.Fatalf("regime = %v, want EXTREME", regime)
	}
}

func TestClassifyLowInCalmTail(t *testing.T) {
	// Shock first, then a long calm stretch: current HV ranks near the
	// bottom of its history.
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	var bars []models.PriceBar
	price := 100.0
	for i := 0; i < 30; i++ {
		if i%2 == 0 {
			price *= 1.06
		} else {
			price *= 0.95
		}
		bars = append(bars, models.PriceBar{Symbol: "X", Date: day.AddDate(0, 0, i), Close: price})
	}
	for i := 0; i < 90; i++ {
		amp := 0.01 * math.Exp(-float64(i)/15)
		price *= 1 + amp*math.Sin(float64(i))
		bars = append(bars, models.PriceBar{Symbol: "X", Date: day.AddDate(0, 0, 30+i), Close: price})
	}

	c := New(defaultThresholds(), 20, 100)
	_, pct, regime := c.Classify(bars)
	if pct > 20 {
		t.Fatalf("expected percentile <= 20 in calm tail, got %v", pct)
	}
	if regime != models.RegimeLow {
		t.Fatalf("regime = %v, want LOW", regime)
	}
}

func TestThresholdsAreConfiguration(t *testing.T) {
	// With LowMax raised to 99 almost everything classifies LOW.
	c := New(Thresholds{ExtremeMin: 100, HighMin: 100, LowMax: 99}, 20, 100)
	_, _, regime := c.Classify(calmThenShocked(120, 25))
	if regime != models.RegimeLow {
		t.Fatalf("regime = %v, want LOW under permissive thresholds", regime)
	}
}

func TestClassifyShortSeries(t *testing.T) {
	c := New(defaultThresholds(), 20, 100)
	hv, _, regime := c.Classify(calmThenShocked(5, 0))
	if hv != 0 {
		t.Fatalf("expected zero HV for short series, got %v", hv)
	}
	if regime != models.RegimeNormal && regime != models.RegimeLow {
		t.Fatalf("unexpected regime for short series: %v", regime)
	}
}
