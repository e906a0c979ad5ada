package indicators

import (
	"math"
	"testing"
	"time"

	"VolScan/internal/domain/models"
	"VolScan/internal/services/volatility"
)

func seriesFromCloses(symbol string, closes []float64) models.PriceSeries {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, 0, len(closes))
	for i, c := range closes {
		bars = append(bars, models.PriceBar{
			Symbol: symbol,
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1_000_000,
		})
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}
}

func trendingCloses(n int, step float64) []float64 {
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		price += step * math.Sin(float64(i)*0.7)
		out[i] = price
	}
	return out
}

func TestRSIBounds(t *testing.T) {
	s := seriesFromCloses("AAPL", trendingCloses(60, 2.5))
	v, ok := RSI(s.Bars, 14)
	if !ok {
		t.Fatal("expected RSI to be available")
	}
	if v < 0 || v > 100 {
		t.Fatalf("RSI out of bounds: %v", v)
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	v, ok := RSI(seriesFromCloses("UP", closes).Bars, 14)
	if !ok {
		t.Fatal("expected RSI to be available")
	}
	if v != 100 {
		t.Fatalf("RSI for monotone gains = %v, want 100", v)
	}
}

func TestRSIInsufficientBars(t *testing.T) {
	s := seriesFromCloses("AAPL", trendingCloses(14, 1))
	if _, ok := RSI(s.Bars, 14); ok {
		t.Fatal("expected RSI unavailable with only 14 bars")
	}
}

func TestATRPositive(t *testing.T) {
	s := seriesFromCloses("MSFT", trendingCloses(40, 3))
	v, ok := ATR(s.Bars, 14)
	if !ok {
		t.Fatal("expected ATR to be available")
	}
	if v <= 0 {
		t.Fatalf("ATR = %v, want > 0", v)
	}
}

func TestBollingerOrdering(t *testing.T) {
	s := seriesFromCloses("NVDA", trendingCloses(45, 4))
	upper, middle, lower, ok := Bollinger(s.Bars, 20, 2)
	if !ok {
		t.Fatal("expected bands to be available")
	}
	if !(upper >= middle && middle >= lower) {
		t.Fatalf("band ordering violated: upper=%v middle=%v lower=%v", upper, middle, lower)
	}
}

func TestBuildRejectsShortSeries(t *testing.T) {
	e := NewEngine(volatility.New(volatility.Thresholds{ExtremeMin: 90, HighMin: 70, LowMax: 20}, 20, 100))
	if _, ok := e.Build(seriesFromCloses("TSLA", trendingCloses(models.MinBars-1, 1))); ok {
		t.Fatal("expected short series to be rejected")
	}
}

func TestBuildYoungSeriesLeavesBollingerUnavailable(t *testing.T) {
	e := NewEngine(volatility.New(volatility.Thresholds{ExtremeMin: 90, HighMin: 70, LowMax: 20}, 20, 100))

	// 15 bars: enough for a snapshot, one short of RSI, five short of
	// the 20-bar band.
	snap, ok := e.Build(seriesFromCloses("NEW", trendingCloses(15, 1)))
	if !ok {
		t.Fatal("expected snapshot for 15 bars")
	}
	if snap.BollingerOK {
		t.Fatal("Bollinger must be unavailable below the band period")
	}
	if snap.BollingerUpper != 0 || snap.BollingerLower != 0 {
		t.Fatalf("unavailable band carries values: %v/%v", snap.BollingerUpper, snap.BollingerLower)
	}

	long, ok := e.Build(seriesFromCloses("OLD", trendingCloses(40, 1)))
	if !ok {
		t.Fatal("expected snapshot for 40 bars")
	}
	if !long.BollingerOK {
		t.Fatal("Bollinger must be available at 40 bars")
	}
}

func TestBuildDeterministic(t *testing.T) {
	e := NewEngine(volatility.New(volatility.Thresholds{ExtremeMin: 90, HighMin: 70, LowMax: 20}, 20, 100))
	s := seriesFromCloses("AMD", trendingCloses(150, 2))

	a, ok := e.Build(s)
	if !ok {
		t.Fatal("expected snapshot")
	}
	b, _ := e.Build(s)
	if a != b {
		t.Fatalf("snapshots differ across identical inputs:\n%+v\n%+v", a, b)
	}

	if a.Symbol != "AMD" {
		t.Fatalf("symbol = %q", a.Symbol)
	}
	if a.ATRPercentile < 0 || a.ATRPercentile > 100 {
		t.Fatalf("ATR percentile out of bounds: %v", a.ATRPercentile)
	}
	if a.BandWidth <= 0 {
		t.Fatalf("band width = %v, want > 0", a.BandWidth)
	}
	if a.Regime == "" {
		t.Fatal("regime not set")
	}
}
