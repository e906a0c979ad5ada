package features

import (
	"math"
	"testing"
	"time"

	"VolScan/internal/domain/models"
)

func barsFromCloses(closes []float64) []models.PriceBar {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = models.PriceBar{Symbol: "TEST", Date: day.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	rets := ComputeLogReturns(barsFromCloses([]float64{100, 110, 99}))
	if len(rets) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(rets))
	}
	want := math.Log(110.0 / 100.0)
	if math.Abs(rets[0]-want) > 1e-12 {
		t.Fatalf("rets[0] = %v, want %v", rets[0], want)
	}
}

func TestComputeLogReturnsShortSeries(t *testing.T) {
	if rets := ComputeLogReturns(barsFromCloses([]float64{100})); rets != nil {
		t.Fatalf("expected nil for single bar, got %v", rets)
	}
}

func TestRealizedVolatilityConstantPrices(t *testing.T) {
	rets := ComputeLogReturns(barsFromCloses([]float64{50, 50, 50, 50, 50, 50}))
	if v := RealizedVolatility(rets, 5); v != 0 {
		t.Fatalf("constant prices should have zero volatility, got %v", v)
	}
}

func TestRealizedVolatilityWindowTooLarge(t *testing.T) {
	if v := RealizedVolatility([]float64{0.01, -0.02}, 20); v != 0 {
		t.Fatalf("expected 0 for unfilled window, got %v", v)
	}
}

func TestPercentileRankInclusive(t *testing.T) {
	hist := []float64{1, 2, 3, 4, 5}
	if p := PercentileRank(hist, 3); p != 60 {
		t.Fatalf("rank of 3 = %v, want 60", p)
	}
	if p := PercentileRank(hist, 5); p != 100 {
		t.Fatalf("rank of max = %v, want 100", p)
	}
	if p := PercentileRank(hist, 0.5); p != 0 {
		t.Fatalf("rank below min = %v, want 0", p)
	}
}

func TestRollingVolatilityLength(t *testing.T) {
	rets := make([]float64, 10)
	for i := range rets {
		rets[i] = float64(i%3-1) * 0.01
	}
	vols := RollingVolatility(rets, 4)
	if len(vols) != 7 {
		t.Fatalf("expected 7 rolling values, got %d", len(vols))
	}
}
