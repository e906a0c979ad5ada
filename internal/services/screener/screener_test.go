package screener

import (
	"strings"
	"testing"

	"VolScan/internal/domain/models"
)

func snapshot(atrPct float64, volume int64) *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Symbol:        "AAPL",
		ATRPercentile: atrPct,
		Volume:        volume,
		Close:         187.5,
	}
}

func TestScreenPasses(t *testing.T) {
	s := New(50)
	res := s.Screen("AAPL", snapshot(82, 4_000_000))
	if !res.Passed {
		t.Fatalf("expected pass, got reason %q", res.Reason)
	}
	if res.Snapshot == nil {
		t.Fatal("passing result must carry its snapshot")
	}
}

func TestScreenNilSnapshotExcluded(t *testing.T) {
	s := New(50)
	res := s.Screen("NEWCO", nil)
	if res.Passed {
		t.Fatal("expected exclusion for missing snapshot")
	}
	if !strings.Contains(res.Reason, "insufficient history") {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestScreenATRPercentileAtMinimumExcluded(t *testing.T) {
	s := New(50)
	res := s.Screen("AAPL", snapshot(50, 4_000_000))
	if res.Passed {
		t.Fatal("expected exclusion at the minimum percentile boundary")
	}
	if !strings.Contains(res.Reason, "ATR percentile") {
		t.Fatalf("reason = %q", res.Reason)
	}
}

func TestScreenZeroVolumeExcluded(t *testing.T) {
	s := New(50)
	if res := s.Screen("AAPL", snapshot(82, 0)); res.Passed {
		t.Fatal("expected exclusion for zero volume")
	}
}

func TestScreenAllPreservesOrder(t *testing.T) {
	s := New(50)
	symbols := []string{"MSFT", "AAPL", "NVDA"}
	snaps := map[string]*models.IndicatorSnapshot{
		"MSFT": snapshot(90, 1),
		"NVDA": snapshot(10, 1),
	}
	out := s.ScreenAll(symbols, snaps)
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	for i, sym := range symbols {
		if out[i].Symbol != sym {
			t.Fatalf("result %d = %s, want %s", i, out[i].Symbol, sym)
		}
	}
	if !out[0].Passed || out[1].Passed || out[2].Passed {
		t.Fatalf("unexpected pass pattern: %+v", out)
	}
}
