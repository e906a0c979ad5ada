package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Thresholds.RSIOverbought != 70 {
		t.Fatalf("rsi_overbought default = %v", c.Thresholds.RSIOverbought)
	}
	if c.Thresholds.ATRPercentileMin != 50 {
		t.Fatalf("atr_percentile_min default = %v", c.Thresholds.ATRPercentileMin)
	}
	if c.Risk.HoldingDays != 30 {
		t.Fatalf("holding_days default = %v", c.Risk.HoldingDays)
	}
	if len(c.Scanner.Watchlist) != 100 {
		t.Fatalf("expected NASDAQ-100 watchlist, got %d symbols", len(c.Scanner.Watchlist))
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("thresholds:\n  atr_percentile_min: 65\nscanner:\n  watchlist: [AAPL, MSFT]\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Thresholds.ATRPercentileMin != 65 {
		t.Fatalf("atr_percentile_min = %v", c.Thresholds.ATRPercentileMin)
	}
	if len(c.Scanner.Watchlist) != 2 {
		t.Fatalf("watchlist = %v", c.Scanner.Watchlist)
	}
	// untouched fields keep defaults
	if c.Thresholds.RSIOversold != 30 {
		t.Fatalf("rsi_oversold = %v", c.Thresholds.RSIOversold)
	}
}

func TestValidateRejectsInvertedRSI(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.Thresholds.RSIOversold = 80
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for oversold >= overbought")
	}
}

func TestValidateRejectsNegativePercentile(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.Thresholds.ATRPercentileMin = -5
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for negative percentile")
	}
}

func TestValidateRejectsUnorderedRegime(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c.Regime.HighMin = 95 // above extreme_min
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for high_min >= extreme_min")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ATR_PERCENTILE_MIN", "72.5")
	c, err := LoadWithEnv("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Thresholds.ATRPercentileMin != 72.5 {
		t.Fatalf("atr_percentile_min = %v", c.Thresholds.ATRPercentileMin)
	}
}
