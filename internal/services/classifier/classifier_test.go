package classifier

import (
	"strings"
	"testing"

	"VolScan/internal/domain/models"
)

func testConfig() Config {
	return Config{
		RSIOverbought:     70,
		RSIOversold:       30,
		HVPercentileMin:   80,
		Weights:           Weights{RSI: 0.35, Band: 0.30, ATR: 0.20, Regime: 0.15},
		StopATRMultiple:   1.0,
		TargetATRMultiple: 2.0,
	}
}

func TestClassifyOverboughtAboveBandEmitsPut(t *testing.T) {
	c := New(testConfig())
	snap := models.IndicatorSnapshot{
		Symbol:         "XYZ",
		RSI14:          74.3,
		Close:          56.73,
		BollingerOK:    true,
		BollingerUpper: 55.00,
		BollingerLower: 51.00,
		ATR14:          1.2,
		ATRPercentile:  82,
		Regime:         models.RegimeHigh,
	}

	sig, ok := c.Classify(snap)
	if !ok {
		t.Fatal("expected a signal")
	}
	if sig.Type != models.SignalPut {
		t.Fatalf("type = %v, want PUT_OPPORTUNITY", sig.Type)
	}
	if sig.Strength < 4 {
		t.Fatalf("strength = %d, want >= 4", sig.Strength)
	}
	if sig.EntryPrice != 56.73 {
		t.Fatalf("entry = %v", sig.EntryPrice)
	}
	if sig.StopLoss != 56.73+1.2 {
		t.Fatalf("stop = %v, want entry + 1 ATR", sig.StopLoss)
	}
	if sig.TargetPrice != 56.73-2.4 {
		t.Fatalf("target = %v, want entry - 2 ATR", sig.TargetPrice)
	}
	if sig.ID == "" {
		t.Fatal("signal must carry an id")
	}
	if !strings.Contains(sig.Rationale, "RSI overbought") {
		t.Fatalf("rationale = %q", sig.Rationale)
	}
}

func TestClassifyOversoldBelowBandEmitsCall(t *testing.T) {
	c := New(testConfig())
	snap := models.IndicatorSnapshot{
		Symbol:         "ABC",
		RSI14:          22,
		Close:          48.10,
		BollingerOK:    true,
		BollingerUpper: 55.00,
		BollingerLower: 49.00,
		ATR14:          0.9,
		ATRPercentile:  60,
		Regime:         models.RegimeNormal,
	}

	sig, ok := c.Classify(snap)
	if !ok {
		t.Fatal("expected a signal")
	}
	if sig.Type != models.SignalCall {
		t.Fatalf("type = %v, want CALL_OPPORTUNITY", sig.Type)
	}
	if sig.StopLoss >= sig.EntryPrice {
		t.Fatalf("call stop %v must sit below entry %v", sig.StopLoss, sig.EntryPrice)
	}
	if sig.TargetPrice <= sig.EntryPrice {
		t.Fatalf("call target %v must sit above entry %v", sig.TargetPrice, sig.EntryPrice)
	}
}

func TestClassifyExtremeRegimeEmitsVolatilityPlay(t *testing.T) {
	c := New(testConfig())
	snap := models.IndicatorSnapshot{
		Symbol:         "VOL",
		RSI14:          50,
		Close:          120,
		BollingerOK:    true,
		BollingerUpper: 130,
		BollingerLower: 110,
		ATR14:          4,
		ATRPercentile:  95,
		HVPercentile:   95,
		Regime:         models.RegimeExtreme,
	}

	sig, ok := c.Classify(snap)
	if !ok {
		t.Fatal("expected a signal")
	}
	if sig.Type != models.SignalVolatility {
		t.Fatalf("type = %v, want VOLATILITY_PLAY", sig.Type)
	}
	if sig.StopLoss != 0 || sig.TargetPrice != 0 {
		t.Fatalf("volatility play must not carry stop/target, got %v/%v", sig.StopLoss, sig.TargetPrice)
	}
}

func TestClassifyHighRegimeElevatedHVEmitsHedge(t *testing.T) {
	c := New(testConfig())
	snap := models.IndicatorSnapshot{
		Symbol:         "HDG",
		RSI14:          55,
		Close:          210,
		BollingerOK:    true,
		BollingerUpper: 220,
		BollingerLower: 200,
		ATR14:          6,
		ATRPercentile:  85,
		HVPercentile:   88,
		Regime:         models.RegimeHigh,
	}

	sig, ok := c.Classify(snap)
	if !ok {
		t.Fatal("expected a signal")
	}
	if sig.Type != models.SignalHedge {
		t.Fatalf("type = %v, want HEDGE_SIGNAL", sig.Type)
	}
}

func TestClassifyPutOutranksHedge(t *testing.T) {
	c := New(testConfig())
	snap := models.IndicatorSnapshot{
		Symbol:         "PRI",
		RSI14:          78,
		Close:          105,
		BollingerOK:    true,
		BollingerUpper: 100,
		BollingerLower: 90,
		ATR14:          3,
		ATRPercentile:  90,
		HVPercentile:   92,
		Regime:         models.RegimeHigh,
	}

	sig, ok := c.Classify(snap)
	if !ok {
		t.Fatal("expected a signal")
	}
	if sig.Type != models.SignalPut {
		t.Fatalf("type = %v, want PUT_OPPORTUNITY to win priority", sig.Type)
	}
}

func TestClassifyQuietMarketEmitsNothing(t *testing.T) {
	c := New(testConfig())
	snap := models.IndicatorSnapshot{
		Symbol:         "QT",
		RSI14:          50,
		Close:          100,
		BollingerOK:    true,
		BollingerUpper: 105,
		BollingerLower: 95,
		ATRPercentile:  55,
		HVPercentile:   40,
		Regime:         models.RegimeNormal,
	}
	if _, ok := c.Classify(snap); ok {
		t.Fatal("expected no signal in a quiet market")
	}
}

func TestStrengthMonotoneInRSI(t *testing.T) {
	c := New(testConfig())
	base := models.IndicatorSnapshot{
		Symbol:         "MON",
		Close:          56.73,
		BollingerOK:    true,
		BollingerUpper: 55.00,
		BollingerLower: 51.00,
		ATR14:          1.2,
		ATRPercentile:  60,
		Regime:         models.RegimeNormal,
	}

	prev := 0
	for rsi := 70.5; rsi <= 80; rsi += 0.5 {
		snap := base
		snap.RSI14 = rsi
		sig, ok := c.Classify(snap)
		if !ok {
			t.Fatalf("expected PUT at rsi %v", rsi)
		}
		if sig.Strength < prev {
			t.Fatalf("strength dropped from %d to %d as RSI rose to %v", prev, sig.Strength, rsi)
		}
		prev = sig.Strength
	}
}

func TestClassifyUndefinedBandNeverDirectional(t *testing.T) {
	c := New(testConfig())
	// A young series: RSI pegged and ATR ranking against itself alone,
	// but no Bollinger band yet. Neither directional rule may fire off
	// the zero-valued band fields.
	snap := models.IndicatorSnapshot{
		Symbol:        "NEW",
		RSI14:         100,
		Close:         65,
		ATR14:         1.1,
		ATRPercentile: 100,
		Regime:        models.RegimeNormal,
	}
	if sig, ok := c.Classify(snap); ok {
		t.Fatalf("expected no signal without a defined band, got %v", sig.Type)
	}

	snap.RSI14 = 5
	if sig, ok := c.Classify(snap); ok {
		t.Fatalf("expected no CALL without a defined band, got %v", sig.Type)
	}
}

func TestRulePriorityOrder(t *testing.T) {
	want := []models.SignalType{
		models.SignalPut,
		models.SignalCall,
		models.SignalHedge,
		models.SignalVolatility,
	}
	if len(rules) != len(want) {
		t.Fatalf("rule count = %d, want %d", len(rules), len(want))
	}
	for i, r := range rules {
		if r.typ != want[i] {
			t.Fatalf("rule %d = %v, want %v", i, r.typ, want[i])
		}
	}
}

func TestNearestStrikeIncrements(t *testing.T) {
	cases := []struct {
		price float64
		want  float64
	}{
		{12.30, 12.5},
		{56.73, 57},
		{152.40, 150},
		{317.00, 320},
	}
	for _, tc := range cases {
		if got := nearestStrike(tc.price); got != tc.want {
			t.Fatalf("nearestStrike(%v) = %v, want %v", tc.price, got, tc.want)
		}
	}
}
