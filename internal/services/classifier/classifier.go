package classifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"VolScan/internal/domain/models"
)

// Weights scale the four strength factors. All must be non-negative;
// the composite is normalized by the sum of the weights that apply to
// a given signal type, so only relative magnitudes matter.
type Weights struct {
	RSI    float64
	Band   float64
	ATR    float64
	Regime float64
}

// Config carries the trigger thresholds and risk parameters for signal
// classification.
type Config struct {
	RSIOverbought     float64
	RSIOversold       float64
	HVPercentileMin   float64
	Weights           Weights
	StopATRMultiple   float64
	TargetATRMultiple float64
}

// Classifier turns an indicator snapshot into at most one trade signal.
// Rules are evaluated in fixed priority order and the first trigger
// wins, so a symbol never emits more than one signal per run.
type Classifier struct {
	cfg Config
	now func() time.Time
}

// New builds a classifier from cfg.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg, now: time.Now}
}

// rule pairs a signal type with its trigger predicate.
type rule struct {
	typ   models.SignalType
	match func(cfg Config, snap models.IndicatorSnapshot) bool
}

// rules is the trigger sequence, highest priority first. The first
// match wins, so a symbol never emits more than one signal per run.
// The directional predicates require a defined Bollinger band: on a
// series too short for the band period there is no band to penetrate.
// An EXTREME regime escalates past HEDGE to the volatility play; HEDGE
// covers the HIGH regime with elevated HV.
var rules = []rule{
	{models.SignalPut, func(cfg Config, snap models.IndicatorSnapshot) bool {
		return snap.BollingerOK && snap.RSI14 > cfg.RSIOverbought && snap.Close > snap.BollingerUpper
	}},
	{models.SignalCall, func(cfg Config, snap models.IndicatorSnapshot) bool {
		return snap.BollingerOK && snap.RSI14 < cfg.RSIOversold && snap.Close < snap.BollingerLower
	}},
	{models.SignalHedge, func(cfg Config, snap models.IndicatorSnapshot) bool {
		return snap.Regime == models.RegimeHigh && snap.HVPercentile > cfg.HVPercentileMin
	}},
	{models.SignalVolatility, func(cfg Config, snap models.IndicatorSnapshot) bool {
		return snap.Regime == models.RegimeExtreme
	}},
}

// Classify evaluates snap against the rule sequence
// PUT > CALL > HEDGE > VOLATILITY_PLAY. The second return value is
// false when no rule triggers.
func (c *Classifier) Classify(snap models.IndicatorSnapshot) (models.Signal, bool) {
	for _, r := range rules {
		if r.match(c.cfg, snap) {
			return c.emit(snap, r.typ), true
		}
	}
	return models.Signal{}, false
}

func (c *Classifier) emit(snap models.IndicatorSnapshot, typ models.SignalType) models.Signal {
	sig := models.Signal{
		ID:         uuid.NewString(),
		Symbol:     snap.Symbol,
		Type:       typ,
		Strength:   c.strength(snap, typ),
		EntryPrice: snap.Close,
		CreatedAt:  c.now().UTC(),
		Rationale:  rationale(snap, typ, c.cfg),
	}

	sig.StrikePrice = nearestStrike(snap.Close)

	if typ.Directional() {
		risk := c.cfg.StopATRMultiple * snap.ATR14
		reward := c.cfg.TargetATRMultiple * snap.ATR14
		if typ.Bearish() {
			sig.StopLoss = snap.Close + risk
			sig.TargetPrice = snap.Close - reward
		} else {
			sig.StopLoss = snap.Close - risk
			sig.TargetPrice = snap.Close + reward
		}
	}
	return sig
}

// strength maps the weighted factor composite onto the 1..5 scale.
// Each factor is clamped to [0,1] and each is non-decreasing in its
// input, so raising any single factor can never lower the result.
func (c *Classifier) strength(snap models.IndicatorSnapshot, typ models.SignalType) int {
	w := c.cfg.Weights

	atrFactor := clamp01(snap.ATRPercentile / 100)
	regimeFactor := regimeScore(snap.Regime)

	var score, total float64
	if typ == models.SignalPut || typ == models.SignalCall {
		var rsiFactor, bandFactor float64
		if typ == models.SignalPut {
			rsiFactor = clamp01((snap.RSI14 - c.cfg.RSIOverbought) / 5)
			bandFactor = penetration(snap.Close-snap.BollingerUpper, snap.BollingerUpper-snap.BollingerLower)
		} else {
			rsiFactor = clamp01((c.cfg.RSIOversold - snap.RSI14) / 5)
			bandFactor = penetration(snap.BollingerLower-snap.Close, snap.BollingerUpper-snap.BollingerLower)
		}
		score = w.RSI*rsiFactor + w.Band*bandFactor + w.ATR*atrFactor + w.Regime*regimeFactor
		total = w.RSI + w.Band + w.ATR + w.Regime
	} else {
		// Volatility-driven signals have no directional RSI or band
		// factor; rank them on volatility alone.
		score = w.ATR*atrFactor + w.Regime*regimeFactor
		total = w.ATR + w.Regime
	}

	if total <= 0 {
		return 1
	}
	s := 1 + int(math.Round(score/total*4))
	if s < 1 {
		s = 1
	}
	if s > 5 {
		s = 5
	}
	return s
}

// penetration normalizes how far price pushed past a band, measured
// against half the band width.
func penetration(dist, width float64) float64 {
	if width <= 0 || dist <= 0 {
		return 0
	}
	return clamp01(dist / (width / 2))
}

func regimeScore(r models.VolatilityRegime) float64 {
	switch r {
	case models.RegimeExtreme:
		return 1.0
	case models.RegimeHigh:
		return 0.7
	case models.RegimeNormal:
		return 0.3
	default:
		return 0
	}
}

// nearestStrike rounds price to the closest standard option strike
// increment for its price band.
func nearestStrike(price float64) float64 {
	var inc float64
	switch {
	case price < 25:
		inc = 0.5
	case price < 100:
		inc = 1
	case price < 200:
		inc = 5
	default:
		inc = 10
	}
	return math.Round(price/inc) * inc
}

func rationale(snap models.IndicatorSnapshot, typ models.SignalType, cfg Config) string {
	var parts []string
	switch typ {
	case models.SignalPut:
		parts = append(parts,
			fmt.Sprintf("RSI overbought at %.1f", snap.RSI14),
			fmt.Sprintf("price %.2f above upper Bollinger Band %.2f", snap.Close, snap.BollingerUpper))
	case models.SignalCall:
		parts = append(parts,
			fmt.Sprintf("RSI oversold at %.1f", snap.RSI14),
			fmt.Sprintf("price %.2f below lower Bollinger Band %.2f", snap.Close, snap.BollingerLower))
	case models.SignalHedge:
		parts = append(parts,
			fmt.Sprintf("volatility regime %s", snap.Regime),
			fmt.Sprintf("HV percentile %.0f above %.0f", snap.HVPercentile, cfg.HVPercentileMin))
	case models.SignalVolatility:
		parts = append(parts,
			"extreme volatility regime with no directional trigger",
			fmt.Sprintf("HV percentile %.0f", snap.HVPercentile))
	}
	parts = append(parts, fmt.Sprintf("ATR percentile %.0f", snap.ATRPercentile))
	return strings.Join(parts, "; ")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
