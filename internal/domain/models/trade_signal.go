package models

import "time"

// SignalType identifies the trade idea a signal encodes.
type SignalType string

const (
	SignalPut        SignalType = "PUT_OPPORTUNITY"
	SignalCall       SignalType = "CALL_OPPORTUNITY"
	SignalHedge      SignalType = "HEDGE_SIGNAL"
	SignalVolatility SignalType = "VOLATILITY_PLAY"
)

// Bearish reports whether the signal profits from falling prices.
// Volatility plays are direction-neutral and return false.
func (t SignalType) Bearish() bool {
	return t == SignalPut || t == SignalHedge
}

// Directional reports whether the signal carries stop/target levels
// that later price action can cross.
func (t SignalType) Directional() bool {
	return t != SignalVolatility
}

// Signal is one emitted trade signal. Created once by the classifier and
// immutable afterwards; the tracker references it only by ID.
type Signal struct {
	ID          string     `json:"id"`
	Symbol      string     `json:"symbol"`
	Type        SignalType `json:"type"`
	Strength    int        `json:"strength"` // 1..5
	EntryPrice  float64    `json:"entry_price"`
	StrikePrice float64    `json:"strike_price"`
	StopLoss    float64    `json:"stop_loss"`
	TargetPrice float64    `json:"target_price"`
	EntryWindow string     `json:"entry_window"`
	CreatedAt   time.Time  `json:"created_at"`
	Rationale   string     `json:"rationale"`
}

// Strong reports whether the signal falls into the 4..5 strength bucket.
func (s Signal) Strong() bool { return s.Strength >= 4 }
