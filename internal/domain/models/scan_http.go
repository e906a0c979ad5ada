package models

// Requests for scanner HTTP endpoints. Defined in domain for consistency and reuse.

type ScreenRequest struct {
	Symbols string `query:"symbols" json:"symbols"` // comma-separated override, default watchlist
	Passed  bool   `query:"passed" json:"passed"`   // only passing rows
}

type SignalsRequest struct {
	Type  string `query:"type" json:"type" validate:"omitempty,oneof=PUT_OPPORTUNITY CALL_OPPORTUNITY HEDGE_SIGNAL VOLATILITY_PLAY"`
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type PredictionsRequest struct {
	Status string `query:"status" json:"status" validate:"omitempty,oneof=PENDING TARGET_HIT STOP_HIT EXPIRED"`
	Symbol string `query:"symbol" json:"symbol"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
