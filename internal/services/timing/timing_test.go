package timing

import (
	"testing"

	"VolScan/internal/domain/models"
)

func TestWindowTable(t *testing.T) {
	r := New()
	cases := []struct {
		typ      models.SignalType
		strength int
		want     string
	}{
		{models.SignalPut, 5, "10:00–10:30"},
		{models.SignalPut, 4, "10:00–10:30"},
		{models.SignalPut, 3, "14:30–15:00"},
		{models.SignalPut, 1, "14:30–15:00"},
		{models.SignalCall, 4, "9:45–10:15"},
		{models.SignalCall, 2, "15:00–15:30"},
		{models.SignalHedge, 5, "11:30–13:00"},
		{models.SignalHedge, 1, "11:30–13:00"},
	}
	for _, tc := range cases {
		sig := models.Signal{Type: tc.typ, Strength: tc.strength}
		if got := r.Window(sig); got != tc.want {
			t.Fatalf("Window(%v, %d) = %q, want %q", tc.typ, tc.strength, got, tc.want)
		}
	}
}

func TestWindowDeterministic(t *testing.T) {
	r := New()
	sig := models.Signal{Type: models.SignalVolatility, Strength: 3}
	a := r.Window(sig)
	b := r.Window(sig)
	if a == "" || a != b {
		t.Fatalf("volatility window unstable: %q vs %q", a, b)
	}
}

func TestWindowUnknownTypeEmpty(t *testing.T) {
	if got := (Resolver{}).Window(models.Signal{Type: models.SignalType("BOGUS"), Strength: 3}); got != "" {
		t.Fatalf("unknown type window = %q, want empty", got)
	}
}
