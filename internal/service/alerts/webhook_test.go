package alerts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"VolScan/internal/domain/models"
)

func strongSignal() models.Signal {
	return models.Signal{
		ID:          "sig-1",
		Symbol:      "AAPL",
		Type:        models.SignalPut,
		Strength:    5,
		EntryPrice:  187.50,
		StrikePrice: 185,
		StopLoss:    190.10,
		TargetPrice: 182.30,
		EntryWindow: "10:00–10:30",
		CreatedAt:   time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC),
		Rationale:   "RSI overbought at 74.3",
	}
}

func TestNotifySignalsRespectsStrengthGate(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(Config{DiscordWebhookURL: srv.URL, MinStrength: 4})
	weak := strongSignal()
	weak.Strength = 2

	sent := n.NotifySignals(context.Background(), []models.Signal{strongSignal(), weak})
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if hits != 1 {
		t.Fatalf("webhook hits = %d, want 1", hits)
	}
}

func TestNotifySignalDiscordEmbedShape(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := New(Config{DiscordWebhookURL: srv.URL})
	if !n.NotifySignal(context.Background(), strongSignal()) {
		t.Fatal("expected delivery to succeed")
	}

	var payload struct {
		Embeds []struct {
			Title  string `json:"title"`
			Color  int    `json:"color"`
			Fields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
		} `json:"embeds"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal embed: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(payload.Embeds))
	}
	if payload.Embeds[0].Color != 0xFF4444 {
		t.Fatalf("put color = %x", payload.Embeds[0].Color)
	}
	names := map[string]bool{}
	for _, f := range payload.Embeds[0].Fields {
		names[f.Name] = true
	}
	for _, want := range []string{"Signal Type", "Strength", "Entry Price", "Stop Loss", "Target", "Rationale"} {
		if !names[want] {
			t.Fatalf("embed missing field %q", want)
		}
	}
}

func TestNotifySignalFailedWebhookReportsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := New(Config{SlackWebhookURL: srv.URL})
	if n.NotifySignal(context.Background(), strongSignal()) {
		t.Fatal("failed webhook must report false")
	}
}

func TestNotifierDisabledWithoutURLs(t *testing.T) {
	if New(Config{}).Enabled() {
		t.Fatal("notifier with no URLs must be disabled")
	}
}
