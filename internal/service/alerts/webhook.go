package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"VolScan/internal/domain/models"
	pkghttp "VolScan/pkg/http"
	applogger "VolScan/pkg/logger"
)

// Config selects the webhook destinations. Empty URLs disable that
// destination; MinStrength gates which signals alert at all.
type Config struct {
	DiscordWebhookURL string
	SlackWebhookURL   string
	MinStrength       int
}

// Notifier pushes signal alerts to Discord and Slack webhooks.
// Delivery is best-effort: a failed webhook is logged, never fatal.
type Notifier struct {
	cfg  Config
	http *pkghttp.Client
	l    *applogger.Logger
}

// New creates a webhook notifier.
func New(cfg Config) *Notifier {
	if cfg.MinStrength <= 0 {
		cfg.MinStrength = 4
	}
	return &Notifier{cfg: cfg, http: pkghttp.NewClient(pkghttp.WithTimeout(10 * time.Second))}
}

// SetLogger injects a structured logger.
func (n *Notifier) SetLogger(l *applogger.Logger) { n.l = l }

// Enabled reports whether any destination is configured.
func (n *Notifier) Enabled() bool {
	return n.cfg.DiscordWebhookURL != "" || n.cfg.SlackWebhookURL != ""
}

// NotifySignals sends one alert per signal at or above the strength
// gate and returns how many were delivered to at least one destination.
func (n *Notifier) NotifySignals(ctx context.Context, signals []models.Signal) int {
	sent := 0
	for _, sig := range signals {
		if sig.Strength < n.cfg.MinStrength {
			continue
		}
		if n.NotifySignal(ctx, sig) {
			sent++
		}
	}
	return sent
}

// NotifySignal delivers one signal and reports whether any destination
// accepted it.
func (n *Notifier) NotifySignal(ctx context.Context, sig models.Signal) bool {
	ok := false
	if n.cfg.DiscordWebhookURL != "" {
		if err := n.post(ctx, n.cfg.DiscordWebhookURL, discordPayload(sig)); err != nil {
			n.logFailure("discord", sig, err)
		} else {
			ok = true
		}
	}
	if n.cfg.SlackWebhookURL != "" {
		if err := n.post(ctx, n.cfg.SlackWebhookURL, slackPayload(sig)); err != nil {
			n.logFailure("slack", sig, err)
		} else {
			ok = true
		}
	}
	return ok
}

// NotifyScanSummary sends a one-line digest of a completed scan.
func (n *Notifier) NotifyScanSummary(ctx context.Context, report *models.ScanReport) {
	text := fmt.Sprintf("Scan complete: %d symbols, %d signals", report.SymbolsScanned, len(report.Signals))
	if top := report.Top(); top != nil {
		text += fmt.Sprintf(" | top: %s %s (strength %d)", top.Symbol, top.Type, top.Strength)
	}
	if n.cfg.DiscordWebhookURL != "" {
		if err := n.post(ctx, n.cfg.DiscordWebhookURL, map[string]any{"content": text}); err != nil && n.l != nil {
			n.l.Warn("discord summary failed", applogger.Error(err))
		}
	}
	if n.cfg.SlackWebhookURL != "" {
		if err := n.post(ctx, n.cfg.SlackWebhookURL, map[string]any{"text": text}); err != nil && n.l != nil {
			n.l.Warn("slack summary failed", applogger.Error(err))
		}
	}
}

func (n *Notifier) post(ctx context.Context, url string, payload any) error {
	return n.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodPost,
		URL:     url,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	}, nil)
}

func (n *Notifier) logFailure(dest string, sig models.Signal, err error) {
	if n.l == nil {
		return
	}
	n.l.Warn("webhook delivery failed",
		applogger.String("destination", dest),
		applogger.String("signal_id", sig.ID),
		applogger.Error(err),
	)
}

func signalColor(typ models.SignalType) int {
	switch typ {
	case models.SignalPut:
		return 0xFF4444
	case models.SignalCall:
		return 0x44FF44
	case models.SignalHedge:
		return 0xFFAA00
	case models.SignalVolatility:
		return 0x4444FF
	default:
		return 0x808080
	}
}

func discordPayload(sig models.Signal) map[string]any {
	fields := []map[string]any{
		{"name": "Signal Type", "value": string(sig.Type), "inline": true},
		{"name": "Strength", "value": fmt.Sprintf("%s (%d/5)", strings.Repeat("⭐", sig.Strength), sig.Strength), "inline": true},
		{"name": "Entry Price", "value": fmt.Sprintf("$%.2f", sig.EntryPrice), "inline": true},
		{"name": "Suggested Strike", "value": fmt.Sprintf("$%.2f", sig.StrikePrice), "inline": true},
	}
	if sig.Type.Directional() {
		fields = append(fields,
			map[string]any{"name": "Stop Loss", "value": fmt.Sprintf("$%.2f", sig.StopLoss), "inline": true},
			map[string]any{"name": "Target", "value": fmt.Sprintf("$%.2f", sig.TargetPrice), "inline": true},
		)
	}
	if sig.EntryWindow != "" {
		fields = append(fields, map[string]any{"name": "Entry Window", "value": sig.EntryWindow + " ET", "inline": true})
	}
	if sig.Rationale != "" {
		fields = append(fields, map[string]any{"name": "Rationale", "value": sig.Rationale, "inline": false})
	}
	return map[string]any{
		"embeds": []map[string]any{{
			"title":     fmt.Sprintf("%s - Trading Signal", sig.Symbol),
			"color":     signalColor(sig.Type),
			"fields":    fields,
			"footer":    map[string]any{"text": "Volatility Scanner | Not Financial Advice"},
			"timestamp": sig.CreatedAt.Format(time.RFC3339),
		}},
	}
}

func slackPayload(sig models.Signal) map[string]any {
	lines := []string{
		fmt.Sprintf("*%s* %s, strength %d/5", sig.Symbol, sig.Type, sig.Strength),
		fmt.Sprintf("Entry $%.2f, strike $%.2f", sig.EntryPrice, sig.StrikePrice),
	}
	if sig.Type.Directional() {
		lines = append(lines, fmt.Sprintf("Stop $%.2f, target $%.2f", sig.StopLoss, sig.TargetPrice))
	}
	if sig.EntryWindow != "" {
		lines = append(lines, "Entry window "+sig.EntryWindow+" ET")
	}
	if sig.Rationale != "" {
		lines = append(lines, sig.Rationale)
	}
	return map[string]any{
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{"type": "plain_text", "text": sig.Symbol + " - Trading Signal"},
			},
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": strings.Join(lines, "\n")},
			},
		},
	}
}
