package usecase

import (
	"context"
	"fmt"
	"time"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	applogger "VolScan/pkg/logger"
)

// TrackerConfig bounds outcome resolution.
type TrackerConfig struct {
	HoldingDays int
}

// TrackerUseCase owns the prediction lifecycle: it opens PENDING
// records for new signals, walks fresh bars to resolve them, and
// derives the performance summary from the terminal set.
type TrackerUseCase struct {
	cfg     TrackerConfig
	store   domrepo.TrackingStore
	bars    domrepo.BarStore
	metrics domrepo.Metrics
	l       *applogger.Logger
	now     func() time.Time
}

func NewTrackerUseCase(cfg TrackerConfig, store domrepo.TrackingStore, bars domrepo.BarStore, metrics domrepo.Metrics) *TrackerUseCase {
	if cfg.HoldingDays <= 0 {
		cfg.HoldingDays = 30
	}
	return &TrackerUseCase{cfg: cfg, store: store, bars: bars, metrics: metrics, now: time.Now}
}

// SetLogger injects a structured logger.
func (uc *TrackerUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// RecordSignals opens a PENDING record for each signal that does not
// already have one of the same type open on its symbol. The duplicate
// check makes repeated scans of a persisting setup idempotent.
func (uc *TrackerUseCase) RecordSignals(ctx context.Context, signals []models.Signal) error {
	var firstErr error
	for _, sig := range signals {
		dup, err := uc.store.HasPending(ctx, sig.Symbol, sig.Type)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("pending check %s: %w", sig.Symbol, err)
			}
			continue
		}
		if dup {
			if uc.l != nil {
				uc.l.Debug("duplicate signal suppressed",
					applogger.String("symbol", sig.Symbol),
					applogger.String("type", string(sig.Type)),
				)
			}
			continue
		}
		if err := uc.store.AppendSignal(ctx, sig); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("append signal %s: %w", sig.ID, err)
			}
		}
	}
	return firstErr
}

// ResolvePending walks every open prediction against the bars recorded
// since its creation and applies at most one terminal transition per
// record. Safe to call repeatedly; already-terminal records are left
// untouched by the store.
func (uc *TrackerUseCase) ResolvePending(ctx context.Context) (int, error) {
	pending, err := uc.store.Pending(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pending: %w", err)
	}

	resolved := 0
	for _, rec := range pending {
		bars, err := uc.bars.BarsSince(ctx, rec.Symbol, rec.CreatedAt)
		if err != nil {
			if uc.l != nil {
				uc.l.Warn("resolution bars unavailable",
					applogger.String("symbol", rec.Symbol),
					applogger.Error(err),
				)
			}
			continue
		}
		status, price, date, ok := uc.outcome(rec, bars)
		if !ok {
			continue
		}
		applied, err := uc.store.Resolve(ctx, rec.SignalID, status, price, date, rec.ReturnFor(price))
		if err != nil {
			if uc.l != nil {
				uc.l.Error("resolution write failed",
					applogger.String("signal_id", rec.SignalID),
					applogger.Error(err),
				)
			}
			continue
		}
		if !applied {
			continue
		}
		resolved++
		if uc.metrics != nil {
			uc.metrics.RecordResolution(string(rec.Type), string(status))
		}
		if uc.l != nil {
			uc.l.Info("prediction resolved",
				applogger.String("signal_id", rec.SignalID),
				applogger.String("symbol", rec.Symbol),
				applogger.String("status", string(status)),
				applogger.Float64("price", price),
			)
		}
	}
	return resolved, nil
}

// outcome walks bars in chronological order and returns the terminal
// transition for rec, if any. A bar that touches both levels counts as
// a stop: wins are never overstated on ambiguous bars.
func (uc *TrackerUseCase) outcome(rec models.PredictionRecord, bars []models.PriceBar) (models.PredictionStatus, float64, time.Time, bool) {
	deadline := rec.CreatedAt.AddDate(0, 0, uc.cfg.HoldingDays)

	var lastInside *models.PriceBar
	for i := range bars {
		bar := bars[i]
		if bar.Date.After(deadline) {
			break
		}
		if rec.Type.Directional() {
			targetHit, stopHit := crossings(rec, bar)
			if stopHit {
				return models.StatusStopHit, rec.StopLoss, bar.Date, true
			}
			if targetHit {
				return models.StatusTargetHit, rec.TargetPrice, bar.Date, true
			}
		}
		lastInside = &bars[i]
	}

	if uc.now().Before(deadline) {
		return "", 0, time.Time{}, false
	}
	if lastInside == nil {
		// Horizon elapsed with no bars at all: close out flat at entry.
		return models.StatusExpired, rec.EntryPrice, deadline, true
	}
	return models.StatusExpired, lastInside.Close, lastInside.Date, true
}

// crossings reports whether bar touched rec's target or stop level,
// direction-aware.
func crossings(rec models.PredictionRecord, bar models.PriceBar) (target, stop bool) {
	if rec.Type.Bearish() {
		return bar.Low <= rec.TargetPrice, bar.High >= rec.StopLoss
	}
	return bar.High >= rec.TargetPrice, bar.Low <= rec.StopLoss
}

// Signals lists stored signals, optionally filtered by type, strongest
// first.
func (uc *TrackerUseCase) Signals(ctx context.Context, typ models.SignalType, limit int) ([]models.Signal, error) {
	return uc.store.Signals(ctx, typ, limit)
}

// Predictions lists prediction records with optional status and symbol
// filters.
func (uc *TrackerUseCase) Predictions(ctx context.Context, status models.PredictionStatus, symbol string, limit int) ([]models.PredictionRecord, error) {
	return uc.store.Records(ctx, status, symbol, limit)
}

// Summary recomputes the performance view from stored records. Pure
// read; repeated calls over an unchanged store yield identical output.
func (uc *TrackerUseCase) Summary(ctx context.Context) (*models.PerformanceSummary, error) {
	records, err := uc.store.Records(ctx, "", "", 10000)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	type acc struct {
		summary     models.TypeSummary
		grossProfit float64
		grossLoss   float64
		totalReturn float64
	}
	byType := map[models.SignalType]*acc{}
	out := &models.PerformanceSummary{}

	for _, rec := range records {
		out.Total++
		if rec.Status == models.StatusPending {
			out.Pending++
			continue
		}
		a := byType[rec.Type]
		if a == nil {
			a = &acc{summary: models.TypeSummary{Type: rec.Type}}
			byType[rec.Type] = a
		}
		a.summary.Count++
		a.totalReturn += rec.ReturnPct
		switch rec.Status {
		case models.StatusExpired:
			a.summary.Expired++
		case models.StatusTargetHit:
			a.summary.Wins++
			a.grossProfit += rec.ReturnPct
		case models.StatusStopHit:
			a.summary.Losses++
			a.grossLoss += -rec.ReturnPct
		}
	}

	for _, typ := range []models.SignalType{models.SignalPut, models.SignalCall, models.SignalHedge, models.SignalVolatility} {
		a, ok := byType[typ]
		if !ok {
			continue
		}
		s := a.summary
		if decided := s.Wins + s.Losses; decided > 0 {
			s.WinRate = float64(s.Wins) / float64(decided) * 100
		}
		if s.Count > 0 {
			s.AvgReturn = a.totalReturn / float64(s.Count)
		}
		if a.grossLoss > 0 {
			s.ProfitFactor = a.grossProfit / a.grossLoss
		}
		out.ByType = append(out.ByType, s)
	}
	return out, nil
}
