package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	domsvc "VolScan/internal/domain/service"
	applogger "VolScan/pkg/logger"
)

// ScanConfig bounds one pipeline run.
type ScanConfig struct {
	Watchlist    []string
	LookbackDays int
	Workers      int
	MaxSignals   int
}

// ScanUseCase runs the full pipeline: fetch bars, build indicator
// snapshots, screen, classify, assign entry windows, persist and
// publish. Per-symbol failures skip that symbol only; the run always
// completes for the remaining universe.
type ScanUseCase struct {
	cfg ScanConfig

	market   domrepo.MarketData
	bars     domrepo.BarStore
	builder  domsvc.SnapshotBuilder
	screener domsvc.Screener
	class    domsvc.Classifier
	timing   domsvc.TimingResolver
	tracker  *TrackerUseCase
	pub      domrepo.SignalPublisher
	metrics  domrepo.Metrics
	l        *applogger.Logger

	mu   sync.RWMutex
	last *models.ScanReport
}

// Last returns the most recent completed report, or nil before the
// first scan.
func (uc *ScanUseCase) Last() *models.ScanReport {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.last
}

func NewScanUseCase(
	cfg ScanConfig,
	market domrepo.MarketData,
	bars domrepo.BarStore,
	builder domsvc.SnapshotBuilder,
	screener domsvc.Screener,
	class domsvc.Classifier,
	timing domsvc.TimingResolver,
	tracker *TrackerUseCase,
	pub domrepo.SignalPublisher,
	metrics domrepo.Metrics,
) *ScanUseCase {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.LookbackDays < models.MinBars {
		cfg.LookbackDays = 150
	}
	if cfg.MaxSignals <= 0 {
		cfg.MaxSignals = 10
	}
	return &ScanUseCase{
		cfg:      cfg,
		market:   market,
		bars:     bars,
		builder:  builder,
		screener: screener,
		class:    class,
		timing:   timing,
		tracker:  tracker,
		pub:      pub,
		metrics:  metrics,
	}
}

// SetLogger injects a structured logger.
func (uc *ScanUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

type symbolResult struct {
	screen  models.ScreenResult
	signal  *models.Signal
	skipped string
}

// Run executes one scan over the configured watchlist.
func (uc *ScanUseCase) Run(ctx context.Context) (*models.ScanReport, error) {
	start := time.Now()
	report := &models.ScanReport{StartedAt: start.UTC()}

	jobs := make(chan string)
	results := make(chan symbolResult, len(uc.cfg.Watchlist))

	var wg sync.WaitGroup
	for w := 0; w < uc.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				results <- uc.scanSymbol(ctx, sym)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sym := range uc.cfg.Watchlist {
			select {
			case jobs <- sym:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() { wg.Wait(); close(results) }()

	screenBySym := make(map[string]models.ScreenResult)
	var signals []models.Signal
	for res := range results {
		if res.skipped != "" {
			if report.Skipped == nil {
				report.Skipped = map[string]string{}
			}
			report.Skipped[res.screen.Symbol] = res.skipped
			report.SymbolsSkipped++
			continue
		}
		report.SymbolsScanned++
		screenBySym[res.screen.Symbol] = res.screen
		if res.signal != nil {
			signals = append(signals, *res.signal)
		}
	}

	// Preserve the watchlist order for screen results.
	for _, sym := range uc.cfg.Watchlist {
		if sr, ok := screenBySym[sym]; ok {
			report.Screened = append(report.Screened, sr)
		}
	}

	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Strength != signals[j].Strength {
			return signals[i].Strength > signals[j].Strength
		}
		return signals[i].Symbol < signals[j].Symbol
	})
	if len(signals) > uc.cfg.MaxSignals {
		signals = signals[:uc.cfg.MaxSignals]
	}
	report.Signals = signals

	// Persistence is best-effort: a store outage must not cost the
	// caller the freshly generated signals.
	if uc.tracker != nil && len(signals) > 0 {
		if err := uc.tracker.RecordSignals(ctx, signals); err != nil {
			report.StoreError = err.Error()
			if uc.metrics != nil {
				uc.metrics.RecordError("persist")
			}
			if uc.l != nil {
				uc.l.Error("signal persistence failed", applogger.Error(err))
			}
		}
	}

	if uc.pub != nil {
		for _, sig := range signals {
			if err := uc.pub.Publish(ctx, sig); err != nil {
				if uc.metrics != nil {
					uc.metrics.RecordError("publish")
				}
				if uc.l != nil {
					uc.l.Error("signal publish failed",
						applogger.String("signal_id", sig.ID),
						applogger.Error(err),
					)
				}
			}
		}
	}

	report.Duration = time.Since(start)
	if uc.metrics != nil {
		uc.metrics.RecordScanDuration(report.Duration.Seconds())
	}
	uc.mu.Lock()
	uc.last = report
	uc.mu.Unlock()

	if uc.l != nil {
		uc.l.Info("scan complete",
			applogger.Int("scanned", report.SymbolsScanned),
			applogger.Int("skipped", report.SymbolsSkipped),
			applogger.Int("signals", len(report.Signals)),
			applogger.Duration("duration_ms", report.Duration),
		)
	}
	return report, nil
}

func (uc *ScanUseCase) scanSymbol(ctx context.Context, sym string) symbolResult {
	series, err := uc.market.DailyBars(ctx, sym, uc.cfg.LookbackDays)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordSymbolSkipped("fetch")
		}
		if uc.l != nil {
			uc.l.Warn("symbol fetch failed",
				applogger.String("symbol", sym),
				applogger.Error(err),
			)
		}
		return symbolResult{screen: models.ScreenResult{Symbol: sym}, skipped: err.Error()}
	}

	if uc.bars != nil && len(series.Bars) > 0 {
		if err := uc.bars.StoreBars(ctx, series.Bars); err != nil {
			if uc.metrics != nil {
				uc.metrics.RecordError("bar_store")
			}
			if uc.l != nil {
				uc.l.Warn("bar persistence failed",
					applogger.String("symbol", sym),
					applogger.Error(err),
				)
			}
		}
	}

	if !series.SortedByDate() {
		sort.Slice(series.Bars, func(i, j int) bool {
			return series.Bars[i].Date.Before(series.Bars[j].Date)
		})
	}

	var snapPtr *models.IndicatorSnapshot
	snap, ok := uc.builder.Build(series)
	if ok {
		snapPtr = &snap
	}

	if uc.metrics != nil {
		uc.metrics.RecordSymbolScanned(sym)
	}

	screen := uc.screener.Screen(sym, snapPtr)
	res := symbolResult{screen: screen}
	if !screen.Passed {
		return res
	}

	sig, ok := uc.class.Classify(*screen.Snapshot)
	if !ok {
		return res
	}
	sig.EntryWindow = uc.timing.Window(sig)
	if uc.metrics != nil {
		uc.metrics.RecordSignal(string(sig.Type), sig.Strength)
	}
	res.signal = &sig
	return res
}
