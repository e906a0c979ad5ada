package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "VolScan/internal/domain/repository"
	"VolScan/internal/handler/api"
	"VolScan/internal/service/alerts"
	"VolScan/internal/usecase"
	"VolScan/pkg/config"
	xhttp "VolScan/pkg/http"
	applogger "VolScan/pkg/logger"
)

// loggable is implemented by components that accept an injected logger.
type loggable interface {
	SetLogger(l *applogger.Logger)
}

// App encapsulates the entire application lifecycle: the HTTP API, the
// periodic scan scheduler and graceful teardown of the stores.
type App struct {
	cfg           *config.Config
	scan          *usecase.ScanUseCase
	tracker       *usecase.TrackerUseCase
	notifier      *alerts.Notifier
	barStore      domrepo.BarStore
	trackingStore domrepo.TrackingStore
	publisher     domrepo.SignalPublisher
	market        domrepo.MarketData
	httpServer    *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	scan *usecase.ScanUseCase,
	tracker *usecase.TrackerUseCase,
	notifier *alerts.Notifier,
	barStore domrepo.BarStore,
	trackingStore domrepo.TrackingStore,
	publisher domrepo.SignalPublisher,
	market domrepo.MarketData,
) *App {
	return &App{
		cfg:           cfg,
		scan:          scan,
		tracker:       tracker,
		notifier:      notifier,
		barStore:      barStore,
		trackingStore: trackingStore,
		publisher:     publisher,
		market:        market,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := applogger.New(&applogger.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
		Output: a.cfg.Log.Output,
	})
	if err != nil {
		return err
	}

	for _, c := range []any{a.scan, a.tracker, a.notifier, a.barStore, a.trackingStore, a.market} {
		if lc, ok := c.(loggable); ok {
			lc.SetLogger(l)
		}
	}

	handler := api.NewScannerEchoHandler(l, a.scan, a.tracker)
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	go a.schedule(ctx, l)
	l.Info("scan scheduler started",
		applogger.Duration("interval", a.cfg.Scanner.Interval),
		applogger.Int("watchlist", len(a.cfg.Scanner.Watchlist)))

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	cancel()
	return a.shutdown(l)
}

// schedule runs one scan cycle immediately and then on every tick until
// the context is cancelled.
func (a *App) schedule(ctx context.Context, l *applogger.Logger) {
	a.cycle(ctx, l)

	ticker := time.NewTicker(a.cfg.Scanner.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.cycle(ctx, l)
		}
	}
}

// cycle is one scheduler pass: scan the watchlist, resolve pending
// predictions against fresh bars, then fire alerts.
func (a *App) cycle(ctx context.Context, l *applogger.Logger) {
	report, err := a.scan.Run(ctx)
	if err != nil {
		l.Error("scan cycle failed", applogger.Error(err))
		return
	}

	resolved, err := a.tracker.ResolvePending(ctx)
	if err != nil {
		l.Warn("outcome resolution incomplete", applogger.Error(err))
	}
	l.Info("scan cycle complete",
		applogger.Int("screened", len(report.Screened)),
		applogger.Int("signals", len(report.Signals)),
		applogger.Int("resolved", resolved))

	if a.notifier.Enabled() {
		a.notifier.NotifySignals(ctx, report.Signals)
		a.notifier.NotifyScanSummary(ctx, report)
	}
}

// shutdown gracefully stops the HTTP server and closes the stores.
func (a *App) shutdown(l *applogger.Logger) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if err := a.trackingStore.Close(); err != nil {
		l.Warn("tracking store close error", applogger.Error(err))
	}
	if err := a.barStore.Close(); err != nil {
		l.Warn("bar store close error", applogger.Error(err))
	}

	l.Info("shutdown complete")
	return nil
}
