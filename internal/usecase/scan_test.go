package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	"VolScan/internal/repository"
	"VolScan/internal/services/screener"
	"VolScan/internal/services/timing"
)

type fakeMarket struct {
	series map[string]models.PriceSeries
	errs   map[string]error
}

func (f *fakeMarket) DailyBars(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	if err := f.errs[symbol]; err != nil {
		return models.PriceSeries{}, err
	}
	return f.series[symbol], nil
}

// fakeBuilder emits a fixed healthy snapshot for any series long enough.
type fakeBuilder struct{}

func (fakeBuilder) Build(series models.PriceSeries) (models.IndicatorSnapshot, bool) {
	if series.Len() < models.MinBars {
		return models.IndicatorSnapshot{}, false
	}
	last, _ := series.Last()
	return models.IndicatorSnapshot{
		Symbol:        series.Symbol,
		Date:          last.Date,
		Close:         last.Close,
		Volume:        last.Volume,
		ATRPercentile: 80,
	}, true
}

// fakeClassifier emits a PUT of per-symbol strength, or nothing for
// symbols missing from the map.
type fakeClassifier struct {
	strengths map[string]int
}

func (f *fakeClassifier) Classify(snap models.IndicatorSnapshot) (models.Signal, bool) {
	strength, ok := f.strengths[snap.Symbol]
	if !ok {
		return models.Signal{}, false
	}
	return models.Signal{
		ID:         "sig-" + snap.Symbol,
		Symbol:     snap.Symbol,
		Type:       models.SignalPut,
		Strength:   strength,
		EntryPrice: snap.Close,
		CreatedAt:  time.Now().UTC(),
	}, true
}

type fakePublisher struct {
	published []models.Signal
}

func (f *fakePublisher) Publish(ctx context.Context, sig models.Signal) error {
	f.published = append(f.published, sig)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type failingTrackingStore struct {
	*repository.MemTrackingStore
}

func (failingTrackingStore) AppendSignal(ctx context.Context, sig models.Signal) error {
	return fmt.Errorf("store down")
}

func scanSeries(symbol string, n int) models.PriceSeries {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, models.PriceBar{
			Symbol: symbol,
			Date:   day.AddDate(0, 0, i),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100,
			Volume: 1_000_000,
		})
	}
	return models.PriceSeries{Symbol: symbol, Bars: bars}
}

func newScanFixture(watchlist []string, market *fakeMarket, strengths map[string]int, tracker *TrackerUseCase, pub *fakePublisher) *ScanUseCase {
	// Avoid wrapping a typed nil in the SignalPublisher interface; the
	// use case nil-checks the interface value.
	var sigPub domrepo.SignalPublisher
	if pub != nil {
		sigPub = pub
	}
	return NewScanUseCase(
		ScanConfig{Watchlist: watchlist, LookbackDays: 30, Workers: 4, MaxSignals: 3},
		market,
		newFakeBarStore(),
		fakeBuilder{},
		screener.New(50),
		&fakeClassifier{strengths: strengths},
		timing.New(),
		tracker,
		sigPub,
		nil,
	)
}

func TestRunOrdersAndCapsSignals(t *testing.T) {
	watchlist := []string{"AAPL", "MSFT", "NVDA", "AMD"}
	market := &fakeMarket{series: map[string]models.PriceSeries{}}
	for _, sym := range watchlist {
		market.series[sym] = scanSeries(sym, 30)
	}
	strengths := map[string]int{"AAPL": 3, "MSFT": 5, "NVDA": 5, "AMD": 4}

	store := repository.NewMemTrackingStore()
	tracker := newTracker(store, newFakeBarStore())
	uc := newScanFixture(watchlist, market, strengths, tracker, &fakePublisher{})

	report, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.SymbolsScanned != 4 {
		t.Fatalf("scanned = %d, want 4", report.SymbolsScanned)
	}
	if len(report.Signals) != 3 {
		t.Fatalf("signals = %d, want capped at 3", len(report.Signals))
	}
	want := []string{"MSFT", "NVDA", "AMD"}
	for i, sym := range want {
		if report.Signals[i].Symbol != sym {
			t.Fatalf("signal %d = %s, want %s (strength desc, symbol asc)", i, report.Signals[i].Symbol, sym)
		}
	}
	if top := report.Top(); top == nil || top.Symbol != "MSFT" {
		t.Fatalf("top = %+v", top)
	}
	for i, sym := range watchlist {
		if report.Screened[i].Symbol != sym {
			t.Fatalf("screen order broken at %d: %s", i, report.Screened[i].Symbol)
		}
	}
	if report.Signals[0].EntryWindow == "" {
		t.Fatal("emitted signal missing entry window")
	}
}

func TestRunSkipsFailedSymbols(t *testing.T) {
	watchlist := []string{"AAPL", "MSFT"}
	market := &fakeMarket{
		series: map[string]models.PriceSeries{"AAPL": scanSeries("AAPL", 30)},
		errs:   map[string]error{"MSFT": domrepo.ErrNoData},
	}

	uc := newScanFixture(watchlist, market, map[string]int{"AAPL": 4}, nil, nil)
	report, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.SymbolsScanned != 1 || report.SymbolsSkipped != 1 {
		t.Fatalf("scanned/skipped = %d/%d, want 1/1", report.SymbolsScanned, report.SymbolsSkipped)
	}
	if _, ok := report.Skipped["MSFT"]; !ok {
		t.Fatal("skip reason for MSFT missing")
	}
	if len(report.Signals) != 1 {
		t.Fatalf("signals = %d, want 1 from surviving symbol", len(report.Signals))
	}
}

func TestRunSurvivesPersistenceFailure(t *testing.T) {
	watchlist := []string{"AAPL"}
	market := &fakeMarket{series: map[string]models.PriceSeries{"AAPL": scanSeries("AAPL", 30)}}

	failing := failingTrackingStore{repository.NewMemTrackingStore()}
	tracker := NewTrackerUseCase(TrackerConfig{}, failing, newFakeBarStore(), nil)
	uc := newScanFixture(watchlist, market, map[string]int{"AAPL": 4}, tracker, &fakePublisher{})

	report, err := uc.Run(context.Background())
	if err != nil {
		t.Fatalf("run must not fail on store outage: %v", err)
	}
	if len(report.Signals) != 1 {
		t.Fatal("signals must still be returned when persistence fails")
	}
	if report.StoreError == "" {
		t.Fatal("store failure must be surfaced on the report")
	}
}

func TestRunPublishesSignals(t *testing.T) {
	watchlist := []string{"AAPL", "MSFT"}
	market := &fakeMarket{series: map[string]models.PriceSeries{
		"AAPL": scanSeries("AAPL", 30),
		"MSFT": scanSeries("MSFT", 30),
	}}
	pub := &fakePublisher{}
	uc := newScanFixture(watchlist, market, map[string]int{"AAPL": 4, "MSFT": 2}, nil, pub)

	if _, err := uc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pub.published) != 2 {
		t.Fatalf("published = %d, want 2", len(pub.published))
	}
}
