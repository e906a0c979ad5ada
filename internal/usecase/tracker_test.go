package usecase

import (
	"context"
	"testing"
	"time"

	"VolScan/internal/domain/models"
	"VolScan/internal/repository"
)

type fakeBarStore struct {
	bars map[string][]models.PriceBar
}

func newFakeBarStore() *fakeBarStore {
	return &fakeBarStore{bars: map[string][]models.PriceBar{}}
}

func (f *fakeBarStore) Init(ctx context.Context) error { return nil }

func (f *fakeBarStore) StoreBars(ctx context.Context, bars []models.PriceBar) error {
	for _, b := range bars {
		f.bars[b.Symbol] = append(f.bars[b.Symbol], b)
	}
	return nil
}

func (f *fakeBarStore) BarsSince(ctx context.Context, symbol string, after time.Time) ([]models.PriceBar, error) {
	var out []models.PriceBar
	for _, b := range f.bars[symbol] {
		if b.Date.After(after) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBarStore) Health(ctx context.Context) error { return nil }
func (f *fakeBarStore) Close() error                     { return nil }

var trackerEpoch = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func putSignal(id, symbol string) models.Signal {
	return models.Signal{
		ID:          id,
		Symbol:      symbol,
		Type:        models.SignalPut,
		Strength:    4,
		EntryPrice:  56.00,
		StopLoss:    58.00,
		TargetPrice: 54.00,
		CreatedAt:   trackerEpoch,
	}
}

func newTracker(store *repository.MemTrackingStore, bars *fakeBarStore) *TrackerUseCase {
	uc := NewTrackerUseCase(TrackerConfig{HoldingDays: 30}, store, bars, nil)
	uc.now = func() time.Time { return trackerEpoch.AddDate(0, 0, 5) }
	return uc
}

func bar(symbol string, day int, low, high, close float64) models.PriceBar {
	return models.PriceBar{
		Symbol: symbol,
		Date:   trackerEpoch.AddDate(0, 0, day),
		Open:   close,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1_000_000,
	}
}

func TestResolveTargetHit(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemTrackingStore()
	bars := newFakeBarStore()
	uc := newTracker(store, bars)

	if err := uc.RecordSignals(ctx, []models.Signal{putSignal("sig-1", "AAPL")}); err != nil {
		t.Fatalf("record: %v", err)
	}
	bars.bars["AAPL"] = []models.PriceBar{
		bar("AAPL", 1, 55.00, 57.00, 55.50),
		bar("AAPL", 2, 53.80, 56.00, 54.20),
	}

	n, err := uc.ResolvePending(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n != 1 {
		t.Fatalf("resolved %d, want 1", n)
	}

	recs, _ := store.Records(ctx, models.StatusTargetHit, "AAPL", 10)
	if len(recs) != 1 {
		t.Fatalf("got %d TARGET_HIT records", len(recs))
	}
	rec := recs[0]
	if rec.ResolutionPrice != 54.00 {
		t.Fatalf("resolution price = %v, want target 54", rec.ResolutionPrice)
	}
	if rec.ReturnPct <= 0 {
		t.Fatalf("put target hit must have positive return, got %v", rec.ReturnPct)
	}
}

func TestResolveSameBarDoubleTouchIsStop(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemTrackingStore()
	bars := newFakeBarStore()
	uc := newTracker(store, bars)

	if err := uc.RecordSignals(ctx, []models.Signal{putSignal("sig-1", "AAPL")}); err != nil {
		t.Fatalf("record: %v", err)
	}
	// One bar sweeps through both levels: low 53 under the 54 target,
	// high 59 over the 58 stop.
	bars.bars["AAPL"] = []models.PriceBar{bar("AAPL", 1, 53.00, 59.00, 56.00)}

	if _, err := uc.ResolvePending(ctx); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	recs, _ := store.Records(ctx, models.StatusStopHit, "AAPL", 10)
	if len(recs) != 1 {
		t.Fatal("double-touch bar must resolve as STOP_HIT")
	}
	if recs[0].ReturnPct >= 0 {
		t.Fatalf("stop hit return = %v, want negative", recs[0].ReturnPct)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemTrackingStore()
	bars := newFakeBarStore()
	uc := newTracker(store, bars)

	if err := uc.RecordSignals(ctx, []models.Signal{putSignal("sig-1", "AAPL")}); err != nil {
		t.Fatalf("record: %v", err)
	}
	bars.bars["AAPL"] = []models.PriceBar{bar("AAPL", 1, 53.50, 56.50, 54.00)}

	if n, _ := uc.ResolvePending(ctx); n != 1 {
		t.Fatalf("first pass resolved %d, want 1", n)
	}
	if n, _ := uc.ResolvePending(ctx); n != 0 {
		t.Fatalf("second pass resolved %d, want 0", n)
	}
}

func TestResolveExpiryUsesLastClose(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemTrackingStore()
	bars := newFakeBarStore()
	uc := NewTrackerUseCase(TrackerConfig{HoldingDays: 10}, store, bars, nil)
	uc.now = func() time.Time { return trackerEpoch.AddDate(0, 0, 11) }

	if err := uc.RecordSignals(ctx, []models.Signal{putSignal("sig-1", "AAPL")}); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Drifts inside the stop/target channel for the whole horizon.
	bars.bars["AAPL"] = []models.PriceBar{
		bar("AAPL", 2, 55.00, 57.00, 55.40),
		bar("AAPL", 8, 54.50, 56.20, 55.10),
	}

	if n, _ := uc.ResolvePending(ctx); n != 1 {
		t.Fatal("expected expiry resolution")
	}
	recs, _ := store.Records(ctx, models.StatusExpired, "AAPL", 10)
	if len(recs) != 1 {
		t.Fatal("expected one EXPIRED record")
	}
	if recs[0].ResolutionPrice != 55.10 {
		t.Fatalf("resolution price = %v, want last close 55.10", recs[0].ResolutionPrice)
	}
}

func TestResolveHorizonNotElapsedStaysPending(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemTrackingStore()
	bars := newFakeBarStore()
	uc := newTracker(store, bars)

	if err := uc.RecordSignals(ctx, []models.Signal{putSignal("sig-1", "AAPL")}); err != nil {
		t.Fatalf("record: %v", err)
	}
	bars.bars["AAPL"] = []models.PriceBar{bar("AAPL", 1, 55.00, 57.00, 55.50)}

	if n, _ := uc.ResolvePending(ctx); n != 0 {
		t.Fatal("record inside horizon with no crossing must stay PENDING")
	}
	pending, _ := store.Pending(ctx)
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
}

func TestRecordSignalsSuppressesDuplicates(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemTrackingStore()
	uc := newTracker(store, newFakeBarStore())

	if err := uc.RecordSignals(ctx, []models.Signal{putSignal("sig-1", "AAPL")}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := uc.RecordSignals(ctx, []models.Signal{putSignal("sig-2", "AAPL")}); err != nil {
		t.Fatalf("record duplicate: %v", err)
	}

	pending, _ := store.Pending(ctx)
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want duplicate suppressed to 1", len(pending))
	}
}

func TestSummaryGroupsByType(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemTrackingStore()
	bars := newFakeBarStore()
	uc := newTracker(store, bars)

	signals := []models.Signal{
		putSignal("sig-1", "AAPL"),
		putSignal("sig-2", "MSFT"),
		putSignal("sig-3", "NVDA"),
	}
	if err := uc.RecordSignals(ctx, signals); err != nil {
		t.Fatalf("record: %v", err)
	}
	bars.bars["AAPL"] = []models.PriceBar{bar("AAPL", 1, 53.50, 56.50, 54.00)} // target
	bars.bars["MSFT"] = []models.PriceBar{bar("MSFT", 1, 55.50, 58.50, 58.00)} // stop
	if _, err := uc.ResolvePending(ctx); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	sum, err := uc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 3 || sum.Pending != 1 {
		t.Fatalf("total/pending = %d/%d, want 3/1", sum.Total, sum.Pending)
	}
	if len(sum.ByType) != 1 {
		t.Fatalf("by_type groups = %d, want 1", len(sum.ByType))
	}
	ts := sum.ByType[0]
	if ts.Type != models.SignalPut || ts.Wins != 1 || ts.Losses != 1 {
		t.Fatalf("unexpected type summary: %+v", ts)
	}
	if ts.WinRate != 50 {
		t.Fatalf("win rate = %v, want 50", ts.WinRate)
	}
	if ts.ProfitFactor <= 0 {
		t.Fatalf("profit factor = %v, want > 0", ts.ProfitFactor)
	}
}
