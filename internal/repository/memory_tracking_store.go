package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"VolScan/internal/domain/models"
)

// MemTrackingStore is an in-memory TrackingStore. Used in tests and as
// a degraded fallback when Postgres is not configured.
type MemTrackingStore struct {
	mu      sync.Mutex
	signals []models.Signal
	records map[string]models.PredictionRecord
}

func NewMemTrackingStore() *MemTrackingStore {
	return &MemTrackingStore{records: make(map[string]models.PredictionRecord)}
}

func (s *MemTrackingStore) Init(ctx context.Context) error { return nil }

func (s *MemTrackingStore) AppendSignal(ctx context.Context, sig models.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, sig)
	s.records[sig.ID] = models.PredictionRecord{
		SignalID:    sig.ID,
		Symbol:      sig.Symbol,
		Type:        sig.Type,
		Strength:    sig.Strength,
		EntryPrice:  sig.EntryPrice,
		StopLoss:    sig.StopLoss,
		TargetPrice: sig.TargetPrice,
		CreatedAt:   sig.CreatedAt,
		Status:      models.StatusPending,
	}
	return nil
}

func (s *MemTrackingStore) Signals(ctx context.Context, typ models.SignalType, limit int) ([]models.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	out := make([]models.Signal, 0, len(s.signals))
	for _, sig := range s.signals {
		if typ != "" && sig.Type != typ {
			continue
		}
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].Symbol < out[j].Symbol
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemTrackingStore) Pending(ctx context.Context) ([]models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PredictionRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Status == models.StatusPending {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemTrackingStore) Records(ctx context.Context, status models.PredictionStatus, symbol string, limit int) ([]models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	out := make([]models.PredictionRecord, 0, len(s.records))
	for _, rec := range s.records {
		if status != "" && rec.Status != status {
			continue
		}
		if symbol != "" && rec.Symbol != symbol {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemTrackingStore) Resolve(ctx context.Context, signalID string, status models.PredictionStatus, price float64, date time.Time, returnPct float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[signalID]
	if !ok || rec.Status != models.StatusPending {
		return false, nil
	}
	rec.Status = status
	rec.ResolutionPrice = price
	rec.ResolutionDate = date
	rec.ReturnPct = returnPct
	s.records[signalID] = rec
	return true, nil
}

func (s *MemTrackingStore) HasPending(ctx context.Context, symbol string, typ models.SignalType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.Symbol == symbol && rec.Type == typ && rec.Status == models.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemTrackingStore) Close() error { return nil }
