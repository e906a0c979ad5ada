package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"VolScan/internal/domain/models"
	"VolScan/pkg/util"
)

// MemBarStore is an in-memory BarStore used when ClickHouse is
// disabled. Replaces duplicates on (symbol, day) like the table would.
type MemBarStore struct {
	mu   sync.RWMutex
	bars map[string]map[time.Time]models.PriceBar
}

// NewMemBarStore returns an empty in-memory bar store.
func NewMemBarStore() *MemBarStore {
	return &MemBarStore{bars: make(map[string]map[time.Time]models.PriceBar)}
}

func (s *MemBarStore) Init(_ context.Context) error { return nil }

func (s *MemBarStore) StoreBars(_ context.Context, bars []models.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bars {
		day := util.Day(b.Date)
		if s.bars[b.Symbol] == nil {
			s.bars[b.Symbol] = make(map[time.Time]models.PriceBar)
		}
		s.bars[b.Symbol][day] = b
	}
	return nil
}

func (s *MemBarStore) BarsSince(_ context.Context, symbol string, after time.Time) ([]models.PriceBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PriceBar
	for _, b := range s.bars[symbol] {
		if b.Date.After(after) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemBarStore) Health(_ context.Context) error { return nil }

func (s *MemBarStore) Close() error { return nil }
