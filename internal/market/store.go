package market

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process CandleStore. Good enough for preheat
// history and paper sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]Candle
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]Candle)}
}

func storeKey(symbol, interval string) string {
	return fmt.Sprintf("%s|%s", symbol, interval)
}

func (s *MemoryStore) Get(ctx context.Context, symbol, interval string) ([]Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candles, ok := s.data[storeKey(symbol, interval)]
	if !ok {
		return nil, nil
	}
	out := make([]Candle, len(candles))
	copy(out, candles)
	return out, nil
}

// Put appends candles and trims to the newest max bars when max > 0.
func (s *MemoryStore) Put(ctx context.Context, symbol, interval string, candles []Candle, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(symbol, interval)
	merged := append(s.data[key], candles...)
	if max > 0 && len(merged) > max {
		merged = merged[len(merged)-max:]
	}
	s.data[key] = merged
	return nil
}
