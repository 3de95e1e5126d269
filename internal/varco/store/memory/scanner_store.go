package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/openvarco/varco/internal/varco/store"
)

type ScannerStore struct {
	mu   sync.RWMutex
	data map[string]store.ScannerRecord
}

func NewScannerStore() *ScannerStore {
	return &ScannerStore{data: make(map[string]store.ScannerRecord)}
}

func (s *ScannerStore) UpsertHeartbeat(_ context.Context, rec store.ScannerRecord, seenAt time.Time) error {
	if seenAt.IsZero() {
		seenAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.data[rec.ScannerID]
	if ok && rec.Zone == "" {
		rec.Zone = prev.Zone
	}
	rec.LastSeenAt = seenAt
	s.data[rec.ScannerID] = rec
	return nil
}

func (s *ScannerStore) ListScanners(_ context.Context) ([]store.ScannerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.ScannerRecord, 0, len(s.data))
	for _, rec := range s.data {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScannerID < out[j].ScannerID })
	return out, nil
}
