package memory

import (
	"context"
	"sync"
	"time"

	"github.com/openvarco/varco/internal/varco/store"
)

type entry struct {
	rec   store.AccessRecord
	zones map[string]bool
}

// AccessRecordStore keeps records in insertion order behind a mutex. It
// enforces the same uniqueness rules as the SQLite store and is intended
// for tests and dev environments.
type AccessRecordStore struct {
	mu      sync.Mutex
	entries []*entry
}

func NewAccessRecordStore() *AccessRecordStore {
	return &AccessRecordStore{}
}

func (s *AccessRecordStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(code) != nil, nil
}

func (s *AccessRecordStore) FindDuplicate(_ context.Context, name, surname, dateIn, dateOut string) (*store.AccessRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.rec.Name == name && e.rec.Surname == surname &&
			e.rec.DateIn == dateIn && e.rec.DateOut == dateOut {
			rec := e.rec
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *AccessRecordStore) Create(_ context.Context, rec store.AccessRecord, zones []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(rec.Code) != nil {
		return store.ErrCodeConflict
	}
	for _, e := range s.entries {
		if e.rec.Name == rec.Name && e.rec.Surname == rec.Surname &&
			e.rec.DateIn == rec.DateIn && e.rec.DateOut == rec.DateOut {
			return store.ErrDuplicateIntent
		}
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	zm := make(map[string]bool, len(zones))
	for _, z := range zones {
		zm[z] = true
	}
	s.entries = append(s.entries, &entry{rec: rec, zones: zm})
	return nil
}

func (s *AccessRecordStore) ListAll(_ context.Context) ([]store.RecordWithZones, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]store.RecordWithZones, 0, len(s.entries))
	// Newest first.
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		zones := make(map[string]bool, len(e.zones))
		for z, a := range e.zones {
			zones[z] = a
		}
		out = append(out, store.RecordWithZones{Record: e.rec, Zones: zones})
	}
	return out, nil
}

func (s *AccessRecordStore) SetZoneActive(_ context.Context, code, zone string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(code)
	if e == nil {
		return store.ErrNotFound
	}
	if _, ok := e.zones[zone]; !ok {
		return store.ErrNotFound
	}
	e.zones[zone] = active
	return nil
}

func (s *AccessRecordStore) ToggleZoneActive(_ context.Context, code, zone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(code)
	if e == nil {
		return false, store.ErrNotFound
	}
	cur, ok := e.zones[zone]
	if !ok {
		return false, store.ErrNotFound
	}
	e.zones[zone] = !cur
	return !cur, nil
}

func (s *AccessRecordStore) GetZoneActive(_ context.Context, code, zone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(code)
	if e == nil {
		return false, store.ErrNotFound
	}
	active, ok := e.zones[zone]
	if !ok {
		return false, store.ErrNotFound
	}
	return active, nil
}

func (s *AccessRecordStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.rec.Code == code {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *AccessRecordStore) DeleteExpiredBefore(_ context.Context, cutoff string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.rec.DateOut < cutoff {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// find must be called with the mutex held.
func (s *AccessRecordStore) find(code string) *entry {
	for _, e := range s.entries {
		if e.rec.Code == code {
			return e
		}
	}
	return nil
}
