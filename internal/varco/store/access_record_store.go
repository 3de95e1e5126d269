package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound: no live record (or zone row) matches the given key.
	ErrNotFound = errors.New("not found")

	// ErrCodeConflict: another writer inserted the same code between the
	// generator's existence check and this Create. The generator retries.
	ErrCodeConflict = errors.New("code already exists")

	// ErrDuplicateIntent: a record with identical holder and date range
	// already exists, independent of code.
	ErrDuplicateIntent = errors.New("identical record already exists")
)

// AccessRecord binds a code to a holder and a validity date range.
// Dates are plain calendar dates in YYYY-MM-DD form; ISO dates compare
// lexicographically, which the stores rely on.
type AccessRecord struct {
	Code      string
	Name      string
	Surname   string
	DateIn    string
	DateOut   string
	CreatedAt time.Time
}

// RecordWithZones is an access record joined with the activation flag of
// every zone that has a row for it.
type RecordWithZones struct {
	Record AccessRecord
	Zones  map[string]bool
}

// AccessRecordStore is the durable home of access records and their
// per-zone activation flags.
type AccessRecordStore interface {
	// CodeExists reports whether a live record holds the given code.
	CodeExists(ctx context.Context, code string) (bool, error)

	// FindDuplicate returns the live record with identical holder and
	// date range, or nil if none exists.
	FindDuplicate(ctx context.Context, name, surname, dateIn, dateOut string) (*AccessRecord, error)

	// Create inserts the record plus one active zone row per zone, all in
	// a single transaction. Returns ErrCodeConflict or ErrDuplicateIntent
	// when the corresponding uniqueness constraint fires; on any failure
	// no partial state is left visible.
	Create(ctx context.Context, rec AccessRecord, zones []string) error

	// ListAll returns every live record with its zone states, most
	// recently created first.
	ListAll(ctx context.Context) ([]RecordWithZones, error)

	// SetZoneActive writes one zone flag. ErrNotFound if the (code, zone)
	// row does not exist.
	SetZoneActive(ctx context.Context, code, zone string, active bool) error

	// ToggleZoneActive negates one zone flag as a single atomic
	// read-modify-write at the storage layer and returns the new value.
	// ErrNotFound if the (code, zone) row does not exist.
	ToggleZoneActive(ctx context.Context, code, zone string) (bool, error)

	// GetZoneActive reads one zone flag. ErrNotFound if the (code, zone)
	// row does not exist.
	GetZoneActive(ctx context.Context, code, zone string) (bool, error)

	// Delete removes the record and all its zone rows.
	Delete(ctx context.Context, code string) error

	// DeleteExpiredBefore removes every record whose date_out is strictly
	// before cutoff (a calendar date), cascading to zone rows. Returns the
	// number of records removed.
	DeleteExpiredBefore(ctx context.Context, cutoff string) (int64, error)
}
