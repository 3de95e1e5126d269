package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openvarco/varco/internal/varco/store"
	"github.com/openvarco/varco/internal/varco/types"
)

const (
	dateLayout   = "2006-01-02"
	maxNameChars = 30
)

var (
	ErrMissingFields = errors.New("name and surname are required")
	ErrFieldTooLong  = errors.New("name and surname must be at most 30 characters")
	ErrBadDateFormat = errors.New("dates must be in YYYY-MM-DD format")
	ErrDateRange     = errors.New("date_in cannot be after date_out")
	ErrUnknownZone   = errors.New("unknown zone")
)

// AccessService owns the lifecycle of access records: creation with
// duplicate rejection and code generation, the management views, per-zone
// flag mutation and explicit deletion.
type AccessService struct {
	records store.AccessRecordStore
	gen     *CodeGenerator
	zones   []string
}

func NewAccessService(records store.AccessRecordStore, gen *CodeGenerator, zones []string) *AccessService {
	return &AccessService{records: records, gen: gen, zones: zones}
}

// Zones returns the statically known zone identifiers.
func (s *AccessService) Zones() []string { return s.zones }

// CreateCode validates the request, rejects duplicate submissions, draws a
// fresh code and stores the record with one active row per known zone.
// A concurrent writer stealing the generated code surfaces as
// store.ErrCodeConflict, which is retried here with a new code.
func (s *AccessService) CreateCode(ctx context.Context, req types.CreateCodeRequest) (store.AccessRecord, error) {
	name := strings.TrimSpace(req.Name)
	surname := strings.TrimSpace(req.Surname)
	dateIn := strings.TrimSpace(req.DateIn)
	dateOut := strings.TrimSpace(req.DateOut)

	if name == "" || surname == "" {
		return store.AccessRecord{}, ErrMissingFields
	}
	if utf8.RuneCountInString(name) > maxNameChars || utf8.RuneCountInString(surname) > maxNameChars {
		return store.AccessRecord{}, ErrFieldTooLong
	}

	in, err := time.Parse(dateLayout, dateIn)
	if err != nil {
		return store.AccessRecord{}, ErrBadDateFormat
	}
	out, err := time.Parse(dateLayout, dateOut)
	if err != nil {
		return store.AccessRecord{}, ErrBadDateFormat
	}
	if in.After(out) {
		return store.AccessRecord{}, ErrDateRange
	}

	// Pre-check for an identical submission. This is check-then-act; the
	// store's unique constraint on the holder/date tuple catches the race.
	dup, err := s.records.FindDuplicate(ctx, name, surname, dateIn, dateOut)
	if err != nil {
		return store.AccessRecord{}, err
	}
	if dup != nil {
		return store.AccessRecord{}, store.ErrDuplicateIntent
	}

	for {
		code, err := s.gen.Generate(ctx)
		if err != nil {
			return store.AccessRecord{}, err
		}

		rec := store.AccessRecord{
			Code:      code,
			Name:      name,
			Surname:   surname,
			DateIn:    dateIn,
			DateOut:   dateOut,
			CreatedAt: time.Now().UTC(),
		}

		err = s.records.Create(ctx, rec, s.zones)
		if errors.Is(err, store.ErrCodeConflict) {
			// Lost the code to a concurrent writer; draw again.
			continue
		}
		if err != nil {
			return store.AccessRecord{}, err
		}
		return rec, nil
	}
}

// List returns all live records with their zone states, newest first.
func (s *AccessService) List(ctx context.Context) ([]store.RecordWithZones, error) {
	return s.records.ListAll(ctx)
}

// SetZoneActive writes one zone flag for a code.
func (s *AccessService) SetZoneActive(ctx context.Context, code, zone string, active bool) error {
	code = normalizeCode(code)
	if !s.knownZone(zone) {
		return ErrUnknownZone
	}
	return s.records.SetZoneActive(ctx, code, zone, active)
}

// ToggleZoneActive flips one zone flag and returns the new value.
func (s *AccessService) ToggleZoneActive(ctx context.Context, code, zone string) (bool, error) {
	code = normalizeCode(code)
	if !s.knownZone(zone) {
		return false, ErrUnknownZone
	}
	return s.records.ToggleZoneActive(ctx, code, zone)
}

// Delete removes a record and, cascading, all its zone rows.
func (s *AccessService) Delete(ctx context.Context, code string) error {
	return s.records.Delete(ctx, normalizeCode(code))
}

func (s *AccessService) knownZone(zone string) bool {
	for _, z := range s.zones {
		if z == zone {
			return true
		}
	}
	return false
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
