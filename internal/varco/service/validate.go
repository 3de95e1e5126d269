package service

import (
	"context"
	"errors"

	"github.com/openvarco/varco/internal/varco/store"
)

// Outcome is the answer to "is this code currently usable at this zone?".
type Outcome int

const (
	// OutcomeNotFound: the record, or its row for this zone, does not exist.
	OutcomeNotFound Outcome = iota
	// OutcomeInactive: the zone row exists but the flag is off.
	OutcomeInactive
	// OutcomeValid: the zone row exists and the flag is on.
	OutcomeValid
)

// ValidationService answers zone-scanner queries. It is a pure read path:
// safe to call concurrently and arbitrarily often, and it deliberately does
// NOT inspect the record's date range — expiry is enforced solely by the
// reaper deleting the record, after which lookups return OutcomeNotFound.
type ValidationService struct {
	records store.AccessRecordStore
}

func NewValidationService(records store.AccessRecordStore) *ValidationService {
	return &ValidationService{records: records}
}

// Validate normalizes the code (trim, upper-case) and reads the zone's
// activation flag. A non-nil error means the backing store failed; the
// caller maps that to the protocol's "error" outcome.
func (s *ValidationService) Validate(ctx context.Context, code, zone string) (Outcome, error) {
	code = normalizeCode(code)
	if code == "" {
		return OutcomeNotFound, nil
	}

	active, err := s.records.GetZoneActive(ctx, code, zone)
	if errors.Is(err, store.ErrNotFound) {
		return OutcomeNotFound, nil
	}
	if err != nil {
		return OutcomeNotFound, err
	}
	if active {
		return OutcomeValid, nil
	}
	return OutcomeInactive, nil
}
