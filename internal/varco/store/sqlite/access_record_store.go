package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/openvarco/varco/internal/db"
	"github.com/openvarco/varco/internal/varco/store"
)

type AccessRecordStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessRecordStore(db *sql.DB, writer *dbpkg.Worker) *AccessRecordStore {
	return &AccessRecordStore{db: db, writer: writer}
}

func (s *AccessRecordStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM access_records WHERE code = ?;
`, code).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("CodeExists query: %w", err)
	}
	return true, nil
}

func (s *AccessRecordStore) FindDuplicate(ctx context.Context, name, surname, dateIn, dateOut string) (*store.AccessRecord, error) {
	var rec store.AccessRecord
	var createdMs int64
	err := s.db.QueryRowContext(ctx, `
SELECT code, name, surname, date_in, date_out, created_at_ms
FROM access_records
WHERE name = ? AND surname = ? AND date_in = ? AND date_out = ?;
`, name, surname, dateIn, dateOut).Scan(
		&rec.Code, &rec.Name, &rec.Surname, &rec.DateIn, &rec.DateOut, &createdMs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindDuplicate query: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &rec, nil
}

// Create inserts the access record and one active zone row per known zone
// inside a single transaction, so readers never observe a record without
// its zone rows (or the reverse).
func (s *AccessRecordStore) Create(ctx context.Context, rec store.AccessRecord, zones []string) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	createdMs := rec.CreatedAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO access_records(code, name, surname, date_in, date_out, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?);
`, rec.Code, rec.Name, rec.Surname, rec.DateIn, rec.DateOut, createdMs); err != nil {
			return classifyInsertErr(err)
		}

		for _, zone := range zones {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO zone_codes(code, zone, active) VALUES (?, ?, 1);
`, rec.Code, zone); err != nil {
				return fmt.Errorf("Create insert zone %s: %w", zone, err)
			}
		}

		return nil
	})
}

// classifyInsertErr maps SQLite unique-constraint violations on
// access_records to the store's typed errors. The constraint name appears
// in the driver's error text (modernc.org/sqlite exposes no structured
// constraint info through database/sql).
func classifyInsertErr(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		if strings.Contains(msg, "access_records.code") {
			return store.ErrCodeConflict
		}
		return store.ErrDuplicateIntent
	}
	return fmt.Errorf("Create insert record: %w", err)
}

func (s *AccessRecordStore) ListAll(ctx context.Context) ([]store.RecordWithZones, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT a.code, a.name, a.surname, a.date_in, a.date_out, a.created_at_ms,
       z.zone, z.active
FROM access_records a
LEFT JOIN zone_codes z ON z.code = a.code
ORDER BY a.id DESC, z.zone ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("ListAll query: %w", err)
	}
	defer rows.Close()

	var out []store.RecordWithZones
	byCode := make(map[string]int)

	for rows.Next() {
		var rec store.AccessRecord
		var createdMs int64
		var zone sql.NullString
		var active sql.NullInt64

		if err := rows.Scan(
			&rec.Code, &rec.Name, &rec.Surname, &rec.DateIn, &rec.DateOut,
			&createdMs, &zone, &active,
		); err != nil {
			return nil, fmt.Errorf("ListAll scan: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdMs).UTC()

		idx, seen := byCode[rec.Code]
		if !seen {
			idx = len(out)
			byCode[rec.Code] = idx
			out = append(out, store.RecordWithZones{
				Record: rec,
				Zones:  make(map[string]bool),
			})
		}
		if zone.Valid {
			out[idx].Zones[zone.String] = active.Int64 != 0
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAll rows: %w", err)
	}
	return out, nil
}

func (s *AccessRecordStore) SetZoneActive(ctx context.Context, code, zone string, active bool) error {
	val := 0
	if active {
		val = 1
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE zone_codes SET active = ? WHERE code = ? AND zone = ?;
`, val, code, zone)
		if err != nil {
			return fmt.Errorf("SetZoneActive: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// ToggleZoneActive negates the flag in a single UPDATE so concurrent
// toggles of the same row can never lose an update.
func (s *AccessRecordStore) ToggleZoneActive(ctx context.Context, code, zone string) (bool, error) {
	var active int
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
UPDATE zone_codes SET active = NOT active WHERE code = ? AND zone = ?
RETURNING active;
`, code, zone).Scan(&active)
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("ToggleZoneActive: %w", err)
		}
		return nil
	})
	return active != 0, err
}

func (s *AccessRecordStore) GetZoneActive(ctx context.Context, code, zone string) (bool, error) {
	var active int
	err := s.db.QueryRowContext(ctx, `
SELECT active FROM zone_codes WHERE code = ? AND zone = ?;
`, code, zone).Scan(&active)
	if err == sql.ErrNoRows {
		return false, store.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("GetZoneActive query: %w", err)
	}
	return active != 0, nil
}

// Delete removes the record; zone rows go with it via ON DELETE CASCADE.
func (s *AccessRecordStore) Delete(ctx context.Context, code string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM access_records WHERE code = ?;
`, code)
		if err != nil {
			return fmt.Errorf("Delete: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

// DeleteExpiredBefore removes records whose date_out is strictly before the
// cutoff date. ISO dates compare lexicographically, so a plain string
// comparison walks the idx_access_records_date_out index.
func (s *AccessRecordStore) DeleteExpiredBefore(ctx context.Context, cutoff string) (int64, error) {
	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM access_records WHERE date_out < ?;
`, cutoff)
		if err != nil {
			return fmt.Errorf("DeleteExpiredBefore: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
