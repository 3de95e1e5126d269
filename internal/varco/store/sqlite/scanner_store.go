package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/openvarco/varco/internal/db"
	"github.com/openvarco/varco/internal/varco/store"
)

type ScannerStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewScannerStore(db *sql.DB, writer *dbpkg.Worker) *ScannerStore {
	return &ScannerStore{db: db, writer: writer}
}

func (s *ScannerStore) UpsertHeartbeat(ctx context.Context, rec store.ScannerRecord, seenAt time.Time) error {
	if seenAt.IsZero() {
		seenAt = time.Now().UTC()
	}
	seenMs := seenAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scanners(scanner_id, zone, last_seen_at_ms, last_ip, last_fw_version, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(scanner_id) DO UPDATE SET
  zone            = CASE WHEN excluded.zone != '' THEN excluded.zone ELSE scanners.zone END,
  last_seen_at_ms = excluded.last_seen_at_ms,
  last_ip         = excluded.last_ip,
  last_fw_version = excluded.last_fw_version,
  updated_at_ms   = excluded.updated_at_ms;
`, rec.ScannerID, rec.Zone, seenMs, rec.LastIP, rec.FirmwareVersion, seenMs, seenMs); err != nil {
			return fmt.Errorf("UpsertHeartbeat: %w", err)
		}
		return nil
	})
}

func (s *ScannerStore) ListScanners(ctx context.Context) ([]store.ScannerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT scanner_id, zone, last_seen_at_ms, last_ip, last_fw_version
FROM scanners
ORDER BY scanner_id ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("ListScanners query: %w", err)
	}
	defer rows.Close()

	var out []store.ScannerRecord
	for rows.Next() {
		var rec store.ScannerRecord
		var seenMs sql.NullInt64
		if err := rows.Scan(&rec.ScannerID, &rec.Zone, &seenMs, &rec.LastIP, &rec.FirmwareVersion); err != nil {
			return nil, fmt.Errorf("ListScanners scan: %w", err)
		}
		if seenMs.Valid {
			rec.LastSeenAt = time.UnixMilli(seenMs.Int64).UTC()
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListScanners rows: %w", err)
	}
	return out, nil
}
