package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// Zones to activate for the demo record, normally the configured zone set.
	Zones []string
}

// SeedDev inserts a demo access record so a fresh dev environment has
// something to scan. The record's range covers today, so the reaper leaves
// it alone.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC()
	nowMs := now.UnixMilli()
	today := now.Format("2006-01-02")
	nextWeek := now.AddDate(0, 0, 7).Format("2006-01-02")

	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO access_records(code, name, surname, date_in, date_out, created_at_ms)
VALUES ('DEV01', 'Demo', 'Guest', ?, ?, ?);`, today, nextWeek, nowMs)
	if err != nil {
		return fmt.Errorf("seed access record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Already seeded.
		return nil
	}

	for _, zone := range opt.Zones {
		if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO zone_codes(code, zone, active) VALUES ('DEV01', ?, 1);`, zone); err != nil {
			return fmt.Errorf("seed zone %s: %w", zone, err)
		}
	}

	return nil
}
