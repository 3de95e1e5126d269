package store

import (
	"context"
	"time"
)

// ScannerRecord is the last-known snapshot of one checkpoint device.
type ScannerRecord struct {
	ScannerID       string
	Zone            string
	LastSeenAt      time.Time
	LastIP          string
	FirmwareVersion string
}

type ScannerStore interface {
	// UpsertHeartbeat records that the scanner checked in at seenAt,
	// creating the snapshot row on first contact.
	UpsertHeartbeat(ctx context.Context, rec ScannerRecord, seenAt time.Time) error

	// ListScanners returns all scanners that have ever checked in,
	// ordered by scanner ID.
	ListScanners(ctx context.Context) ([]ScannerRecord, error)
}
