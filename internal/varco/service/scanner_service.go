package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openvarco/varco/internal/varco/store"
	"github.com/openvarco/varco/internal/varco/types"
)

var ErrInvalidScannerID = errors.New("scanner_id is required")

// ScannerService tracks checkpoint devices via their heartbeats so the
// operator can see which scanners are alive.
type ScannerService struct {
	scanners     store.ScannerStore
	onlineWindow time.Duration
	now          func() time.Time
}

func NewScannerService(scanners store.ScannerStore, onlineWindow time.Duration) *ScannerService {
	if onlineWindow <= 0 {
		onlineWindow = 2 * time.Minute
	}
	return &ScannerService{
		scanners:     scanners,
		onlineWindow: onlineWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Record persists a heartbeat from a zone scanner.
func (s *ScannerService) Record(ctx context.Context, req types.HeartbeatRequest) (types.HeartbeatResponse, error) {
	scannerID := strings.TrimSpace(req.ScannerID)
	if scannerID == "" {
		return types.HeartbeatResponse{}, ErrInvalidScannerID
	}

	now := s.now()
	rec := store.ScannerRecord{
		ScannerID:       scannerID,
		Zone:            strings.TrimSpace(req.Zone),
		LastIP:          strings.TrimSpace(req.IP),
		FirmwareVersion: strings.TrimSpace(req.FirmwareVersion),
	}

	if err := s.scanners.UpsertHeartbeat(ctx, rec, now); err != nil {
		return types.HeartbeatResponse{}, err
	}

	return types.HeartbeatResponse{
		OK:         true,
		ScannerID:  scannerID,
		ServerTime: now.Format(time.RFC3339Nano),
	}, nil
}

// Status lists all known scanners, marking each online when its last
// heartbeat is within the configured window.
func (s *ScannerService) Status(ctx context.Context) ([]types.ScannerStatus, error) {
	recs, err := s.scanners.ListScanners(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]types.ScannerStatus, 0, len(recs))
	for _, rec := range recs {
		st := types.ScannerStatus{
			ScannerID:       rec.ScannerID,
			Zone:            rec.Zone,
			LastIP:          rec.LastIP,
			FirmwareVersion: rec.FirmwareVersion,
		}
		if !rec.LastSeenAt.IsZero() {
			st.LastSeen = rec.LastSeenAt.Format(time.RFC3339)
			st.Online = now.Sub(rec.LastSeenAt) <= s.onlineWindow
		}
		out = append(out, st)
	}
	return out, nil
}
