package service

import (
	"context"
	"log"
	"time"

	"github.com/openvarco/varco/internal/varco/store"
)

// ExpiryReaper periodically deletes access records whose date range has
// fully elapsed. It runs as a background goroutine, decoupled from request
// traffic, and is safe to stop via its context or the Stop method.
//
// A failed sweep is logged and the loop continues on its normal schedule.
type ExpiryReaper struct {
	records  store.AccessRecordStore
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// ReaperConfig holds the parameters for NewExpiryReaper.
type ReaperConfig struct {
	// IntervalSeconds is how often the reaper sweeps.  Defaults to 30.
	IntervalSeconds int
}

// NewExpiryReaper creates a reaper but does not start it.
// Call Start to begin the background loop.
func NewExpiryReaper(records store.AccessRecordStore, cfg ReaperConfig, logger *log.Logger) *ExpiryReaper {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &ExpiryReaper{
		records:  records,
		interval: interval,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		done:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.  It runs an immediate sweep on
// startup, then repeats on the configured interval.  The loop exits when
// ctx is cancelled or Stop is called; cancellation takes effect between
// sweeps, never mid-sweep.
func (r *ExpiryReaper) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	go r.loop(ctx)

	r.logger.Printf("expiry reaper started (interval=%s)", r.interval)
}

// Stop signals the reaper to exit and waits for it to finish.
func (r *ExpiryReaper) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
}

func (r *ExpiryReaper) loop(ctx context.Context) {
	defer close(r.done)

	// Sweep immediately on startup to clear any backlog of expired codes.
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep deletes every record whose date_out is strictly before today: a
// code stays valid through the whole of its check-out day.
func (r *ExpiryReaper) sweep(ctx context.Context) {
	today := r.now().Format(dateLayout)
	deleted, err := r.records.DeleteExpiredBefore(ctx, today)
	if err != nil {
		r.logger.Printf("expiry sweep error: %v", err)
		return
	}
	if deleted > 0 {
		r.logger.Printf("expiry sweep: deleted %d records with date_out before %s", deleted, today)
	}
}
