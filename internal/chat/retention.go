package chat

import (
	"context"
	"time"

	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/store"
)

// Cleaner periodically deletes messages older than the retention period.
type Cleaner struct {
	store     store.Store
	retention time.Duration
	interval  time.Duration
	logger    logging.Logger
	now       func() time.Time
}

func NewCleaner(st store.Store, retention, interval time.Duration, logger logging.Logger) *Cleaner {
	return &Cleaner{
		store:     st,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (c *Cleaner) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.Sweep(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep deletes expired messages once and returns how many were removed.
// Failures are logged and retried on the next tick.
func (c *Cleaner) Sweep(ctx context.Context) int64 {
	cutoff := c.now().Add(-c.retention)
	n, err := c.store.DeleteMessagesBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error(ctx, "message cleanup failed", "error", err)
		}
		return 0
	}
	if n > 0 {
		c.logger.Info(ctx, "old messages deleted", "count", n, "cutoff", cutoff)
	}
	return n
}
