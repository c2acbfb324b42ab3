// Package jobs contains background maintenance tasks.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/stridewear/stride/internal/domain"
)

// DefaultSweepInterval is how often expired guest sessions are removed.
const DefaultSweepInterval = time.Hour

// Sweeper periodically deletes expired guest sessions. Their carts go
// with them via the FK cascade.
type Sweeper struct {
	guests   domain.GuestStore
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper. A non-positive interval falls back to
// DefaultSweepInterval.
func NewSweeper(guests domain.GuestStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		guests:   guests,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is
// cancelled. Sweep failures are logged and the loop keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("guest session sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.guests.DeleteExpiredGuestSessions(ctx, time.Now())
	if err != nil {
		s.logger.Error("guest session sweep failed", slog.String("error", err.Error()))
		return
	}
	if deleted > 0 {
		s.logger.Info("swept expired guest sessions", slog.Int64("deleted", deleted))
	}
}
