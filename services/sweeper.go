package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CheckoutExpirer marks abandoned checkout sessions expired.
type CheckoutExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionExpirer drops sessions past their expiry.
type SessionExpirer interface {
	ExpireStale() int
}

// Sweeper periodically expires stale checkouts and sessions.
type Sweeper struct {
	checkouts CheckoutExpirer
	sessions  SessionExpirer
	expiry    time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewSweeper(checkouts CheckoutExpirer, sessions SessionExpirer, expiry time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{checkouts: checkouts, sessions: sessions, expiry: expiry, log: log, now: time.Now}
}

// Sweep runs one pass. It never panics.
func (s *Sweeper) Sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("sweep panic", zap.Any("panic", r))
		}
	}()

	if s.checkouts != nil {
		cutoff := s.now().Add(-s.expiry)
		n, err := s.checkouts.ExpirePending(ctx, cutoff)
		if err != nil {
			s.log.Warn("expiring pending checkouts failed", zap.Error(err))
		} else if n > 0 {
			s.log.Info("expired pending checkouts", zap.Int64("count", n), zap.Time("cutoff", cutoff))
		}
	}

	if s.sessions != nil {
		if n := s.sessions.ExpireStale(); n > 0 {
			s.log.Info("expired sessions", zap.Int("count", n))
		}
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
