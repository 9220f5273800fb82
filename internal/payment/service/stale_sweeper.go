package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type StaleMarker interface {
	MarkStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// StaleSweeper periodically flags transactions that never got a callback.
// Flagged, not failed: the gateway may still deliver and the status poll can
// finish the job.
type StaleSweeper struct {
	txRepo     StaleMarker
	staleAfter time.Duration
	interval   time.Duration
	logger     *zap.Logger
}

func NewStaleSweeper(txRepo StaleMarker, staleAfter, interval time.Duration, logger *zap.Logger) *StaleSweeper {
	return &StaleSweeper{
		txRepo:     txRepo,
		staleAfter: staleAfter,
		interval:   interval,
		logger:     logger,
	}
}

func (s *StaleSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *StaleSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.staleAfter)
	marked, err := s.txRepo.MarkStale(ctx, cutoff)
	if err != nil {
		s.logger.Error("stale sweep failed", zap.Error(err))
		return
	}
	if marked > 0 {
		s.logger.Warn("transactions marked stale",
			zap.Int64("count", marked),
			zap.Time("cutoff", cutoff),
		)
	}
}
