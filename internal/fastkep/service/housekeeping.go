package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/revocation"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
)

// HousekeepingService periodically drops revocation records whose tokens have
// expired, so the revocation set stays bounded.
type HousekeepingService struct {
	Revocations revocation.Store
	Logger      *slog.Logger
	Interval    time.Duration
	Metrics     *metricsx.Metrics

	Now func() time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(revocations revocation.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Revocations: revocations,
		Logger:      logger,
		Interval:    interval,
		Now:         time.Now,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down. Only the
// first call has any effect.
func (s *HousekeepingService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished. It is safe to call
// more than once, and before Start.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if !s.started.Load() {
			return
		}
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.Interval)
	defer cancel()

	n, err := s.Revocations.Purge(ctx, s.Now())
	if err != nil {
		s.Logger.Error("failed to purge expired revocations", "error", err)
		return
	}

	s.Metrics.RevocationsPurged(n)
	s.Logger.Info("housekeeping cleanup completed", "purged_revocations", n)
}
