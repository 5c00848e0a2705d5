package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/shopgenie-backend/internal/app/service"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// PersistenceRetrier is the part of the engine the scheduler drives.
type PersistenceRetrier interface {
	Degraded() []service.StoreKey
	RetryPersistence(ctx context.Context) int
}

// FlushScheduler periodically re-attempts snapshot writes that failed.
type FlushScheduler struct {
	cron    *cron.Cron
	spec    string
	retrier PersistenceRetrier
	timeout time.Duration
}

func NewFlushScheduler(spec string, retrier PersistenceRetrier) *FlushScheduler {
	return &FlushScheduler{
		cron:    cron.New(),
		spec:    spec,
		retrier: retrier,
		timeout: 30 * time.Second,
	}
}

// Start registers the job and starts the cron runner. An empty spec
// disables the scheduler.
func (s *FlushScheduler) Start() error {
	if s.spec == "" {
		logger.Info("Persistence flush scheduler disabled", nil)
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, s.Flush)
	if err != nil {
		logger.Error("Failed to add cron job for persistence flush", err, map[string]interface{}{
			"schedule": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Persistence flush scheduler started", map[string]interface{}{
		"schedule": s.spec,
	})
	return nil
}

// Flush retries pending writes once.
func (s *FlushScheduler) Flush() {
	degraded := s.retrier.Degraded()
	if len(degraded) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	flushed := s.retrier.RetryPersistence(ctx)
	fields := map[string]interface{}{
		"pending": len(degraded),
		"flushed": flushed,
	}
	if flushed < len(degraded) {
		logger.Warn("Some snapshots are still memory-only", fields)
		return
	}
	logger.Info("Pending snapshots flushed", fields)
}

// Stop waits for a running job to finish.
func (s *FlushScheduler) Stop() {
	logger.Info("Stopping persistence flush scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Persistence flush scheduler stopped", nil)
}
