package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"aiResume/internal/metrics"
	"aiResume/internal/storage"
)

// Sweeper periodically deletes stored files older than the retention period.
type Sweeper struct {
	cron      *cron.Cron
	store     storage.Store
	retention time.Duration
	spec      string
	logger    *slog.Logger
	now       func() time.Time
}

// NewSweeper wraps robfig/cron. spec uses cron syntax or descriptors such as "@every 10m".
func NewSweeper(store storage.Store, retention time.Duration, spec string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		store:     store,
		retention: retention,
		spec:      spec,
		logger:    logger,
		now:       time.Now,
	}
}

// Start registers the sweep and starts the scheduler. A sweep also runs immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runSweep(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("retention sweep started", slog.String("spec", s.spec), slog.Duration("retention", s.retention))

	go s.runSweep(ctx)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("retention sweep stopped")
}

func (s *Sweeper) runSweep(ctx context.Context) {
	deleted, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("retention sweep failed", slog.Int("deleted", deleted), slog.Any("error", err))
		return
	}
	if deleted > 0 {
		s.logger.Info("retention sweep completed", slog.Int("deleted", deleted))
	}
}

// Sweep deletes every object whose modification time is older than the retention.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	objects, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stored files: %w", err)
	}

	cutoff := s.now().Add(-s.retention)
	deleted := 0
	var firstErr error
	for _, obj := range objects {
		if obj.ModTime.IsZero() || obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, obj.Name); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	metrics.AddDeleted("sweep", deleted)
	return deleted, firstErr
}
