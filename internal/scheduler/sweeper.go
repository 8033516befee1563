package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the overdue sweep every five minutes.
const DefaultSweepSchedule = "@every 5m"

// Sweeper is the job run on each tick.
type Sweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// OverdueSweeper marks past-deadline delegation records overdue on a cron schedule.
type OverdueSweeper struct {
	sweeper Sweeper
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewOverdueSweeper registers sweeper under spec. An empty spec uses DefaultSweepSchedule.
func NewOverdueSweeper(sweeper Sweeper, spec string, loc *time.Location, logger *slog.Logger) (*OverdueSweeper, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("scheduler: sweeper is required")
	}
	if spec == "" {
		spec = DefaultSweepSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &OverdueSweeper{
		sweeper: sweeper,
		cron:    cron.New(cron.WithLocation(loc)),
		timeout: time.Minute,
		logger:  logger.With("component", "OverdueSweeper"),
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("scheduler: invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *OverdueSweeper) Start() {
	s.cron.Start()
	s.logger.Info("overdue sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to expire.
func (s *OverdueSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("overdue sweeper stopped")
}

// RunOnce performs a single sweep immediately.
func (s *OverdueSweeper) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return 0, nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return s.sweeper.SweepOverdue(ctx)
}

func (s *OverdueSweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed", "error", err)
		return
	}
	s.logger.Debug("overdue sweep tick", "updated", count)
}
