package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
)

// Refresher reloads every dataset
type Refresher interface {
	Refresh(ctx context.Context) Data
}

// Scheduler refreshes the cache on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	target  Refresher
	timeout time.Duration
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler validates spec (standard five field cron syntax or a descriptor
// such as @every 10m) and prepares the refresh job. Each run is bounded by timeout
// when it is positive.
func NewScheduler(spec string, target Refresher, loc *time.Location, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		spec:    spec,
		target:  target,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "refresh_scheduler")),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		s.cancel()
		return nil, apperrors.NewConfigError("invalid refresh schedule", err).WithContext("schedule", spec)
	}
	return s, nil
}

// Start begins running the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("refresh schedule started", slog.String("schedule", s.spec))
}

// Stop halts the schedule and waits for a running refresh or ctx expiry
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("refresh schedule stop timed out")
	}
}

func (s *Scheduler) run() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	data := s.target.Refresh(ctx)
	s.logger.Info("scheduled refresh finished",
		slog.Duration("duration", time.Since(start)),
		slog.Int("orders", len(data.Orders)),
		slog.Int("payouts", len(data.Payouts)),
		slog.Int("staff", len(data.Staff)))
}
