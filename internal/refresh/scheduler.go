// Package refresh re-runs dashboard loads on a cron schedule.
package refresh

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/lebfix/lebfix-client/internal/logging"
)

// Job is one refresh pass. Errors are logged; the schedule keeps running.
type Job func(ctx context.Context) error

type Scheduler struct {
	schedule string
	job      Job
	cron     *cron.Cron
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewScheduler validates schedule (standard five-field spec or a descriptor
// such as "@every 30s").
func NewScheduler(schedule string, job Job) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", schedule, err)
	}
	log := *logging.For("refresh")
	return &Scheduler{
		schedule: schedule,
		job:      job,
		log:      log,
		cron: cron.New(
			cron.WithLogger(cronLogger{log}),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})),
		),
	}, nil
}

// Start registers the job and starts the cron loop. Runs stop when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule refresh: %w", err)
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("refresh scheduler started")
	return nil
}

// RunNow performs one pass immediately on the caller's goroutine.
func (s *Scheduler) RunNow(ctx context.Context) {
	s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx = logging.WithRequestID(ctx, uuid.NewString())
	if err := s.job(ctx); err != nil {
		logging.NewLogger(ctx, "refresh").LogError("refresh", err)
	}
}

// Stop halts the schedule and waits for a running pass to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("refresh scheduler stopped")
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
