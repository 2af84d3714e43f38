// Package schedule runs the bot's background jobs on cron specs: the
// daily player cache refresh and the optional snapshot upload. Panics in
// jobs are recovered and overlapping runs of the same job are skipped.
package schedule

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/craftd/craftd/internal/metrics"
)

// JobFunc is one background job run.
type JobFunc func(ctx context.Context) error

// Scheduler dispatches jobs on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	log  zerolog.Logger
}

// New returns a stopped Scheduler. Jobs receive ctx; cancel it to
// interrupt in-flight work during shutdown.
func New(ctx context.Context, logger zerolog.Logger) *Scheduler {
	cl := cronLogger{log: logger}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		ctx: ctx,
		log: logger,
	}
}

// Add registers job under name on the standard 5-field cron spec.
func (s *Scheduler) Add(spec, name string, job JobFunc) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.log.Info().Str("job", name).Msg("job starting")
		err := job(s.ctx)
		metrics.RecordJobRun(name, err == nil)
		if err != nil {
			s.log.Error().Str("job", name).Err(err).Msg("job failed")
			return
		}
		s.log.Info().Str("job", name).Msg("job finished")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

// Start launches the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and returns a context that completes when
// in-flight jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger adapts zerolog to the cron logging interface.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
