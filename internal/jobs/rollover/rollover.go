// Package rollover recomputes every user's progress on a schedule so daily
// objectives regenerate and weekly challenges reset without a request.
package rollover

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

// DefaultSpec runs five minutes past local midnight.
const DefaultSpec = "5 0 * * *"

// Refresher recomputes all users and reports how many succeeded.
type Refresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

type Scheduler struct {
	log       *logger.Logger
	refresher Refresher
	spec      string
	loc       *time.Location
	metrics   *observability.Metrics

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
}

func New(log *logger.Logger, refresher Refresher, spec string, loc *time.Location, m *observability.Metrics) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		log:       log.With("component", "RolloverScheduler"),
		refresher: refresher,
		spec:      spec,
		loc:       loc,
		metrics:   m,
	}
}

// cronLogger adapts the app logger to the cron package.
type cronLogger struct{ log *logger.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

// Start registers the job and starts the scheduler. It stops when ctx is
// done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("rollover scheduler already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	cl := cronLogger{log: s.log}
	c := rcron.New(
		rcron.WithLocation(s.loc),
		rcron.WithLogger(cl),
		rcron.WithChain(rcron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(s.spec, func() { _, _ = s.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("register rollover %q: %w", s.spec, err)
	}
	c.Start()
	s.cron = c
	s.cancel = cancel
	s.log.Info("Rollover scheduler started", "spec", s.spec, "location", s.loc.String())

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

// RunOnce refreshes every user now. A panic in the refresher is reported as
// an error.
func (s *Scheduler) RunOnce(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Rollover panic", "panic", r)
			err = fmt.Errorf("rollover panic: %v", r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.IncRollover(outcome)
		s.log.Info("Rollover finished", "users", n, "outcome", outcome, "duration_ms", time.Since(start).Milliseconds())
	}()
	return s.refresher.RefreshAll(ctx)
}

// Stop waits up to five seconds for a running job.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	select {
	case <-c.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Warn("Rollover stop timed out waiting for running job")
	}
	s.log.Info("Rollover scheduler stopped")
}
