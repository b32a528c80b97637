package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/robfig/cron/v3"

	"agridash/internal/infrastructure"
	ws "agridash/internal/websocket"
)

// Snapshotter writes one KPI snapshot and returns the file it wrote.
type Snapshotter interface {
	Run(ctx context.Context) (string, error)
}

// Broadcaster pushes an event to every live session.
type Broadcaster interface {
	Broadcast(eventType string, data interface{})
}

// Scheduler runs KPI snapshots on a cron schedule and announces every new
// file to the live sessions.
type Scheduler struct {
	cron      *cron.Cron
	snapshots Snapshotter
	hub       Broadcaster
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler parses spec as a standard five-field cron expression.
func NewScheduler(spec string, snapshots Snapshotter, hub Broadcaster, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = infrastructure.WithComponent(logger, "snapshot_scheduler")

	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:      c,
		snapshots: snapshots,
		hub:       hub,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}

	if _, err := c.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("snapshot scheduler started",
		slog.Time("next_run", s.cron.Entries()[0].Next))
}

// Stop cancels a running snapshot and waits for it to return, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce writes a snapshot now and broadcasts it on success.
func (s *Scheduler) RunOnce(ctx context.Context) {
	path, err := s.snapshots.Run(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "scheduled snapshot failed", slog.String("error", err.Error()))
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(ws.TypeSnapshot, map[string]string{
			"file": filepath.Base(path),
		})
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{slog.String("error", err.Error())}, keysAndValues...)...)
}
