package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// SessionGauge is updated with the live session count after every purge.
type SessionGauge interface {
	SetActiveSessions(n int64)
}

// Purger deletes idle sessions on a cron schedule.
type Purger struct {
	sessions *SessionService
	gauge    SessionGauge
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewPurger(sessions *SessionService, schedule string, gauge SessionGauge) *Purger {
	return &Purger{
		sessions: sessions,
		gauge:    gauge,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "session.purger"),
	}
}

// Start schedules the purge job. An empty schedule disables purging.
func (p *Purger) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.schedule == "" {
		p.logger.Info("purge schedule not configured, idle sessions are kept")
		return nil
	}
	if p.running {
		return nil
	}

	if _, err := p.cron.AddFunc(p.schedule, func() { p.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", p.schedule, err)
	}

	p.cron.Start()
	p.running = true
	p.logger.Info("session purger started", "schedule", p.schedule)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	return nil
}

func (p *Purger) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	<-p.cron.Stop().Done()
	p.running = false
	p.logger.Info("session purger stopped")
}

// RunOnce deletes idle sessions and refreshes the session gauge.
func (p *Purger) RunOnce(ctx context.Context) {
	deleted, err := p.sessions.PurgeIdle(ctx)
	if err != nil {
		p.logger.Error("purge idle sessions", "error", err)
		return
	}
	if deleted > 0 {
		p.logger.Info("purged idle sessions", "count", deleted)
	}

	if p.gauge == nil {
		return
	}
	n, err := p.sessions.Count(ctx)
	if err != nil {
		p.logger.Error("count sessions", "error", err)
		return
	}
	p.gauge.SetActiveSessions(n)
}
