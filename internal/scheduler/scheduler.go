// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mcoot/stationscore/internal/services/ledger"
)

// SessionPurger removes expired sessions
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// BalanceAuditor compares cached balances with the ledger
type BalanceAuditor interface {
	Audit(ctx context.Context) ([]ledger.BalanceDrift, error)
}

// Scheduler wraps a gocron scheduler with the application's jobs
type Scheduler struct {
	sched  gocron.Scheduler
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a stopped Scheduler
func New(logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sched:  sched,
		logger: logger.With(slog.String("component", "scheduler")),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// AddSessionPurge removes expired sessions every interval
func (s *Scheduler) AddSessionPurge(purger SessionPurger, interval time.Duration) error {
	return s.add("session-purge", interval, func() {
		removed, err := purger.PurgeExpired(s.ctx)
		if err != nil {
			s.logger.Error("session purge failed", slog.String("error", err.Error()))
			return
		}
		if removed > 0 {
			s.logger.Info("expired sessions purged", slog.Int("removed", removed))
		}
	})
}

// AddBalanceAudit logs every player whose cached balance has drifted from the ledger
func (s *Scheduler) AddBalanceAudit(auditor BalanceAuditor, interval time.Duration) error {
	return s.add("balance-audit", interval, func() {
		drifts, err := auditor.Audit(s.ctx)
		if err != nil {
			s.logger.Error("balance audit failed", slog.String("error", err.Error()))
			return
		}
		for _, d := range drifts {
			s.logger.Warn("balance drift",
				slog.String("player_id", string(d.PlayerID)),
				slog.String("number", d.Number),
				slog.Int64("cached", d.Cached),
				slog.Int64("ledger", d.Ledger),
			)
		}
	})
}

func (s *Scheduler) add(name string, interval time.Duration, task func()) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("job scheduled", slog.String("job", name), slog.Duration("interval", interval))
	return nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.sched.Shutdown()
}
