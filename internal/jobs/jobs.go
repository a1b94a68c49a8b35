// Package jobs schedules the background maintenance tasks.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/logging"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StaleRefresher refreshes cached game metadata past its TTL.
type StaleRefresher interface {
	RefreshStale(ctx context.Context, batch int) (int, error)
}

type Options struct {
	LogRetention time.Duration
	SweepEvery   time.Duration
	SweepBatch   int
	// Timeout bounds a single run of any job.
	Timeout time.Duration
}

// Runner holds the job bodies so they can be run directly in tests.
type Runner struct {
	db    *gorm.DB
	games StaleRefresher
	opts  Options
	now   func() time.Time
}

func NewRunner(db *gorm.DB, games StaleRefresher, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &Runner{db: db, games: games, opts: opts, now: func() time.Time { return time.Now().UTC() }}
}

// PurgeLogs drops system logs older than the retention window.
func (r *Runner) PurgeLogs(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	deleted, err := logging.PurgeSystemLogs(ctx, r.db, r.now().Add(-r.opts.LogRetention))
	if err != nil {
		slog.Error("log cleanup failed", "error", err.Error())
		return
	}
	slog.Info("log cleanup completed", "deleted", deleted)
}

// SweepGames refreshes one batch of stale cached games.
func (r *Runner) SweepGames(ctx context.Context) {
	if r.games == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	n, err := r.games.RefreshStale(ctx, r.opts.SweepBatch)
	if err != nil {
		slog.Error("stale game sweep failed", "error", err.Error())
		return
	}
	if n > 0 {
		slog.Info("stale game sweep completed", "refreshed", n)
	}
}

// Start registers the jobs on a new scheduler and starts it. The caller must
// Shutdown the returned scheduler.
func Start(ctx context.Context, r *Runner) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	if r.opts.LogRetention > 0 {
		if _, err := sched.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
			gocron.NewTask(r.PurgeLogs, ctx),
			gocron.WithName("purge-system-logs"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return nil, err
		}
	}

	if r.games != nil && r.opts.SweepEvery > 0 && r.opts.SweepBatch > 0 {
		if _, err := sched.NewJob(
			gocron.DurationJob(r.opts.SweepEvery),
			gocron.NewTask(r.SweepGames, ctx),
			gocron.WithName("sweep-stale-games"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			return nil, err
		}
	}

	sched.Start()
	slog.Info("scheduler started", "jobs", len(sched.Jobs()))
	return sched, nil
}
