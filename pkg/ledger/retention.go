package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Retention prunes finished executions older than MaxAge on a cron schedule.
type Retention struct {
	ledger   Ledger
	logger   *slog.Logger
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
}

// NewRetention creates a retention sweeper. Schedule is a standard cron
// expression; maxAge bounds how long finished executions are kept.
func NewRetention(ledger Ledger, logger *slog.Logger, schedule string, maxAge time.Duration) *Retention {
	return &Retention{
		ledger:   ledger,
		logger:   logger.With("module", "ledger_retention"),
		schedule: schedule,
		maxAge:   maxAge,
	}
}

// Start schedules the sweep. It returns immediately; sweeps run on the cron
// goroutine until Stop is called.
func (r *Retention) Start(ctx context.Context) error {
	r.cron = cron.New()

	_, err := r.cron.AddFunc(r.schedule, func() {
		r.sweep(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("Started execution retention sweeper", "schedule", r.schedule, "max_age", r.maxAge)

	return nil
}

// Stop halts future sweeps; an in-progress sweep finishes.
func (r *Retention) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

func (r *Retention) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.maxAge)

	pruned, err := r.ledger.Prune(ctx, cutoff)
	if err != nil {
		r.logger.Error("Execution retention sweep failed", "error", err)

		return
	}

	if pruned > 0 {
		r.logger.Info("Pruned old executions", "count", pruned, "cutoff", cutoff)
	}
}
