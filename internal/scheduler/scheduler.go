package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/metrics"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

const sweepTimeout = 30 * time.Second

// LifecycleTask advances giveaway statuses whose dates have passed.
type LifecycleTask interface {
	Sweep(ctx context.Context) (*models.SweepResult, error)
}

type Deps struct {
	Lifecycle     LifecycleTask
	LifecycleSpec string
}

// NewScheduler registers the periodic jobs. The caller starts and stops the returned cron.
func NewScheduler(deps Deps) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	if deps.Lifecycle != nil {
		if err := addFunc(c, deps.LifecycleSpec, "lifecycle.sweep", lifecycleJob(deps.Lifecycle)); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func lifecycleJob(task LifecycleTask) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		result, err := task.Sweep(ctx)
		if err != nil {
			metrics.IncLifecycleSweepError()
			slog.Error("Lifecycle sweep failed", "error", err)
		}
		if result != nil {
			slog.Debug("Lifecycle sweep finished", "activated", result.Activated, "completed", result.Completed, "skipped", result.Skipped)
		}
	}
}

func addFunc(c *cron.Cron, spec, name string, fn func()) error {
	if _, err := c.AddFunc(spec, func() {
		defer recoverJobPanic(name)
		start := time.Now()
		fn()
		slog.Debug("Scheduler job finished", "job", name, "cost", time.Since(start))
	}); err != nil {
		return fmt.Errorf("register scheduler job %s (%q): %w", name, spec, err)
	}
	return nil
}

func recoverJobPanic(name string) {
	if recovered := recover(); recovered != nil {
		slog.Error("Scheduler job panic recovered", "job", name, "panic", recovered)
	}
}
