package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
)

type fakeLifecycle struct {
	calls atomic.Int32
	err   error
	panic bool
}

func (f *fakeLifecycle) Sweep(ctx context.Context) (*models.SweepResult, error) {
	f.calls.Add(1)
	if f.panic {
		panic("boom")
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sweep ran without a deadline")
	}
	return &models.SweepResult{Activated: 1}, f.err
}

func TestNewSchedulerRegistersLifecycleJob(t *testing.T) {
	c, err := NewScheduler(Deps{Lifecycle: &fakeLifecycle{}, LifecycleSpec: "@every 1m"})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if got := len(c.Entries()); got != 1 {
		t.Fatalf("entries = %d, want 1", got)
	}
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	if _, err := NewScheduler(Deps{Lifecycle: &fakeLifecycle{}, LifecycleSpec: "every minute"}); err == nil {
		t.Fatal("expected an invalid spec to be rejected")
	}
}

func TestNewSchedulerWithoutJobs(t *testing.T) {
	c, err := NewScheduler(Deps{})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if len(c.Entries()) != 0 {
		t.Fatal("no jobs expected")
	}
}

func TestLifecycleJobSurvivesFailures(t *testing.T) {
	failing := &fakeLifecycle{err: errors.New("mongo down")}
	lifecycleJob(failing)()
	if failing.calls.Load() != 1 {
		t.Fatalf("calls = %d", failing.calls.Load())
	}

	panicking := &fakeLifecycle{panic: true}
	job := func() {
		defer recoverJobPanic("lifecycle.sweep")
		lifecycleJob(panicking)()
	}
	job()
	if panicking.calls.Load() != 1 {
		t.Fatalf("calls = %d", panicking.calls.Load())
	}
}
