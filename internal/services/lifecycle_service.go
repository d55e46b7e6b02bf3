package services

import (
	"context"
	"errors"

	"github.com/ArowuTest/giveaway-draw-backend/internal/metrics"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// LifecycleService advances giveaways through draft, active and completed as their
// dates pass. It never runs a draw.
type LifecycleService struct {
	giveawayRepo repositories.GiveawayRepository
	events       *EventRecorder
	clock        Clock
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(giveawayRepo repositories.GiveawayRepository, events *EventRecorder, clock Clock) *LifecycleService {
	return &LifecycleService{giveawayRepo: giveawayRepo, events: events, clock: clock}
}

// Sweep applies every due transition once. Each giveaway moves with a status
// compare-and-set, so concurrent sweeps and admin updates never double-apply.
// Activation runs first, so a draft whose end date has also passed is completed
// in the same sweep.
func (s *LifecycleService) Sweep(ctx context.Context) (*models.SweepResult, error) {
	now := s.clock.Now()
	result := &models.SweepResult{}
	var errs []error

	due, err := s.giveawayRepo.FindDueForActivation(ctx, now)
	if err != nil {
		return result, err
	}
	for _, g := range due {
		ok, err := s.transition(ctx, g, models.GiveawayStatusDraft, models.GiveawayStatusActive)
		switch {
		case err != nil:
			errs = append(errs, err)
		case ok:
			result.Activated++
		default:
			result.Skipped++
		}
	}

	due, err = s.giveawayRepo.FindDueForCompletion(ctx, s.clock.Now())
	if err != nil {
		return result, errors.Join(append(errs, err)...)
	}
	for _, g := range due {
		ok, err := s.transition(ctx, g, models.GiveawayStatusActive, models.GiveawayStatusCompleted)
		switch {
		case err != nil:
			errs = append(errs, err)
		case ok:
			result.Completed++
		default:
			result.Skipped++
		}
	}

	if result.Activated > 0 || result.Completed > 0 {
		slog.Info("Lifecycle sweep applied transitions", "activated", result.Activated, "completed", result.Completed, "skipped", result.Skipped)
	}
	return result, errors.Join(errs...)
}

func (s *LifecycleService) transition(ctx context.Context, g *models.Giveaway, from, to models.GiveawayStatus) (bool, error) {
	at := s.clock.Now()
	ok, err := s.giveawayRepo.CompareAndSetStatus(ctx, g.ID, from, to, at)
	if err != nil {
		slog.Error("Lifecycle transition failed", "error", err, "giveawayId", g.ID.Hex(), "from", from, "to", to)
		return false, err
	}
	if !ok {
		return false, nil
	}
	metrics.IncLifecycleTransition(string(to), string(models.TriggerLifecycle))
	s.events.Record(ctx, models.NewStatusEvent(g.ID, from, to, models.TriggerLifecycle, "", at))
	return true, nil
}
