package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/metrics"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// DefaultDrawAllocationTimeout bounds the allocation phase of a draw once it has
// been claimed.
const DefaultDrawAllocationTimeout = time.Minute

// Compile-time check to ensure DrawService implements DrawRunner
var _ DrawRunner = (*DrawService)(nil)

// DrawService runs the one-shot randomized allocation of a giveaway's prizes
type DrawService struct {
	giveawayRepo repositories.GiveawayRepository
	winnerRepo   repositories.WinnerRepository
	eligibility  *EligibilityService
	ledger       *WinnerLedger
	picker       Picker
	locker       Locker
	events       *EventRecorder
	clock        Clock
	allocTimeout time.Duration
}

// NewDrawService creates a new DrawService
func NewDrawService(
	giveawayRepo repositories.GiveawayRepository,
	winnerRepo repositories.WinnerRepository,
	eligibility *EligibilityService,
	ledger *WinnerLedger,
	picker Picker,
	locker Locker,
	events *EventRecorder,
	clock Clock,
) *DrawService {
	return &DrawService{
		giveawayRepo: giveawayRepo,
		winnerRepo:   winnerRepo,
		eligibility:  eligibility,
		ledger:       ledger,
		picker:       picker,
		locker:       locker,
		events:       events,
		clock:        clock,
		allocTimeout: DefaultDrawAllocationTimeout,
	}
}

// SetAllocationTimeout changes how long the allocation phase may run after the
// draw is claimed. Non-positive values keep the current timeout.
func (s *DrawService) SetAllocationTimeout(d time.Duration) {
	if d > 0 {
		s.allocTimeout = d
	}
}

// Draw allocates every prize slot of a giveaway to distinct eligible members, in
// prize order, sampling without replacement. A giveaway is drawn at most once: the
// drawCompleted flag is claimed with a compare-and-set before the first winner is
// written. If the eligible pool runs out the remaining slots stay empty.
func (s *DrawService) Draw(ctx context.Context, giveawayID primitive.ObjectID, actor string) (*models.DrawResult, error) {
	const op = "draw"
	started := time.Now()
	defer func() { metrics.ObserveDrawDuration(time.Since(started)) }()

	g, err := s.giveawayRepo.FindByID(ctx, giveawayID)
	if err != nil {
		metrics.IncDraw("not_found")
		return nil, err
	}
	if err := s.checkDrawable(g); err != nil {
		return nil, err
	}

	unlock, err := lockGiveaway(ctx, s.locker, op, giveawayID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Reload under the lock so a draw that finished while we waited is seen.
	g, err = s.giveawayRepo.FindByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDrawable(g); err != nil {
		return nil, err
	}

	eligible, err := s.eligibility.Evaluate(ctx, g.EligibilityCriteria)
	if err != nil {
		metrics.IncDraw("failed")
		return nil, err
	}
	if len(eligible) == 0 {
		metrics.IncDraw("no_eligible")
		slog.Warn("Draw aborted: no eligible participants", "giveawayId", g.ID.Hex())
		return nil, fmt.Errorf("draw giveaway %s: %w", g.ID.Hex(), apperror.ErrNoEligibleParticipants)
	}

	// Manual selections made before the draw keep their slots and their users.
	won, err := s.winnerRepo.UserIDsByGiveaway(ctx, g.ID)
	if err != nil {
		metrics.IncDraw("failed")
		return nil, err
	}
	remaining := make([]int, len(g.Prizes))
	for i, p := range g.Prizes {
		allocated, err := s.winnerRepo.CountByPrize(ctx, g.ID, p.Name)
		if err != nil {
			metrics.IncDraw("failed")
			return nil, err
		}
		if left := p.Quantity - int(allocated); left > 0 {
			remaining[i] = left
		}
	}

	now := s.clock.Now()
	claimed, err := s.giveawayRepo.ClaimDraw(ctx, g.ID, now)
	if err != nil {
		metrics.IncDraw("failed")
		return nil, err
	}
	if !claimed {
		metrics.IncDraw("already_completed")
		return nil, fmt.Errorf("draw giveaway %s: %w", g.ID.Hex(), apperror.ErrAlreadyCompleted)
	}

	// The gate is closed: a retry would be rejected, so the caller going away must
	// not stop the allocation.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.allocTimeout)
	defer cancel()

	result := &models.DrawResult{
		GiveawayID:    g.ID,
		Allocations:   []models.Allocation{},
		EligibleCount: len(eligible),
		CompletedAt:   now,
	}
	pool := excludeUsers(eligible, won)
	var events []*models.GiveawayEvent
	if g.Status != models.GiveawayStatusCompleted {
		events = append(events, models.NewStatusEvent(g.ID, g.Status, models.GiveawayStatusCompleted, models.TriggerDraw, actor, now))
	}

	var drawErr error
allocation:
	for i, prize := range g.Prizes {
		for slot := 0; slot < remaining[i]; slot++ {
			if len(pool) == 0 {
				result.UnfilledSlots += remaining[i] - slot
				continue allocation
			}
			idx, err := s.picker.Pick(len(pool))
			if err != nil {
				drawErr = apperror.Dependency(op, "random selection failed", err)
				break allocation
			}
			user := pool[idx]
			// Swap-remove keeps sampling without replacement deterministic for a seeded picker.
			pool[idx] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]

			w, err := s.ledger.write(ctx, g.ID, user, prize.Snapshot(), models.WinnerSourceDraw, actor, "")
			if err != nil {
				drawErr = err
				break allocation
			}
			result.Allocations = append(result.Allocations, models.Allocation{
				WinnerID: w.ID,
				Prize:    w.PrizeWon,
				User:     user,
			})
			events = append(events, models.NewWinnerEvent(models.EventTypeWinnerAllocated, w, models.TriggerDraw, actor, now))
		}
	}

	s.events.Record(ctx, events...)
	if drawErr != nil {
		// The draw is committed; slots left empty here are filled through manual selection.
		metrics.IncDraw("partial_failure")
		slog.Error("Draw stopped after a write failure", "error", drawErr, "giveawayId", g.ID.Hex(), "allocated", len(result.Allocations))
		return result, drawErr
	}

	outcome := "completed"
	if result.UnfilledSlots > 0 {
		outcome = "partial"
		metrics.AddUnfilledSlots(result.UnfilledSlots)
		slog.Warn("Eligible pool exhausted before all prizes were allocated", "giveawayId", g.ID.Hex(), "unfilled", result.UnfilledSlots)
	}
	metrics.IncDraw(outcome)
	slog.Info("Draw completed", "giveawayId", g.ID.Hex(), "eligible", result.EligibleCount, "allocated", len(result.Allocations), "unfilled", result.UnfilledSlots, "admin", actor)
	return result, nil
}

func (s *DrawService) checkDrawable(g *models.Giveaway) error {
	if g.DrawCompleted {
		metrics.IncDraw("already_completed")
		return fmt.Errorf("draw giveaway %s: %w", g.ID.Hex(), apperror.ErrAlreadyCompleted)
	}
	if g.Status == models.GiveawayStatusCancelled {
		metrics.IncDraw("cancelled")
		return apperror.Conflict("draw", "a cancelled giveaway cannot be drawn")
	}
	if s.clock.Now().Before(g.DrawDate) {
		metrics.IncDraw("too_early")
		return fmt.Errorf("draw giveaway %s: %w", g.ID.Hex(), apperror.ErrTooEarly)
	}
	return nil
}
