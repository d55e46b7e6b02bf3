package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/metrics"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

var _ WinnerManager = (*WinnerLedger)(nil)

const replaceWriteTimeout = 15 * time.Second

// WinnerLedger owns every mutation of winner records. Mutations run under the
// per-giveaway lock so that the per-prize caps hold; the unique (giveawayId, userId)
// index backs the one-win-per-user rule at the storage level.
type WinnerLedger struct {
	giveawayRepo repositories.GiveawayRepository
	winnerRepo   repositories.WinnerRepository
	eligibility  *EligibilityService
	picker       Picker
	locker       Locker
	events       *EventRecorder
	clock        Clock
}

// NewWinnerLedger creates a new WinnerLedger
func NewWinnerLedger(
	giveawayRepo repositories.GiveawayRepository,
	winnerRepo repositories.WinnerRepository,
	eligibility *EligibilityService,
	picker Picker,
	locker Locker,
	events *EventRecorder,
	clock Clock,
) *WinnerLedger {
	return &WinnerLedger{
		giveawayRepo: giveawayRepo,
		winnerRepo:   winnerRepo,
		eligibility:  eligibility,
		picker:       picker,
		locker:       locker,
		events:       events,
		clock:        clock,
	}
}

// ManualAddRequest places a specific member on a prize tier.
type ManualAddRequest struct {
	GiveawayID           primitive.ObjectID
	User                 models.UserRef
	PrizeIndex           int
	SkipEligibilityCheck bool
	Actor                string
	Notes                string
}

// Create allocates a named prize of a giveaway to a member.
func (l *WinnerLedger) Create(ctx context.Context, giveawayID primitive.ObjectID, user models.UserRef, prizeName string, source models.WinnerSource, actor string) (*models.Winner, error) {
	const op = "create winner"

	unlock, err := lockGiveaway(ctx, l.locker, op, giveawayID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	g, err := l.giveawayRepo.FindByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	prize, _, ok := g.PrizeByName(prizeName)
	if !ok {
		return nil, apperror.Validation(op, "prize %q does not exist in this giveaway", prizeName)
	}
	if err := l.checkNotWinner(ctx, op, g.ID, user.ID); err != nil {
		return nil, err
	}
	if err := l.checkCapacity(ctx, op, g.ID, prize); err != nil {
		return nil, err
	}
	w, err := l.write(ctx, g.ID, user, prize.Snapshot(), source, actor, "")
	if err != nil {
		return nil, err
	}
	l.events.Record(ctx, models.NewWinnerEvent(models.EventTypeWinnerAllocated, w, triggerFor(source), actor, w.WonAt))
	return w, nil
}

// ManualAdd checks, in order: prize index bounds, existing win, eligibility (unless
// skipped) and remaining capacity, then records the winner.
func (l *WinnerLedger) ManualAdd(ctx context.Context, req ManualAddRequest) (*models.Winner, error) {
	const op = "manual select"

	unlock, err := lockGiveaway(ctx, l.locker, op, req.GiveawayID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	g, err := l.giveawayRepo.FindByID(ctx, req.GiveawayID)
	if err != nil {
		return nil, err
	}
	if req.PrizeIndex < 0 || req.PrizeIndex >= len(g.Prizes) {
		return nil, apperror.Validation(op, "prize index %d is out of range", req.PrizeIndex)
	}
	prize := g.Prizes[req.PrizeIndex]

	if err := l.checkNotWinner(ctx, op, g.ID, req.User.ID); err != nil {
		return nil, err
	}
	if !req.SkipEligibilityCheck {
		eligible, err := l.eligibility.IsEligible(ctx, g.EligibilityCriteria, req.User.ID)
		if err != nil {
			return nil, err
		}
		if !eligible {
			return nil, apperror.Ineligible(op, "user does not meet the eligibility criteria")
		}
	}
	if err := l.checkCapacity(ctx, op, g.ID, prize); err != nil {
		return nil, err
	}

	w, err := l.write(ctx, g.ID, req.User, prize.Snapshot(), models.WinnerSourceManual, req.Actor, req.Notes)
	if err != nil {
		return nil, err
	}
	l.events.Record(ctx, models.NewWinnerEvent(models.EventTypeWinnerAllocated, w, models.TriggerAdmin, req.Actor, w.WonAt))
	slog.Info("Winner manually selected", "giveawayId", g.ID.Hex(), "winnerId", w.ID.Hex(), "prize", prize.Name, "admin", req.Actor, "skipEligibility", req.SkipEligibilityCheck)
	return w, nil
}

// Replace swaps a winner for a random eligible member who has not already won,
// keeping the prize. The old record is restored if the new one cannot be written.
func (l *WinnerLedger) Replace(ctx context.Context, id primitive.ObjectID, actor string) (*models.ReplaceResult, error) {
	const op = "replace winner"

	current, err := l.winnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock, err := lockGiveaway(ctx, l.locker, op, current.GiveawayID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock; a concurrent replace may have removed it.
	old, err := l.winnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := l.giveawayRepo.FindByID(ctx, old.GiveawayID)
	if err != nil {
		return nil, err
	}

	eligible, err := l.eligibility.Evaluate(ctx, g.EligibilityCriteria)
	if err != nil {
		return nil, err
	}
	won, err := l.winnerRepo.UserIDsByGiveaway(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	pool := excludeUsers(eligible, won)
	if len(pool) == 0 {
		return nil, apperror.Conflict(op, "no eligible participants available for replacement")
	}
	idx, err := l.picker.Pick(len(pool))
	if err != nil {
		return nil, apperror.Dependency(op, "random selection failed", err)
	}
	chosen := pool[idx]

	// From the delete on, the swap finishes or is rolled back even if the caller
	// goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replaceWriteTimeout)
	defer cancel()

	if err := l.winnerRepo.Delete(ctx, old.ID); err != nil {
		return nil, err
	}
	notes := fmt.Sprintf("replaced winner %s by admin %s at %s", old.UserID.Hex(), actor, l.clock.Now().Format(time.RFC3339))
	replacement, err := l.write(ctx, g.ID, chosen, old.PrizeWon, models.WinnerSourceReplace, actor, notes)
	if err != nil {
		if restoreErr := l.winnerRepo.Create(ctx, old); restoreErr != nil {
			slog.Error("CRITICAL: failed to restore winner after replacement failure",
				"error", restoreErr, "winnerId", old.ID.Hex(), "giveawayId", g.ID.Hex())
		}
		return nil, err
	}

	metrics.IncWinnerRemoved()
	l.events.Record(ctx,
		models.NewWinnerEvent(models.EventTypeWinnerRemoved, old, models.TriggerAdmin, actor, replacement.WonAt),
		models.NewWinnerEvent(models.EventTypeWinnerAllocated, replacement, models.TriggerAdmin, actor, replacement.WonAt),
	)
	slog.Info("Winner replaced", "giveawayId", g.ID.Hex(), "removed", old.ID.Hex(), "replacement", replacement.ID.Hex(),
		"phone", utils.MaskPhone(chosen.ContactPhone), "admin", actor)
	return &models.ReplaceResult{Removed: old, Replacement: replacement}, nil
}

// Remove deletes a winner, freeing its prize slot.
func (l *WinnerLedger) Remove(ctx context.Context, id primitive.ObjectID, actor string) error {
	const op = "remove winner"

	current, err := l.winnerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	unlock, err := lockGiveaway(ctx, l.locker, op, current.GiveawayID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := l.winnerRepo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.IncWinnerRemoved()
	l.events.Record(ctx, models.NewWinnerEvent(models.EventTypeWinnerRemoved, current, models.TriggerAdmin, actor, l.clock.Now()))
	slog.Info("Winner removed", "giveawayId", current.GiveawayID.Hex(), "winnerId", id.Hex(), "admin", actor)
	return nil
}

// UpdateMetadata changes delivery status, contact info, notes or prize description.
// It never changes the user or the prize tier.
func (l *WinnerLedger) UpdateMetadata(ctx context.Context, id primitive.ObjectID, update models.WinnerUpdate, actor string) (*models.Winner, error) {
	const op = "update winner"

	if update.Empty() {
		return nil, apperror.Validation(op, "no fields to update")
	}
	if update.DeliveryStatus != nil && !update.DeliveryStatus.Valid() {
		return nil, apperror.Validation(op, "unknown delivery status %q", *update.DeliveryStatus)
	}

	current, err := l.winnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock, err := lockGiveaway(ctx, l.locker, op, current.GiveawayID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	w, err := l.winnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(w)
	l.touch(w, actor)
	if err := l.winnerRepo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdatePrize moves a winner to another prize tier of the same giveaway, subject to
// that tier's remaining capacity.
func (l *WinnerLedger) UpdatePrize(ctx context.Context, id primitive.ObjectID, prizeIndex int, actor string) (*models.Winner, error) {
	const op = "update winner prize"

	current, err := l.winnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock, err := lockGiveaway(ctx, l.locker, op, current.GiveawayID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	w, err := l.winnerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := l.giveawayRepo.FindByID(ctx, w.GiveawayID)
	if err != nil {
		return nil, err
	}
	if prizeIndex < 0 || prizeIndex >= len(g.Prizes) {
		return nil, apperror.Validation(op, "prize index %d is out of range", prizeIndex)
	}
	target := g.Prizes[prizeIndex]
	if target.Name != w.PrizeWon.Name {
		if err := l.checkCapacity(ctx, op, g.ID, target); err != nil {
			return nil, err
		}
	}
	w.PrizeWon = target.Snapshot()
	l.touch(w, actor)
	if err := l.winnerRepo.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// RemainingCapacity reports allocated and free slots per prize tier.
func (l *WinnerLedger) RemainingCapacity(ctx context.Context, giveawayID primitive.ObjectID) ([]models.PrizeCapacity, error) {
	g, err := l.giveawayRepo.FindByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	out := make([]models.PrizeCapacity, 0, len(g.Prizes))
	for i, p := range g.Prizes {
		allocated, err := l.winnerRepo.CountByPrize(ctx, g.ID, p.Name)
		if err != nil {
			return nil, err
		}
		remaining := p.Quantity - int(allocated)
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, models.PrizeCapacity{
			Index:     i,
			Name:      p.Name,
			Quantity:  p.Quantity,
			Allocated: int(allocated),
			Remaining: remaining,
		})
	}
	return out, nil
}

// ListWinners returns a page of a giveaway's winners.
func (l *WinnerLedger) ListWinners(ctx context.Context, filter models.WinnerListFilter) (*models.WinnerPage, error) {
	if filter.DeliveryStatus != "" && !filter.DeliveryStatus.Valid() {
		return nil, apperror.Validation("list winners", "unknown delivery status %q", filter.DeliveryStatus)
	}
	if _, err := l.giveawayRepo.FindByID(ctx, filter.GiveawayID); err != nil {
		return nil, err
	}
	page, limit := utils.NormalizePagination(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page, limit

	winners, total, err := l.winnerRepo.FindPage(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.WinnerPage{
		Winners: winners,
		Total:   total,
		Page:    page,
		Pages:   utils.TotalPages(total, limit),
	}, nil
}

func (l *WinnerLedger) GetWinner(ctx context.Context, id primitive.ObjectID) (*models.Winner, error) {
	return l.winnerRepo.FindByID(ctx, id)
}

// ListByGiveaway returns all winners of a giveaway in allocation order.
func (l *WinnerLedger) ListByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Winner, error) {
	return l.winnerRepo.FindByGiveawayID(ctx, giveawayID)
}

func (l *WinnerLedger) checkNotWinner(ctx context.Context, op string, giveawayID, userID primitive.ObjectID) error {
	exists, err := l.winnerRepo.ExistsForUser(ctx, giveawayID, userID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.Conflict(op, "user is already a winner of this giveaway")
	}
	return nil
}

func (l *WinnerLedger) checkCapacity(ctx context.Context, op string, giveawayID primitive.ObjectID, prize models.Prize) error {
	allocated, err := l.winnerRepo.CountByPrize(ctx, giveawayID, prize.Name)
	if err != nil {
		return err
	}
	if int(allocated) >= prize.Quantity {
		return apperror.Conflict(op, "prize %q has no remaining capacity", prize.Name)
	}
	return nil
}

// write persists a winner. Callers hold the giveaway lock and have checked the caps.
func (l *WinnerLedger) write(ctx context.Context, giveawayID primitive.ObjectID, user models.UserRef, prize models.PrizeSnapshot, source models.WinnerSource, actor, notes string) (*models.Winner, error) {
	now := l.clock.Now()
	w := &models.Winner{
		ID:             primitive.NewObjectID(),
		GiveawayID:     giveawayID,
		UserID:         user.ID,
		PrizeWon:       prize,
		WonAt:          now,
		DeliveryStatus: models.DeliveryStatusPending,
		ContactInfo:    models.ContactInfo{Phone: user.ContactPhone},
		Notes:          notes,
		Source:         source,
		LastUpdatedBy:  actor,
		LastUpdatedAt:  &now,
	}
	if err := l.winnerRepo.Create(ctx, w); err != nil {
		return nil, err
	}
	metrics.IncWinnerAllocated(string(source))
	return w, nil
}

func (l *WinnerLedger) touch(w *models.Winner, actor string) {
	now := l.clock.Now()
	w.LastUpdatedBy = actor
	w.LastUpdatedAt = &now
}

func triggerFor(source models.WinnerSource) models.EventTrigger {
	if source == models.WinnerSourceDraw {
		return models.TriggerDraw
	}
	return models.TriggerAdmin
}

// excludeUsers returns the refs whose id is not in ids, preserving order.
func excludeUsers(refs []models.UserRef, ids []primitive.ObjectID) []models.UserRef {
	skip := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	out := make([]models.UserRef, 0, len(refs))
	for _, r := range refs {
		if _, ok := skip[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}
