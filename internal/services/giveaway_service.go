package services

import (
	"context"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/metrics"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

var _ GiveawayManager = (*GiveawayService)(nil)

// GiveawayService handles giveaway administration
type GiveawayService struct {
	giveawayRepo repositories.GiveawayRepository
	winnerRepo   repositories.WinnerRepository
	eventRepo    repositories.GiveawayEventRepository
	eligibility  *EligibilityService
	locker       Locker
	events       *EventRecorder
	clock        Clock
}

// NewGiveawayService creates a new GiveawayService
func NewGiveawayService(
	giveawayRepo repositories.GiveawayRepository,
	winnerRepo repositories.WinnerRepository,
	eventRepo repositories.GiveawayEventRepository,
	eligibility *EligibilityService,
	locker Locker,
	events *EventRecorder,
	clock Clock,
) *GiveawayService {
	return &GiveawayService{
		giveawayRepo: giveawayRepo,
		winnerRepo:   winnerRepo,
		eventRepo:    eventRepo,
		eligibility:  eligibility,
		locker:       locker,
		events:       events,
		clock:        clock,
	}
}

// CreateGiveaway validates and stores a new giveaway. New giveaways start as draft
// unless created directly as active.
func (s *GiveawayService) CreateGiveaway(ctx context.Context, giveaway *models.Giveaway, actor string) (*models.Giveaway, error) {
	const op = "create giveaway"

	if giveaway.Status == "" {
		giveaway.Status = models.GiveawayStatusDraft
	}
	if err := giveaway.Validate(); err != nil {
		return nil, err
	}
	if giveaway.Status != models.GiveawayStatusDraft && giveaway.Status != models.GiveawayStatusActive {
		return nil, apperror.Validation(op, "a new giveaway must be draft or active")
	}

	giveaway.ID = primitive.NilObjectID
	giveaway.DrawCompleted = false
	giveaway.DrawCompletedAt = nil
	giveaway.CreatedBy = actor
	giveaway.CreatedAt = s.clock.Now()
	if err := s.giveawayRepo.Create(ctx, giveaway); err != nil {
		return nil, err
	}
	slog.Info("Giveaway created", "giveawayId", giveaway.ID.Hex(), "title", giveaway.Title, "prizes", len(giveaway.Prizes), "admin", actor)
	return giveaway, nil
}

func (s *GiveawayService) GetGiveaway(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error) {
	return s.giveawayRepo.FindByID(ctx, id)
}

func (s *GiveawayService) ListGiveaways(ctx context.Context, filter models.GiveawayListFilter) (*models.GiveawayPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("list giveaways", "unknown status %q", filter.Status)
	}
	filter.Page, filter.Limit = utils.NormalizePagination(filter.Page, filter.Limit)
	giveaways, total, err := s.giveawayRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.GiveawayPage{
		Giveaways: giveaways,
		Total:     total,
		Page:      filter.Page,
		Pages:     utils.TotalPages(total, filter.Limit),
	}, nil
}

// ListActiveGiveaways returns giveaways currently open for entries
func (s *GiveawayService) ListActiveGiveaways(ctx context.Context) ([]*models.Giveaway, error) {
	return s.giveawayRepo.FindActive(ctx, s.clock.Now())
}

// UpdateStatus applies an administrator status change. Once the draw has completed
// the only accepted status is completed.
func (s *GiveawayService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GiveawayStatus, actor string) (*models.Giveaway, error) {
	const op = "update giveaway status"

	if !status.Valid() {
		return nil, apperror.Validation(op, "unknown status %q", status)
	}

	unlock, err := lockGiveaway(ctx, s.locker, op, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	g, err := s.giveawayRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.DrawCompleted && status != models.GiveawayStatusCompleted {
		return nil, apperror.Conflict(op, "status of a drawn giveaway can only be completed")
	}
	if g.Status == status {
		return g, nil
	}

	at := s.clock.Now()
	ok, err := s.giveawayRepo.CompareAndSetStatus(ctx, id, g.Status, status, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict(op, "giveaway status changed concurrently, reload and retry")
	}
	from := g.Status
	g.Status = status
	g.UpdatedAt = at

	metrics.IncLifecycleTransition(string(status), string(models.TriggerAdmin))
	s.events.Record(ctx, models.NewStatusEvent(id, from, status, models.TriggerAdmin, actor, at))
	slog.Info("Giveaway status updated", "giveawayId", id.Hex(), "from", from, "to", status, "admin", actor)
	return g, nil
}

// DeleteGiveaway removes an undrawn giveaway together with any manually selected winners.
func (s *GiveawayService) DeleteGiveaway(ctx context.Context, id primitive.ObjectID, actor string) error {
	const op = "delete giveaway"

	unlock, err := lockGiveaway(ctx, s.locker, op, id)
	if err != nil {
		return err
	}
	defer unlock()

	g, err := s.giveawayRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if g.DrawCompleted {
		return apperror.Conflict(op, "a giveaway cannot be deleted after its draw")
	}
	removed, err := s.winnerRepo.DeleteByGiveawayID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.giveawayRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Giveaway deleted", "giveawayId", id.Hex(), "winnersRemoved", removed, "admin", actor)
	return nil
}

// EligibleParticipants lists the members currently eligible for a giveaway
func (s *GiveawayService) EligibleParticipants(ctx context.Context, id primitive.ObjectID) ([]models.UserRef, error) {
	g, err := s.giveawayRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.eligibility.Evaluate(ctx, g.EligibilityCriteria)
}

func (s *GiveawayService) ListEvents(ctx context.Context, id primitive.ObjectID, limit int) ([]*models.GiveawayEvent, error) {
	if _, err := s.giveawayRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	_, limit = utils.NormalizePagination(1, limit)
	return s.eventRepo.FindByGiveawayID(ctx, id, limit)
}
