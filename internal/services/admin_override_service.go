package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/apperror"
	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
)

var _ OverrideManager = (*AdminOverrideService)(nil)

// AdminOverrideService lets an administrator hand a prize slot to a chosen member.
type AdminOverrideService struct {
	giveawayRepo repositories.GiveawayRepository
	userRepo     repositories.UserRepository
	ledger       *WinnerLedger
	clock        Clock
}

// NewAdminOverrideService creates a new AdminOverrideService
func NewAdminOverrideService(giveawayRepo repositories.GiveawayRepository, userRepo repositories.UserRepository, ledger *WinnerLedger, clock Clock) *AdminOverrideService {
	return &AdminOverrideService{
		giveawayRepo: giveawayRepo,
		userRepo:     userRepo,
		ledger:       ledger,
		clock:        clock,
	}
}

// ManualSelect records req.UserID as a winner of the prize at req.PrizeIndex. The
// selection is annotated with the admin id and time for audit.
func (s *AdminOverrideService) ManualSelect(ctx context.Context, req models.ManualSelectRequest) (*models.Winner, error) {
	const op = "manual select"

	if req.UserID.IsZero() {
		return nil, apperror.Validation(op, "userId is required")
	}
	if strings.TrimSpace(req.AdminID) == "" {
		return nil, apperror.Validation(op, "admin id is required")
	}

	g, err := s.giveawayRepo.FindByID(ctx, req.GiveawayID)
	if err != nil {
		return nil, err
	}
	if req.PrizeIndex < 0 || req.PrizeIndex >= len(g.Prizes) {
		return nil, apperror.Validation(op, "prize index %d is out of range", req.PrizeIndex)
	}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("manually selected by admin %s at %s", req.AdminID, s.clock.Now().Format(time.RFC3339))
	return s.ledger.ManualAdd(ctx, ManualAddRequest{
		GiveawayID:           g.ID,
		User:                 user.Ref(),
		PrizeIndex:           req.PrizeIndex,
		SkipEligibilityCheck: req.SkipEligibilityCheck,
		Actor:                req.AdminID,
		Notes:                note,
	})
}
