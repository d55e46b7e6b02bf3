package services

import (
	"context"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"github.com/ArowuTest/giveaway-draw-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const recentWinnersLimit = 10

var _ DashboardBuilder = (*DashboardService)(nil)

// DashboardService derives the public dashboard from the stored giveaways, winners
// and purchases on every request.
type DashboardService struct {
	giveawayRepo repositories.GiveawayRepository
	winnerRepo   repositories.WinnerRepository
	purchaseRepo repositories.PurchaseRepository
	userRepo     repositories.UserRepository
	clock        Clock
}

func NewDashboardService(
	giveawayRepo repositories.GiveawayRepository,
	winnerRepo repositories.WinnerRepository,
	purchaseRepo repositories.PurchaseRepository,
	userRepo repositories.UserRepository,
	clock Clock,
) *DashboardService {
	return &DashboardService{
		giveawayRepo: giveawayRepo,
		winnerRepo:   winnerRepo,
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		clock:        clock,
	}
}

func (s *DashboardService) Build(ctx context.Context) (*models.Dashboard, error) {
	now := s.clock.Now()
	dash := &models.Dashboard{GeneratedAt: now, RecentWinners: []models.RecentWinner{}}

	var err error
	if dash.Counts.ActiveGiveaways, err = s.giveawayRepo.CountByStatus(ctx, models.GiveawayStatusActive); err != nil {
		return nil, err
	}
	if dash.Counts.CompletedGiveaways, err = s.giveawayRepo.CountByStatus(ctx, models.GiveawayStatusCompleted); err != nil {
		return nil, err
	}
	if dash.Counts.TotalWinners, err = s.winnerRepo.Count(ctx); err != nil {
		return nil, err
	}
	if dash.Counts.ApprovedPurchases, err = s.purchaseRepo.CountApproved(ctx); err != nil {
		return nil, err
	}
	if dash.ActiveGiveaways, err = s.giveawayRepo.FindActive(ctx, now); err != nil {
		return nil, err
	}

	recent, err := s.winnerRepo.FindRecent(ctx, recentWinnersLimit)
	if err != nil {
		return nil, err
	}
	titles := make(map[primitive.ObjectID]string)
	for _, w := range recent {
		title, ok := titles[w.GiveawayID]
		if !ok {
			// A giveaway may have been deleted after its winners were read.
			if g, err := s.giveawayRepo.FindByID(ctx, w.GiveawayID); err == nil {
				title = g.Title
			}
			titles[w.GiveawayID] = title
		}
		entry := models.RecentWinner{
			GiveawayTitle: title,
			PrizeName:     w.PrizeWon.Name,
			WonAt:         w.WonAt,
		}
		if u, err := s.userRepo.FindByID(ctx, w.UserID); err == nil {
			entry.Name = u.Name
			entry.MaskedPhone = utils.MaskPhone(u.Phone)
		}
		dash.RecentWinners = append(dash.RecentWinners, entry)
	}
	return dash, nil
}
