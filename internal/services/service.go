package services

import (
	"context"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseLedger is the read side of the purchase ledger used for eligibility
type PurchaseLedger interface {
	Query(ctx context.Context, filter models.PurchaseFilter) ([]*models.Purchase, error)
}

// UserDirectory resolves members by id and status
type UserDirectory interface {
	FindQualified(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// GiveawayManager defines giveaway administration operations
type GiveawayManager interface {
	CreateGiveaway(ctx context.Context, giveaway *models.Giveaway, actor string) (*models.Giveaway, error)
	GetGiveaway(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error)
	ListGiveaways(ctx context.Context, filter models.GiveawayListFilter) (*models.GiveawayPage, error)
	ListActiveGiveaways(ctx context.Context) ([]*models.Giveaway, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GiveawayStatus, actor string) (*models.Giveaway, error)
	DeleteGiveaway(ctx context.Context, id primitive.ObjectID, actor string) error
	EligibleParticipants(ctx context.Context, id primitive.ObjectID) ([]models.UserRef, error)
	ListEvents(ctx context.Context, id primitive.ObjectID, limit int) ([]*models.GiveawayEvent, error)
}

// DrawRunner executes the one-shot draw of a giveaway
type DrawRunner interface {
	Draw(ctx context.Context, giveawayID primitive.ObjectID, actor string) (*models.DrawResult, error)
}

// WinnerManager defines winner administration operations
type WinnerManager interface {
	ListWinners(ctx context.Context, filter models.WinnerListFilter) (*models.WinnerPage, error)
	GetWinner(ctx context.Context, id primitive.ObjectID) (*models.Winner, error)
	RemainingCapacity(ctx context.Context, giveawayID primitive.ObjectID) ([]models.PrizeCapacity, error)
	UpdateMetadata(ctx context.Context, id primitive.ObjectID, update models.WinnerUpdate, actor string) (*models.Winner, error)
	UpdatePrize(ctx context.Context, id primitive.ObjectID, prizeIndex int, actor string) (*models.Winner, error)
	Replace(ctx context.Context, id primitive.ObjectID, actor string) (*models.ReplaceResult, error)
	Remove(ctx context.Context, id primitive.ObjectID, actor string) error
}

// OverrideManager places a chosen member on a prize tier
type OverrideManager interface {
	ManualSelect(ctx context.Context, req models.ManualSelectRequest) (*models.Winner, error)
}

// DashboardBuilder builds the public dashboard read model
type DashboardBuilder interface {
	Build(ctx context.Context) (*models.Dashboard, error)
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}
