package repositories

import (
	"context"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GiveawayRepository defines the interface for giveaway data operations
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error)
	FindAll(ctx context.Context, filter models.GiveawayListFilter) ([]*models.Giveaway, int64, error)
	FindActive(ctx context.Context, now time.Time) ([]*models.Giveaway, error)
	// FindDueForActivation returns drafts whose startDate has been reached.
	FindDueForActivation(ctx context.Context, now time.Time) ([]*models.Giveaway, error)
	// FindDueForCompletion returns active giveaways whose endDate has been reached.
	FindDueForCompletion(ctx context.Context, now time.Time) ([]*models.Giveaway, error)
	// CompareAndSetStatus moves a giveaway from one status to another. It reports
	// false when the stored status no longer equals from.
	CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.GiveawayStatus, at time.Time) (bool, error)
	// ClaimDraw atomically flips drawCompleted from false to true and marks the
	// giveaway completed. It reports false when another caller already claimed it.
	ClaimDraw(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context, status models.GiveawayStatus) (int64, error)
}

// WinnerRepository defines the interface for winner data operations
type WinnerRepository interface {
	Create(ctx context.Context, winner *models.Winner) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Winner, error)
	FindByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Winner, error)
	FindPage(ctx context.Context, filter models.WinnerListFilter) ([]*models.Winner, int64, error)
	FindRecent(ctx context.Context, limit int) ([]*models.Winner, error)
	ExistsForUser(ctx context.Context, giveawayID, userID primitive.ObjectID) (bool, error)
	CountByPrize(ctx context.Context, giveawayID primitive.ObjectID, prizeName string) (int64, error)
	UserIDsByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) ([]primitive.ObjectID, error)
	Update(ctx context.Context, winner *models.Winner) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// PurchaseRepository defines the interface for purchase ledger operations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	Query(ctx context.Context, filter models.PurchaseFilter) ([]*models.Purchase, error)
	CountApproved(ctx context.Context) (int64, error)
}

// UserRepository defines the interface for member directory operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindQualified(ctx context.Context, filter models.UserFilter) ([]*models.User, error)
}

// AdminUserRepository defines the interface for admin account operations
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

// GiveawayEventRepository defines the interface for the giveaway event log
type GiveawayEventRepository interface {
	Create(ctx context.Context, event *models.GiveawayEvent) error
	FindByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID, limit int) ([]*models.GiveawayEvent, error)
}
