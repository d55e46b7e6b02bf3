package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.GiveawayRepository = (*GiveawayRepository)(nil)

// GiveawayRepository implements the repositories.GiveawayRepository interface
type GiveawayRepository struct {
	collection *mongo.Collection
}

// NewGiveawayRepository creates a new GiveawayRepository
func NewGiveawayRepository(db *mongo.Database) repositories.GiveawayRepository {
	return &GiveawayRepository{
		collection: db.Collection("giveaways"),
	}
}

// Create creates a new giveaway
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	now := time.Now().UTC()
	if giveaway.CreatedAt.IsZero() {
		giveaway.CreatedAt = now
	}
	giveaway.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, giveaway)
	if err != nil {
		return translateError("create giveaway", "giveaway", err)
	}
	giveaway.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a giveaway by ID
func (r *GiveawayRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Giveaway, error) {
	var giveaway models.Giveaway
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&giveaway)
	if err != nil {
		return nil, translateError("find giveaway", "giveaway", err)
	}
	return &giveaway, nil
}

// FindAll lists giveaways newest first, optionally filtered by status
func (r *GiveawayRepository) FindAll(ctx context.Context, filter models.GiveawayListFilter) ([]*models.Giveaway, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translateError("count giveaways", "giveaway", err)
	}

	skip, limit := pageBounds(filter.Page, filter.Limit)
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	giveaways, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return giveaways, total, nil
}

// FindActive lists active giveaways whose entry window contains now
func (r *GiveawayRepository) FindActive(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	query := bson.M{
		"status":    models.GiveawayStatusActive,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}}))
}

func (r *GiveawayRepository) FindDueForActivation(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	query := bson.M{
		"status":    models.GiveawayStatusDraft,
		"startDate": bson.M{"$lte": now},
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}}))
}

func (r *GiveawayRepository) FindDueForCompletion(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	query := bson.M{
		"status":  models.GiveawayStatusActive,
		"endDate": bson.M{"$lte": now},
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}}))
}

func (r *GiveawayRepository) CompareAndSetStatus(ctx context.Context, id primitive.ObjectID, from, to models.GiveawayStatus, at time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": at}},
	)
	if err != nil {
		return false, translateError("update giveaway status", "giveaway", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *GiveawayRepository) ClaimDraw(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "drawCompleted": false},
		bson.M{"$set": bson.M{
			"drawCompleted":   true,
			"drawCompletedAt": at,
			"status":          models.GiveawayStatusCompleted,
			"updatedAt":       at,
		}},
	)
	if err != nil {
		return false, translateError("claim draw", "giveaway", err)
	}
	return res.ModifiedCount == 1, nil
}

// Delete deletes a giveaway
func (r *GiveawayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError("delete giveaway", "giveaway", err)
	}
	if res.DeletedCount == 0 {
		return translateError("delete giveaway", "giveaway", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *GiveawayRepository) CountByStatus(ctx context.Context, status models.GiveawayStatus) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, translateError("count giveaways", "giveaway", err)
	}
	return n, nil
}

func (r *GiveawayRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.Giveaway, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, translateError("find giveaways", "giveaway", err)
	}
	defer cursor.Close(ctx)

	var giveaways []*models.Giveaway
	if err := cursor.All(ctx, &giveaways); err != nil {
		return nil, translateError("decode giveaways", "giveaway", err)
	}
	if giveaways == nil {
		giveaways = []*models.Giveaway{}
	}
	return giveaways, nil
}
