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

var _ repositories.WinnerRepository = (*WinnerRepository)(nil)

// WinnerRepository implements the repositories.WinnerRepository interface
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) repositories.WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection("winners"),
	}
}

// Create inserts a winner. A second winner for the same user in the same giveaway
// is rejected by the unique (giveawayId, userId) index.
func (r *WinnerRepository) Create(ctx context.Context, winner *models.Winner) error {
	now := time.Now().UTC()
	if winner.ID.IsZero() {
		winner.ID = primitive.NewObjectID()
	}
	if winner.CreatedAt.IsZero() {
		winner.CreatedAt = now
	}
	winner.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, winner); err != nil {
		return translateError("create winner", "winner", err)
	}
	return nil
}

// FindByID finds a winner by ID
func (r *WinnerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Winner, error) {
	var winner models.Winner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&winner)
	if err != nil {
		return nil, translateError("find winner", "winner", err)
	}
	return &winner, nil
}

// FindByGiveawayID returns every winner of a giveaway in allocation order
func (r *WinnerRepository) FindByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID) ([]*models.Winner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "wonAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"giveawayId": giveawayID}, opts)
}

// FindPage returns one page of a giveaway's winners, optionally filtered by delivery status
func (r *WinnerRepository) FindPage(ctx context.Context, filter models.WinnerListFilter) ([]*models.Winner, int64, error) {
	query := bson.M{"giveawayId": filter.GiveawayID}
	if filter.DeliveryStatus != "" {
		query["deliveryStatus"] = filter.DeliveryStatus
	}
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translateError("count winners", "winner", err)
	}
	skip, limit := pageBounds(filter.Page, filter.Limit)
	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "wonAt", Value: -1}, {Key: "_id", Value: -1}})
	winners, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return winners, total, nil
}

// FindRecent returns the most recent winners across all giveaways
func (r *WinnerRepository) FindRecent(ctx context.Context, limit int) ([]*models.Winner, error) {
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "wonAt", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *WinnerRepository) ExistsForUser(ctx context.Context, giveawayID, userID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"giveawayId": giveawayID, "userId": userID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, translateError("check winner", "winner", err)
	}
	return n > 0, nil
}

func (r *WinnerRepository) CountByPrize(ctx context.Context, giveawayID primitive.ObjectID, prizeName string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"giveawayId": giveawayID, "prizeWon.name": prizeName})
	if err != nil {
		return 0, translateError("count prize winners", "winner", err)
	}
	return n, nil
}

func (r *WinnerRepository) UserIDsByGiveaway(ctx context.Context, giveawayID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "userId", bson.M{"giveawayId": giveawayID})
	if err != nil {
		return nil, translateError("list winning users", "winner", err)
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Update replaces a stored winner with the given value
func (r *WinnerRepository) Update(ctx context.Context, winner *models.Winner) error {
	winner.UpdatedAt = time.Now().UTC()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": winner.ID}, winner)
	if err != nil {
		return translateError("update winner", "winner", err)
	}
	if res.MatchedCount == 0 {
		return translateError("update winner", "winner", mongo.ErrNoDocuments)
	}
	return nil
}

// Delete deletes a winner
func (r *WinnerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError("delete winner", "winner", err)
	}
	if res.DeletedCount == 0 {
		return translateError("delete winner", "winner", mongo.ErrNoDocuments)
	}
	return nil
}

func (r *WinnerRepository) DeleteByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"giveawayId": giveawayID})
	if err != nil {
		return 0, translateError("delete giveaway winners", "winner", err)
	}
	return res.DeletedCount, nil
}

// Count returns the total number of winners
func (r *WinnerRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, translateError("count winners", "winner", err)
	}
	return n, nil
}

func (r *WinnerRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.Winner, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, translateError("find winners", "winner", err)
	}
	defer cursor.Close(ctx)

	var winners []*models.Winner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, translateError("decode winners", "winner", err)
	}
	if winners == nil {
		winners = []*models.Winner{}
	}
	return winners, nil
}
