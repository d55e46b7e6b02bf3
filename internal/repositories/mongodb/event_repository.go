package mongodb

import (
	"context"

	"github.com/ArowuTest/giveaway-draw-backend/internal/models"
	"github.com/ArowuTest/giveaway-draw-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.GiveawayEventRepository = (*EventRepository)(nil)

type EventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) repositories.GiveawayEventRepository {
	return &EventRepository{
		collection: db.Collection("giveaway_events"),
	}
}

func (r *EventRepository) Create(ctx context.Context, event *models.GiveawayEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, event)
	return translateError("create giveaway event", "giveaway event", err)
}

// FindByGiveawayID returns the newest events of a giveaway first
func (r *EventRepository) FindByGiveawayID(ctx context.Context, giveawayID primitive.ObjectID, limit int) ([]*models.GiveawayEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurredAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := r.collection.Find(ctx, bson.M{"giveawayId": giveawayID}, opts)
	if err != nil {
		return nil, translateError("find giveaway events", "giveaway event", err)
	}
	defer cursor.Close(ctx)

	var events []*models.GiveawayEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, translateError("decode giveaway events", "giveaway event", err)
	}
	if events == nil {
		events = []*models.GiveawayEvent{}
	}
	return events, nil
}
