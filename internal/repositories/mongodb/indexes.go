package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique winner index
// is what makes a second allocation to the same user impossible.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		"winners": {
			{
				Keys:    bson.D{{Key: "giveawayId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_giveaway_user"),
			},
			{Keys: bson.D{{Key: "giveawayId", Value: 1}, {Key: "prizeWon.name", Value: 1}}},
			{Keys: bson.D{{Key: "wonAt", Value: -1}}},
		},
		"giveaways": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startDate", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}}},
		},
		"purchases": {
			{Keys: bson.D{{Key: "paymentApproval", Value: 1}, {Key: "userPayment", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		"users": {
			{Keys: bson.D{{Key: "phone", Value: 1}}},
		},
		"admin_users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"giveaway_events": {
			{Keys: bson.D{{Key: "giveawayId", Value: 1}, {Key: "occurredAt", Value: -1}}},
		},
		"giveaway_locks": {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}
	for collection, models := range specs {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
