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

var _ repositories.PurchaseRepository = (*PurchaseRepository)(nil)

// PurchaseRepository implements the repositories.PurchaseRepository interface
type PurchaseRepository struct {
	collection *mongo.Collection
}

// NewPurchaseRepository creates a new PurchaseRepository
func NewPurchaseRepository(db *mongo.Database) repositories.PurchaseRepository {
	return &PurchaseRepository{
		collection: db.Collection("purchases"),
	}
}

// Create records a purchase in the ledger
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	now := time.Now().UTC()
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = now
	}
	purchase.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, purchase)
	if err != nil {
		return translateError("create purchase", "purchase", err)
	}
	purchase.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Query returns the purchases matching the filter. The createdAt window is inclusive.
func (r *PurchaseRepository) Query(ctx context.Context, filter models.PurchaseFilter) ([]*models.Purchase, error) {
	query := purchaseQuery(filter)
	opts := options.Find().
		SetProjection(purchaseProjection(filter)).
		SetSort(bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, translateError("query purchases", "purchase", err)
	}
	defer cursor.Close(ctx)

	var purchases []*models.Purchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, translateError("decode purchases", "purchase", err)
	}
	if purchases == nil {
		purchases = []*models.Purchase{}
	}
	return purchases, nil
}

func (r *PurchaseRepository) CountApproved(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, purchaseQuery(models.PurchaseFilter{ApprovedOnly: true}))
	if err != nil {
		return 0, translateError("count purchases", "purchase", err)
	}
	return n, nil
}

func purchaseProjection(filter models.PurchaseFilter) bson.M {
	projection := bson.M{"userId": 1, "productId": 1, "userPayment": 1, "paymentApproval": 1, "createdAt": 1}
	if filter.WithAmounts {
		projection["amount"] = 1
	}
	return projection
}

func purchaseQuery(filter models.PurchaseFilter) bson.M {
	query := bson.M{}
	if filter.ApprovedOnly {
		query["paymentApproval"] = models.ApprovalStatusCompleted
		query["userPayment"] = models.PaymentStatusPayed
	}
	window := bson.M{}
	if filter.From != nil {
		window["$gte"] = *filter.From
	}
	if filter.To != nil {
		window["$lte"] = *filter.To
	}
	if len(window) > 0 {
		query["createdAt"] = window
	}
	if len(filter.ProductIDs) > 0 {
		query["productId"] = bson.M{"$in": filter.ProductIDs}
	}
	if len(filter.UserIDs) > 0 {
		query["userId"] = bson.M{"$in": filter.UserIDs}
	}
	return query
}
