package mongodb

import (
	"context"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure PurchaseRepository implements the interface
var _ repositories.PurchaseRepository = (*PurchaseRepository)(nil)

// PurchaseRepository handles MongoDB operations for Purchase
type PurchaseRepository struct {
	collection *mongo.Collection
}

// NewPurchaseRepository creates a new PurchaseRepository
func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	return &PurchaseRepository{
		collection: db.Collection("purchases"),
	}
}

// Create inserts a new purchase. Callers may pre-assign the id so other
// documents can link to the purchase before it exists.
func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	if purchase.ID.IsZero() {
		purchase.ID = primitive.NewObjectID()
	}
	purchase.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, purchase)
	return translateErr(err)
}

// FindByID finds a purchase by ID within a tenant
func (r *PurchaseRepository) FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Purchase, error) {
	var purchase models.Purchase
	filter := bson.M{"_id": id, "tenantId": tenantID}
	err := r.collection.FindOne(ctx, filter).Decode(&purchase)
	if err != nil {
		return nil, translateErr(err)
	}
	return &purchase, nil
}

// FindByTenant finds purchases for a tenant with pagination, newest first
func (r *PurchaseRepository) FindByTenant(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Purchase, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"purchaseDate": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var purchases []*models.Purchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []*models.Purchase{}
	}
	return purchases, nil
}

// Count counts purchases for a tenant
func (r *PurchaseRepository) Count(ctx context.Context, tenantID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID})
}

// AverageAmountByCustomer computes the customer's mean purchase amount in
// minor units. Returns 0 when the customer has no purchase history.
func (r *PurchaseRepository) AverageAmountByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tenantId": tenantID, "customerId": customerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"avgAmount": bson.M{"$avg": "$amountMinor"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgAmount float64 `bson:"avgAmount"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return int64(results[0].AvgAmount), nil
}
