package mongodb

import (
	"context"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure BalanceRepository implements the interface
var _ repositories.BalanceRepository = (*BalanceRepository)(nil)

// BalanceRepository handles MongoDB operations for PointsBalance
type BalanceRepository struct {
	collection *mongo.Collection
}

// NewBalanceRepository creates a new BalanceRepository
func NewBalanceRepository(db *mongo.Database) *BalanceRepository {
	return &BalanceRepository{
		collection: db.Collection("balances"),
	}
}

// Create inserts the balance row for a newly enrolled customer
func (r *BalanceRepository) Create(ctx context.Context, balance *models.PointsBalance) error {
	balance.ID = primitive.NewObjectID()
	balance.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, balance)
	return translateErr(err)
}

// FindByCustomer finds the balance row for a customer
func (r *BalanceRepository) FindByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (*models.PointsBalance, error) {
	var balance models.PointsBalance
	filter := bson.M{"tenantId": tenantID, "customerId": customerID}
	err := r.collection.FindOne(ctx, filter).Decode(&balance)
	if err != nil {
		return nil, translateErr(err)
	}
	return &balance, nil
}

// ApplyDelta atomically applies a signed points delta to the cached balance.
// Debits carry a currentBalance >= -delta guard in the filter, so of two
// concurrent debits that both fit individually but not together, exactly one
// matches and the other gets ErrInsufficientBalance.
func (r *BalanceRepository) ApplyDelta(ctx context.Context, tenantID, customerID primitive.ObjectID, delta int) error {
	filter := bson.M{"tenantId": tenantID, "customerId": customerID}
	inc := bson.M{"currentBalance": delta}
	if delta >= 0 {
		inc["totalEarned"] = delta
	} else {
		inc["totalRedeemed"] = -delta
		filter["currentBalance"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		if delta < 0 {
			// Distinguish a missing balance row from a guard miss.
			count, err := r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID, "customerId": customerID})
			if err != nil {
				return err
			}
			if count > 0 {
				return repositories.ErrInsufficientBalance
			}
		}
		return repositories.ErrNotFound
	}
	return nil
}
