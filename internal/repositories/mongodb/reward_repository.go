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

// Compile-time check to ensure RewardRepository implements the interface
var _ repositories.RewardRepository = (*RewardRepository)(nil)

// RewardRepository handles MongoDB operations for Reward
type RewardRepository struct {
	collection *mongo.Collection
}

// NewRewardRepository creates a new RewardRepository
func NewRewardRepository(db *mongo.Database) *RewardRepository {
	return &RewardRepository{
		collection: db.Collection("rewards"),
	}
}

// Create inserts a new reward
func (r *RewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	reward.ID = primitive.NewObjectID()
	reward.CreatedAt = time.Now()
	reward.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, reward)
	return translateErr(err)
}

// FindByID finds a reward by ID within a tenant, excluding soft-deleted rewards
func (r *RewardRepository) FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Reward, error) {
	var reward models.Reward
	filter := bson.M{"_id": id, "tenantId": tenantID, "deletedAt": nil}
	err := r.collection.FindOne(ctx, filter).Decode(&reward)
	if err != nil {
		return nil, translateErr(err)
	}
	return &reward, nil
}

// FindByTenant finds rewards for a tenant with pagination
func (r *RewardRepository) FindByTenant(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Reward, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID, "deletedAt": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rewards []*models.Reward
	if err := cursor.All(ctx, &rewards); err != nil {
		return nil, err
	}
	if rewards == nil {
		rewards = []*models.Reward{}
	}
	return rewards, nil
}

// Count counts rewards for a tenant
func (r *RewardRepository) Count(ctx context.Context, tenantID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID, "deletedAt": nil})
}

// Update updates an existing reward
func (r *RewardRepository) Update(ctx context.Context, reward *models.Reward) error {
	reward.UpdatedAt = time.Now()
	filter := bson.M{"_id": reward.ID, "tenantId": reward.TenantID}
	update := bson.M{"$set": reward}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// SoftDelete marks a reward as deleted without removing it
func (r *RewardRepository) SoftDelete(ctx context.Context, tenantID, id primitive.ObjectID) error {
	now := time.Now()
	filter := bson.M{"_id": id, "tenantId": tenantID, "deletedAt": nil}
	update := bson.M{"$set": bson.M{"deletedAt": now, "updatedAt": now}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// DecrementStock atomically reserves one unit of finite stock. The stock > 0
// guard means concurrent redemptions can never oversell: the losing request
// matches nothing and gets ErrStockDepleted.
func (r *RewardRepository) DecrementStock(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "stockQuantity": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"stockQuantity": -1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrStockDepleted
	}
	return nil
}

// IncrementStock returns one unit of finite stock after a cancellation or
// expiry. No-op for unlimited-stock rewards.
func (r *RewardRepository) IncrementStock(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "stockQuantity": bson.M{"$ne": nil}}
	update := bson.M{
		"$inc": bson.M{"stockQuantity": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return translateErr(err)
}
