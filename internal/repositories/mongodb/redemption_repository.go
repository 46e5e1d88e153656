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

// Compile-time check to ensure RedemptionRepository implements the interface
var _ repositories.RedemptionRepository = (*RedemptionRepository)(nil)

// RedemptionRepository handles MongoDB operations for Redemption
type RedemptionRepository struct {
	collection *mongo.Collection
}

// NewRedemptionRepository creates a new RedemptionRepository
func NewRedemptionRepository(db *mongo.Database) *RedemptionRepository {
	return &RedemptionRepository{
		collection: db.Collection("redemptions"),
	}
}

// Create inserts a new redemption. The unique index on code reports collisions
// as ErrDuplicateKey.
func (r *RedemptionRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	redemption.ID = primitive.NewObjectID()
	redemption.CreatedAt = time.Now()
	redemption.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, redemption)
	return translateErr(err)
}

// FindByID finds a redemption by ID within a tenant
func (r *RedemptionRepository) FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Redemption, error) {
	var redemption models.Redemption
	filter := bson.M{"_id": id, "tenantId": tenantID}
	err := r.collection.FindOne(ctx, filter).Decode(&redemption)
	if err != nil {
		return nil, translateErr(err)
	}
	return &redemption, nil
}

// FindByCode finds a redemption by its code within a tenant
func (r *RedemptionRepository) FindByCode(ctx context.Context, tenantID primitive.ObjectID, code string) (*models.Redemption, error) {
	var redemption models.Redemption
	filter := bson.M{"tenantId": tenantID, "code": code}
	err := r.collection.FindOne(ctx, filter).Decode(&redemption)
	if err != nil {
		return nil, translateErr(err)
	}
	return &redemption, nil
}

// FindByTenantAndStatus finds redemptions by status with pagination, newest
// first. An empty status matches all redemptions.
func (r *RedemptionRepository) FindByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus, page, limit int) ([]*models.Redemption, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	filter := bson.M{"tenantId": tenantID}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var redemptions []*models.Redemption
	if err := cursor.All(ctx, &redemptions); err != nil {
		return nil, err
	}
	if redemptions == nil {
		redemptions = []*models.Redemption{}
	}
	return redemptions, nil
}

// CountByTenantAndStatus counts redemptions by status. An empty status matches all.
func (r *RedemptionRepository) CountByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus) (int64, error) {
	filter := bson.M{"tenantId": tenantID}
	if status != "" {
		filter["status"] = status
	}
	return r.collection.CountDocuments(ctx, filter)
}

// CountByCustomerAndReward counts a customer's redemptions of a reward in the
// given statuses. Used to enforce the per-customer redemption cap.
func (r *RedemptionRepository) CountByCustomerAndReward(ctx context.Context, customerID, rewardID primitive.ObjectID, statuses []models.RedemptionStatus) (int64, error) {
	filter := bson.M{
		"customerId": customerID,
		"rewardId":   rewardID,
		"status":     bson.M{"$in": statuses},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// MarkFulfilled transitions pending -> fulfilled. The pending guard makes the
// transition single-winner under concurrent requests.
func (r *RedemptionRepository) MarkFulfilled(ctx context.Context, id primitive.ObjectID, notes string, at time.Time) error {
	set := bson.M{
		"status":      models.RedemptionStatusFulfilled,
		"fulfilledAt": at,
		"updatedAt":   time.Now(),
	}
	if notes != "" {
		set["notes"] = notes
	}

	filter := bson.M{"_id": id, "status": models.RedemptionStatusPending}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrStateConflict
	}
	return nil
}

// MarkClosed transitions pending -> cancelled or expired
func (r *RedemptionRepository) MarkClosed(ctx context.Context, id primitive.ObjectID, status models.RedemptionStatus, reason string, at time.Time) error {
	set := bson.M{
		"status":      status,
		"cancelledAt": at,
		"updatedAt":   time.Now(),
	}
	if reason != "" {
		set["cancelReason"] = reason
	}

	filter := bson.M{"_id": id, "status": models.RedemptionStatusPending}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrStateConflict
	}
	return nil
}

// FindDueForExpiry finds pending redemptions whose expiry has passed. Each one
// needs an individual refund, so this returns documents rather than bulk-updating.
func (r *RedemptionRepository) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*models.Redemption, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(bson.M{"expiresAt": 1})
	filter := bson.M{
		"status":    models.RedemptionStatusPending,
		"expiresAt": bson.M{"$lte": now},
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var redemptions []*models.Redemption
	if err := cursor.All(ctx, &redemptions); err != nil {
		return nil, err
	}
	if redemptions == nil {
		redemptions = []*models.Redemption{}
	}
	return redemptions, nil
}
