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

// Compile-time check to ensure ClaimRepository implements the interface
var _ repositories.ClaimRepository = (*ClaimRepository)(nil)

// ClaimRepository handles MongoDB operations for PurchaseClaim
type ClaimRepository struct {
	collection *mongo.Collection
}

// NewClaimRepository creates a new ClaimRepository
func NewClaimRepository(db *mongo.Database) *ClaimRepository {
	return &ClaimRepository{
		collection: db.Collection("purchase_claims"),
	}
}

// Create inserts a new purchase claim
func (r *ClaimRepository) Create(ctx context.Context, claim *models.PurchaseClaim) error {
	claim.ID = primitive.NewObjectID()
	claim.CreatedAt = time.Now()
	claim.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, claim)
	return translateErr(err)
}

// FindByID finds a claim by ID within a tenant
func (r *ClaimRepository) FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.PurchaseClaim, error) {
	var claim models.PurchaseClaim
	filter := bson.M{"_id": id, "tenantId": tenantID}
	err := r.collection.FindOne(ctx, filter).Decode(&claim)
	if err != nil {
		return nil, translateErr(err)
	}
	return &claim, nil
}

// FindByTenantAndStatus finds claims by status with pagination, newest first.
// An empty status matches all claims.
func (r *ClaimRepository) FindByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.ClaimStatus, page, limit int) ([]*models.PurchaseClaim, error) {
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

	var claims []*models.PurchaseClaim
	if err := cursor.All(ctx, &claims); err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []*models.PurchaseClaim{}
	}
	return claims, nil
}

// CountByTenantAndStatus counts claims by status. An empty status matches all.
func (r *ClaimRepository) CountByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.ClaimStatus) (int64, error) {
	filter := bson.M{"tenantId": tenantID}
	if status != "" {
		filter["status"] = status
	}
	return r.collection.CountDocuments(ctx, filter)
}

// MarkReviewed transitions a pending claim to a terminal review status. The
// pending guard in the filter makes concurrent reviews resolve to exactly one
// winner; the loser matches nothing and gets ErrStateConflict.
func (r *ClaimRepository) MarkReviewed(ctx context.Context, id primitive.ObjectID, status models.ClaimStatus, rejectionReason string, purchaseID primitive.ObjectID, reviewedAt time.Time) error {
	set := bson.M{
		"status":     status,
		"reviewedAt": reviewedAt,
		"updatedAt":  time.Now(),
	}
	if rejectionReason != "" {
		set["rejectionReason"] = rejectionReason
	}
	if !purchaseID.IsZero() {
		set["purchaseId"] = purchaseID
	}

	filter := bson.M{"_id": id, "status": models.ClaimStatusPending}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrStateConflict
	}
	return nil
}

// ExpireDue expires every pending claim whose expiry has passed. Expiry has no
// ledger effect, so a bulk update is safe.
func (r *ClaimRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"status":    models.ClaimStatusPending,
		"expiresAt": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"status":    models.ClaimStatusExpired,
		"updatedAt": now,
	}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// CountReviewedByCustomer counts a customer's reviewed claims and how many of
// those were rejected. Used for the high_rejection_rate fraud heuristic.
func (r *ClaimRepository) CountReviewedByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (int64, int64, error) {
	base := bson.M{
		"tenantId":   tenantID,
		"customerId": customerID,
		"status":     bson.M{"$in": []models.ClaimStatus{models.ClaimStatusApproved, models.ClaimStatusRejected}},
	}
	reviewed, err := r.collection.CountDocuments(ctx, base)
	if err != nil {
		return 0, 0, err
	}

	rejected, err := r.collection.CountDocuments(ctx, bson.M{
		"tenantId":   tenantID,
		"customerId": customerID,
		"status":     models.ClaimStatusRejected,
	})
	if err != nil {
		return 0, 0, err
	}
	return reviewed, rejected, nil
}

// FindByCustomerSince finds a customer's claims submitted after the given time
func (r *ClaimRepository) FindByCustomerSince(ctx context.Context, tenantID, customerID primitive.ObjectID, since time.Time) ([]*models.PurchaseClaim, error) {
	filter := bson.M{
		"tenantId":   tenantID,
		"customerId": customerID,
		"createdAt":  bson.M{"$gte": since},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var claims []*models.PurchaseClaim
	if err := cursor.All(ctx, &claims); err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []*models.PurchaseClaim{}
	}
	return claims, nil
}
