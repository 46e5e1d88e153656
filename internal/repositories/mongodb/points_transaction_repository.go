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

// Compile-time check to ensure PointsTransactionRepository implements the interface
var _ repositories.PointsTransactionRepository = (*PointsTransactionRepository)(nil)

// PointsTransactionRepository handles MongoDB operations for the append-only
// points ledger. Entries are never updated or deleted.
type PointsTransactionRepository struct {
	collection *mongo.Collection
}

// NewPointsTransactionRepository creates a new PointsTransactionRepository
func NewPointsTransactionRepository(db *mongo.Database) *PointsTransactionRepository {
	return &PointsTransactionRepository{
		collection: db.Collection("points_transactions"),
	}
}

// Create appends a ledger entry
func (r *PointsTransactionRepository) Create(ctx context.Context, transaction *models.PointsTransaction) error {
	transaction.ID = primitive.NewObjectID()
	transaction.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, transaction)
	return translateErr(err)
}

// FindByCustomer finds ledger entries for a customer, newest first, with pagination
func (r *PointsTransactionRepository) FindByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID, page, limit int) ([]*models.PointsTransaction, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	filter := bson.M{"tenantId": tenantID, "customerId": customerID}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var transactions []*models.PointsTransaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*models.PointsTransaction{}
	}
	return transactions, nil
}

// CountByCustomer counts ledger entries for a customer
func (r *PointsTransactionRepository) CountByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID, "customerId": customerID})
}
