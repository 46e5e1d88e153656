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

// Compile-time check to ensure CustomerRepository implements the interface
var _ repositories.CustomerRepository = (*CustomerRepository)(nil)

// CustomerRepository handles MongoDB operations for Customer
type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{
		collection: db.Collection("customers"),
	}
}

// Create inserts a new customer. The unique (tenantId, phone) index rejects
// duplicate enrollments.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	customer.ID = primitive.NewObjectID()
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, customer)
	return translateErr(err)
}

// FindByID finds a customer by ID within a tenant
func (r *CustomerRepository) FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Customer, error) {
	var customer models.Customer
	filter := bson.M{"_id": id, "tenantId": tenantID, "deletedAt": nil}
	err := r.collection.FindOne(ctx, filter).Decode(&customer)
	if err != nil {
		return nil, translateErr(err)
	}
	return &customer, nil
}

// FindByPhone finds a customer by phone number within a tenant
func (r *CustomerRepository) FindByPhone(ctx context.Context, tenantID primitive.ObjectID, phone string) (*models.Customer, error) {
	var customer models.Customer
	filter := bson.M{"tenantId": tenantID, "phone": phone, "deletedAt": nil}
	err := r.collection.FindOne(ctx, filter).Decode(&customer)
	if err != nil {
		return nil, translateErr(err)
	}
	return &customer, nil
}

// FindByTenant finds customers for a tenant with pagination
func (r *CustomerRepository) FindByTenant(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Customer, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID, "deletedAt": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var customers []*models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return customers, nil
}

// Count counts customers for a tenant
func (r *CustomerRepository) Count(ctx context.Context, tenantID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID, "deletedAt": nil})
}

// Update updates an existing customer
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now()
	filter := bson.M{"_id": customer.ID}
	update := bson.M{"$set": customer}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return translateErr(err)
}

// SetBlocked sets or clears the customer's blocked status. Past ledger entries
// are untouched; the gate only affects future accrual.
func (r *CustomerRepository) SetBlocked(ctx context.Context, tenantID, id primitive.ObjectID, blocked bool, reason string) error {
	status := models.LoyaltyStatusActive
	if blocked {
		status = models.LoyaltyStatusBlocked
	} else {
		reason = ""
	}
	filter := bson.M{"_id": id, "tenantId": tenantID, "deletedAt": nil}
	update := bson.M{"$set": bson.M{
		"status":      status,
		"blockReason": reason,
		"updatedAt":   time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateErr(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
