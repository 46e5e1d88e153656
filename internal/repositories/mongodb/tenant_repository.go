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

// Compile-time check to ensure TenantRepository implements the interface
var _ repositories.TenantRepository = (*TenantRepository)(nil)

// TenantRepository handles MongoDB operations for Tenant
type TenantRepository struct {
	collection *mongo.Collection
}

// NewTenantRepository creates a new TenantRepository
func NewTenantRepository(db *mongo.Database) *TenantRepository {
	return &TenantRepository{
		collection: db.Collection("tenants"),
	}
}

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	tenant.ID = primitive.NewObjectID()
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, tenant)
	return translateErr(err)
}

// FindByID finds a tenant by ID, excluding soft-deleted tenants
func (r *TenantRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tenant, error) {
	var tenant models.Tenant
	filter := bson.M{"_id": id, "deletedAt": nil}
	err := r.collection.FindOne(ctx, filter).Decode(&tenant)
	if err != nil {
		return nil, translateErr(err)
	}
	return &tenant, nil
}

// FindByVendorCode finds a tenant by its join code
func (r *TenantRepository) FindByVendorCode(ctx context.Context, vendorCode string) (*models.Tenant, error) {
	var tenant models.Tenant
	filter := bson.M{"vendorCode": vendorCode, "deletedAt": nil}
	err := r.collection.FindOne(ctx, filter).Decode(&tenant)
	if err != nil {
		return nil, translateErr(err)
	}
	return &tenant, nil
}

// Update updates an existing tenant
func (r *TenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now()
	filter := bson.M{"_id": tenant.ID}
	update := bson.M{"$set": tenant}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return translateErr(err)
}
