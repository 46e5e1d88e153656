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

// Compile-time check to ensure VendorUserRepository implements the interface
var _ repositories.VendorUserRepository = (*VendorUserRepository)(nil)

// VendorUserRepository handles MongoDB operations for VendorUser
type VendorUserRepository struct {
	collection *mongo.Collection
}

// NewVendorUserRepository creates a new VendorUserRepository
func NewVendorUserRepository(db *mongo.Database) *VendorUserRepository {
	return &VendorUserRepository{
		collection: db.Collection("vendor_users"),
	}
}

// Create inserts a new vendor user
func (r *VendorUserRepository) Create(ctx context.Context, user *models.VendorUser) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	return translateErr(err)
}

// FindByEmail finds a vendor user by email
func (r *VendorUserRepository) FindByEmail(ctx context.Context, email string) (*models.VendorUser, error) {
	var user models.VendorUser
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// FindByID finds a vendor user by ID
func (r *VendorUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorUser, error) {
	var user models.VendorUser
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}
