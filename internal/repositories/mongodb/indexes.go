package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. The unique
// indexes double as correctness guarantees: one customer per phone per tenant,
// one balance row per customer, single-use redemption codes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"tenants": {
			{Keys: bson.D{{Key: "vendorCode", Value: 1}}, Options: unique},
		},
		"vendor_users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"customers": {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "phone", Value: 1}}, Options: unique},
		},
		"balances": {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "customerId", Value: 1}}, Options: unique},
		},
		"points_transactions": {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"purchases": {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "purchaseDate", Value: -1}}},
		},
		"purchase_claims": {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
		},
		"redemptions": {
			{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "code", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
