package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reward is a catalog entry customers can redeem points against. A nil
// StockQuantity or MaxPerCustomer means unlimited.
type Reward struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID       primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	PointsRequired int                `bson:"pointsRequired" json:"pointsRequired"`
	ValueMinor     int64              `bson:"valueMinor" json:"valueMinor"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	StockQuantity  *int               `bson:"stockQuantity,omitempty" json:"stockQuantity,omitempty"`
	MaxPerCustomer *int               `bson:"maxPerCustomer,omitempty" json:"maxPerCustomer,omitempty"`
	ValidFrom      *time.Time         `bson:"validFrom,omitempty" json:"validFrom,omitempty"`
	ValidUntil     *time.Time         `bson:"validUntil,omitempty" json:"validUntil,omitempty"`
	Terms          string             `bson:"terms,omitempty" json:"terms,omitempty"`
	DeletedAt      *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasFiniteStock reports whether redemptions consume stock.
func (r *Reward) HasFiniteStock() bool {
	return r.StockQuantity != nil
}
