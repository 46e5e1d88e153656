package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoyaltyStatus is a customer's standing in the loyalty program.
type LoyaltyStatus string

const (
	LoyaltyStatusActive  LoyaltyStatus = "active"
	LoyaltyStatusBlocked LoyaltyStatus = "blocked"
)

// Customer represents a loyalty member scoped to a single tenant. Phone numbers
// are unique per tenant.
type Customer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID    primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	Phone       string             `bson:"phone" json:"phone"`
	FirstName   string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	OptedIn     bool               `bson:"optedIn" json:"optedIn"`
	OptInDate   time.Time          `bson:"optInDate,omitempty" json:"optInDate,omitempty"`
	Status      LoyaltyStatus      `bson:"status" json:"status"`
	BlockReason string             `bson:"blockReason,omitempty" json:"blockReason,omitempty"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CanAccruePoints reports whether earn transactions may be recorded for the
// customer. Blocked customers still get purchase records, but zero points.
func (c *Customer) CanAccruePoints() bool {
	return c.Status != LoyaltyStatusBlocked
}
