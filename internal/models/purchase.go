package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseSource records how a purchase entered the system.
type PurchaseSource string

const (
	PurchaseSourceVendor PurchaseSource = "vendor"
	PurchaseSourceClaim  PurchaseSource = "claim"
)

// Purchase is a vendor-confirmed transaction. Immutable once created; ledger
// entries reference it by id.
type Purchase struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID      primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	AmountMinor   int64              `bson:"amountMinor" json:"amountMinor"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Channel       string             `bson:"channel,omitempty" json:"channel,omitempty"`
	PurchaseDate  time.Time          `bson:"purchaseDate" json:"purchaseDate"`
	PointsAwarded int                `bson:"pointsAwarded" json:"pointsAwarded"`
	Source        PurchaseSource     `bson:"source" json:"source"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
