package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedemptionStatus is the state of a redemption reservation.
type RedemptionStatus string

const (
	RedemptionStatusPending   RedemptionStatus = "pending"
	RedemptionStatusFulfilled RedemptionStatus = "fulfilled"
	RedemptionStatusCancelled RedemptionStatus = "cancelled"
	RedemptionStatusExpired   RedemptionStatus = "expired"
)

// Redemption is a reservation against a reward. Points are debited when the
// redemption is created; fulfillment is terminal with no further ledger effect,
// while cancellation and expiry refund the debit.
type Redemption struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID      primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	RewardID      primitive.ObjectID `bson:"rewardId" json:"rewardId"`
	CustomerID    primitive.ObjectID `bson:"customerId" json:"customerId"`
	Code          string             `bson:"code" json:"code"`
	PointsUsed    int                `bson:"pointsUsed" json:"pointsUsed"`
	Status        RedemptionStatus   `bson:"status" json:"status"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelReason  string             `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	StockReserved bool               `bson:"stockReserved" json:"-"`
	ExpiresAt     time.Time          `bson:"expiresAt" json:"expiresAt"`
	FulfilledAt   *time.Time         `bson:"fulfilledAt,omitempty" json:"fulfilledAt,omitempty"`
	CancelledAt   *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
