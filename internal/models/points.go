package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType classifies a points ledger entry.
type TransactionType string

const (
	TransactionEarned   TransactionType = "earned"
	TransactionRedeemed TransactionType = "redeemed"
	TransactionExpired  TransactionType = "expired"
	TransactionAdjusted TransactionType = "adjusted"
)

// PointsBalance is the cached balance row per (tenant, customer). It is written
// exclusively by the points ledger; currentBalance == totalEarned - totalRedeemed
// and never goes negative.
type PointsBalance struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID       primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	CustomerID     primitive.ObjectID `bson:"customerId" json:"customerId"`
	CurrentBalance int                `bson:"currentBalance" json:"currentBalance"`
	TotalEarned    int                `bson:"totalEarned" json:"totalEarned"`
	TotalRedeemed  int                `bson:"totalRedeemed" json:"totalRedeemed"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PointsTransaction is an immutable, append-only ledger entry. Points is signed:
// positive for credits, negative for debits.
type PointsTransaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID    primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	CustomerID  primitive.ObjectID `bson:"customerId" json:"customerId"`
	Type        TransactionType    `bson:"type" json:"type"`
	Points      int                `bson:"points" json:"points"`
	Description string             `bson:"description" json:"description"`
	Metadata    map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
