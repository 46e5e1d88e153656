package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimStatus is the review state of a purchase claim.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
	ClaimStatusExpired  ClaimStatus = "expired"
)

// FraudFlag is an advisory risk indicator attached to a claim. Flags warn the
// reviewing vendor; they never block approval.
type FraudFlag string

const (
	FlagHighAmount        FraudFlag = "high_amount"
	FlagNewCustomer       FraudFlag = "new_customer"
	FlagNoReceipt         FraudFlag = "no_receipt"
	FlagHighRejectionRate FraudFlag = "high_rejection_rate"
	FlagRepeatedAmount    FraudFlag = "repeated_amount"
)

// PurchaseClaim is a customer self-reported purchase awaiting vendor review.
// Lifecycle: pending -> approved | rejected, or expired once expiresAt passes.
type PurchaseClaim struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID        primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	CustomerID      primitive.ObjectID `bson:"customerId" json:"customerId"`
	AmountMinor     int64              `bson:"amountMinor" json:"amountMinor"`
	Channel         string             `bson:"channel,omitempty" json:"channel,omitempty"`
	ReceiptURL      string             `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	FraudFlags      []FraudFlag        `bson:"fraudFlags,omitempty" json:"fraudFlags,omitempty"`
	Status          ClaimStatus        `bson:"status" json:"status"`
	RejectionReason string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	PurchaseID      primitive.ObjectID `bson:"purchaseId,omitempty" json:"purchaseId,omitempty"`
	ExpiresAt       time.Time          `bson:"expiresAt" json:"expiresAt"`
	ReviewedAt      *time.Time         `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
