package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationStatus is the delivery state of an outbound WhatsApp message.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is an outbox record for a customer-facing WhatsApp message.
// The record is written before the send is attempted so delivery failures never
// roll back the business mutation that triggered it.
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TenantID   primitive.ObjectID `bson:"tenantId" json:"tenantId"`
	CustomerID primitive.ObjectID `bson:"customerId" json:"customerId"`
	Phone      string             `bson:"phone" json:"phone"`
	Body       string             `bson:"body" json:"body"`
	Status     NotificationStatus `bson:"status" json:"status"`
	MessageID  string             `bson:"messageId,omitempty" json:"messageId,omitempty"`
	Error      string             `bson:"error,omitempty" json:"error,omitempty"`
	SentAt     *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
