package services

import (
	"context"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LedgerService is the points ledger: the only writer of balances and
// transactions. All mutations for a customer are serialized and the balance
// never goes negative.
type LedgerService interface {
	Record(ctx context.Context, tenantID, customerID primitive.ObjectID, transactionType models.TransactionType, points int, description string, metadata map[string]string) (*models.PointsTransaction, error)
	GetBalance(ctx context.Context, tenantID, customerID primitive.ObjectID) (*models.PointsBalance, error)
	ListTransactions(ctx context.Context, tenantID, customerID primitive.ObjectID, page, limit int) ([]*models.PointsTransaction, int64, error)
}

// EnrollCustomerInput creates a loyalty member.
type EnrollCustomerInput struct {
	Phone     string
	FirstName string
	LastName  string
	OptedIn   bool
}

// CustomerService manages loyalty members and vendor-side point adjustments.
type CustomerService interface {
	Enroll(ctx context.Context, tenantID primitive.ObjectID, input EnrollCustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, customerID primitive.ObjectID) (*models.Customer, error)
	List(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Customer, int64, error)
	SetBlocked(ctx context.Context, tenantID, customerID primitive.ObjectID, blocked bool, reason string) (*models.Customer, error)
	AdjustPoints(ctx context.Context, tenantID, customerID primitive.ObjectID, points int, adjustmentType, description string) (*models.PointsTransaction, error)
}

// LogPurchaseInput records a vendor-confirmed sale.
type LogPurchaseInput struct {
	CustomerID   primitive.ObjectID
	AmountMinor  int64
	Description  string
	Channel      string
	PurchaseDate time.Time
}

// PurchaseService logs vendor-confirmed purchases and serves purchase history.
type PurchaseService interface {
	Log(ctx context.Context, tenantID primitive.ObjectID, input LogPurchaseInput) (*models.Purchase, error)
	List(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Purchase, int64, error)
}

// SubmitClaimInput is a customer-submitted, unverified purchase.
type SubmitClaimInput struct {
	CustomerID  primitive.ObjectID
	AmountMinor int64
	Channel     string
	ReceiptURL  string
	Description string
}

// ClaimService runs the purchase-claim state machine: fraud scoring on
// submission, vendor review, expiry.
type ClaimService interface {
	Submit(ctx context.Context, tenantID primitive.ObjectID, input SubmitClaimInput) (*models.PurchaseClaim, error)
	Review(ctx context.Context, tenantID, claimID primitive.ObjectID, action, rejectionReason string) (*models.PurchaseClaim, error)
	ListByStatus(ctx context.Context, tenantID primitive.ObjectID, status models.ClaimStatus, page, limit int) ([]*models.PurchaseClaim, int64, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// RedemptionService reserves points against rewards and drives redemptions
// through their lifecycle.
type RedemptionService interface {
	Redeem(ctx context.Context, tenantID, customerID, rewardID primitive.ObjectID) (*models.Redemption, error)
	Verify(ctx context.Context, tenantID primitive.ObjectID, code string) (*models.Redemption, error)
	Fulfill(ctx context.Context, tenantID, redemptionID primitive.ObjectID, notes string) (*models.Redemption, error)
	Cancel(ctx context.Context, tenantID, redemptionID primitive.ObjectID, reason string) (*models.Redemption, error)
	ListByStatus(ctx context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus, page, limit int) ([]*models.Redemption, int64, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// RewardInput carries the writable fields of a catalog entry.
type RewardInput struct {
	Name           string
	Description    string
	PointsRequired int
	ValueMinor     int64
	IsActive       bool
	StockQuantity  *int
	MaxPerCustomer *int
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	Terms          string
}

// RewardService manages the reward catalog.
type RewardService interface {
	Create(ctx context.Context, tenantID primitive.ObjectID, input RewardInput) (*models.Reward, error)
	Update(ctx context.Context, tenantID, rewardID primitive.ObjectID, input RewardInput) (*models.Reward, error)
	Delete(ctx context.Context, tenantID, rewardID primitive.ObjectID) error
	List(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Reward, int64, error)
}

// UpdateTenantInput carries optional settings updates; nil fields are left
// unchanged.
type UpdateTenantInput struct {
	BusinessName        *string
	WelcomeBonusEnabled *bool
	WelcomeBonusPoints  *int
	PointValueMinor     *int64
	Fraud               *models.FraudConfig
}

// TenantService reads and updates tenant settings.
type TenantService interface {
	GetByID(ctx context.Context, tenantID primitive.ObjectID) (*models.Tenant, error)
	UpdateSettings(ctx context.Context, tenantID primitive.ObjectID, input UpdateTenantInput) (*models.Tenant, error)
}

// AuthService provisions tenants and authenticates dashboard users.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

// NotificationService delivers customer-facing WhatsApp messages through the
// outbox. Notify is fire-and-forget: delivery failures are recorded and logged
// but never surfaced to the business mutation that triggered them.
type NotificationService interface {
	Notify(ctx context.Context, tenantID primitive.ObjectID, customer *models.Customer, body string)
}
