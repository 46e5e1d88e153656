package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage-level sentinel errors. Services translate these into business errors
// at the boundary.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientBalance is returned when a guarded debit matches no
	// balance row, i.e. the debit would drive the balance negative.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrStateConflict is returned when a conditional state transition matched
	// no document because another writer got there first.
	ErrStateConflict = errors.New("state conflict")
	// ErrStockDepleted is returned when a guarded stock decrement matched no
	// document because stock is exhausted.
	ErrStockDepleted = errors.New("stock depleted")
	// ErrDuplicateKey is returned on unique index violations (phone numbers,
	// redemption codes, emails).
	ErrDuplicateKey = errors.New("duplicate key")
)

// TxRunner runs a function inside a storage transaction: every repository
// write made with the transaction's context commits together or not at all.
// Calls nested inside an open transaction join it instead of starting a new
// one.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TenantRepository defines the interface for tenant data operations
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tenant, error)
	FindByVendorCode(ctx context.Context, vendorCode string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
}

// VendorUserRepository defines the interface for vendor dashboard user operations
type VendorUserRepository interface {
	Create(ctx context.Context, user *models.VendorUser) error
	FindByEmail(ctx context.Context, email string) (*models.VendorUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.VendorUser, error)
}

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Customer, error)
	FindByPhone(ctx context.Context, tenantID primitive.ObjectID, phone string) (*models.Customer, error)
	FindByTenant(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Customer, error)
	Count(ctx context.Context, tenantID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, customer *models.Customer) error
	SetBlocked(ctx context.Context, tenantID, id primitive.ObjectID, blocked bool, reason string) error
}

// BalanceRepository defines the interface for points balance operations. The
// balance row is only ever written through ApplyDelta/Create so the cached
// totals stay consistent with the transaction log.
type BalanceRepository interface {
	Create(ctx context.Context, balance *models.PointsBalance) error
	FindByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (*models.PointsBalance, error)
	// ApplyDelta atomically adds delta to the current balance. Positive deltas
	// increment totalEarned, negative deltas increment totalRedeemed. A debit
	// that would leave the balance negative matches nothing and returns
	// ErrInsufficientBalance.
	ApplyDelta(ctx context.Context, tenantID, customerID primitive.ObjectID, delta int) error
}

// PointsTransactionRepository defines the interface for ledger entry operations
type PointsTransactionRepository interface {
	Create(ctx context.Context, transaction *models.PointsTransaction) error
	FindByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID, page, limit int) ([]*models.PointsTransaction, error)
	CountByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (int64, error)
}

// PurchaseRepository defines the interface for purchase data operations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Purchase, error)
	FindByTenant(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Purchase, error)
	Count(ctx context.Context, tenantID primitive.ObjectID) (int64, error)
	// AverageAmountByCustomer returns the mean purchase amount for a customer,
	// 0 when the customer has no purchases. Used as the "typical spend"
	// baseline for fraud scoring.
	AverageAmountByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (int64, error)
}

// ClaimRepository defines the interface for purchase claim operations
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.PurchaseClaim) error
	FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.PurchaseClaim, error)
	FindByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.ClaimStatus, page, limit int) ([]*models.PurchaseClaim, error)
	CountByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.ClaimStatus) (int64, error)
	// MarkReviewed transitions pending -> status, recording the review time and
	// optional rejection reason and purchase link. Returns ErrStateConflict if
	// the claim is no longer pending.
	MarkReviewed(ctx context.Context, id primitive.ObjectID, status models.ClaimStatus, rejectionReason string, purchaseID primitive.ObjectID, reviewedAt time.Time) error
	// ExpireDue moves every pending claim past its expiry to expired and
	// returns the number of claims transitioned.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	CountReviewedByCustomer(ctx context.Context, tenantID, customerID primitive.ObjectID) (reviewed, rejected int64, err error)
	FindByCustomerSince(ctx context.Context, tenantID, customerID primitive.ObjectID, since time.Time) ([]*models.PurchaseClaim, error)
}

// RewardRepository defines the interface for reward catalog operations
type RewardRepository interface {
	Create(ctx context.Context, reward *models.Reward) error
	FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Reward, error)
	FindByTenant(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Reward, error)
	Count(ctx context.Context, tenantID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, reward *models.Reward) error
	SoftDelete(ctx context.Context, tenantID, id primitive.ObjectID) error
	// DecrementStock atomically takes one unit of finite stock, returning
	// ErrStockDepleted when none remains.
	DecrementStock(ctx context.Context, id primitive.ObjectID) error
	IncrementStock(ctx context.Context, id primitive.ObjectID) error
}

// RedemptionRepository defines the interface for redemption operations
type RedemptionRepository interface {
	// Create inserts a redemption; the unique index on code surfaces
	// collisions as ErrDuplicateKey so the service can regenerate.
	Create(ctx context.Context, redemption *models.Redemption) error
	FindByID(ctx context.Context, tenantID, id primitive.ObjectID) (*models.Redemption, error)
	FindByCode(ctx context.Context, tenantID primitive.ObjectID, code string) (*models.Redemption, error)
	FindByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus, page, limit int) ([]*models.Redemption, error)
	CountByTenantAndStatus(ctx context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus) (int64, error)
	CountByCustomerAndReward(ctx context.Context, customerID, rewardID primitive.ObjectID, statuses []models.RedemptionStatus) (int64, error)
	// MarkFulfilled transitions pending -> fulfilled. ErrStateConflict if the
	// redemption is not pending.
	MarkFulfilled(ctx context.Context, id primitive.ObjectID, notes string, at time.Time) error
	// MarkClosed transitions pending -> cancelled or expired. ErrStateConflict
	// if the redemption is not pending.
	MarkClosed(ctx context.Context, id primitive.ObjectID, status models.RedemptionStatus, reason string, at time.Time) error
	FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]*models.Redemption, error)
}

// NotificationRepository defines the interface for notification outbox operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.NotificationStatus, messageID, errorMessage string) error
	FindByStatus(ctx context.Context, status models.NotificationStatus, page, limit int) ([]*models.Notification, error)
}
