package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"github.com/kolekthq/kolekt-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure ClaimServiceImpl implements ClaimService
var _ ClaimService = (*ClaimServiceImpl)(nil)

// ClaimServiceImpl runs the purchase-claim state machine. Claims are scored for
// fraud on submission and settle exactly once: the conditional pending->reviewed
// update in the repository decides the winner when reviews race.
type ClaimServiceImpl struct {
	claimRepo    repositories.ClaimRepository
	customerRepo repositories.CustomerRepository
	purchaseRepo repositories.PurchaseRepository
	tenantRepo   repositories.TenantRepository
	ledger       LedgerService
	notifier     NotificationService
	tx           repositories.TxRunner
}

// NewClaimService creates a new ClaimServiceImpl
func NewClaimService(
	claimRepo repositories.ClaimRepository,
	customerRepo repositories.CustomerRepository,
	purchaseRepo repositories.PurchaseRepository,
	tenantRepo repositories.TenantRepository,
	ledger LedgerService,
	notifier NotificationService,
	tx repositories.TxRunner,
) *ClaimServiceImpl {
	return &ClaimServiceImpl{
		claimRepo:    claimRepo,
		customerRepo: customerRepo,
		purchaseRepo: purchaseRepo,
		tenantRepo:   tenantRepo,
		ledger:       ledger,
		notifier:     notifier,
		tx:           tx,
	}
}

// Submit records a customer-reported purchase as a pending claim. No points
// move until a vendor approves it.
func (s *ClaimServiceImpl) Submit(ctx context.Context, tenantID primitive.ObjectID, input SubmitClaimInput) (*models.PurchaseClaim, error) {
	if input.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	customer, err := s.customerRepo.FindByID(ctx, tenantID, input.CustomerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	claim := &models.PurchaseClaim{
		TenantID:    tenantID,
		CustomerID:  customer.ID,
		AmountMinor: input.AmountMinor,
		Channel:     input.Channel,
		ReceiptURL:  strings.TrimSpace(input.ReceiptURL),
		Description: input.Description,
		Status:      models.ClaimStatusPending,
		ExpiresAt:   now.Add(time.Duration(tenant.Fraud.ClaimExpiryHours) * time.Hour),
	}

	history, err := s.buildHistory(ctx, tenant, customer, now)
	if err != nil {
		// Scoring is advisory; a partial history must not block the submission.
		slog.Warn("fraud history lookup failed, scoring with partial history",
			"tenantId", tenantID.Hex(), "customerId", customer.ID.Hex(), "error", err)
	}
	claim.FraudFlags = ScoreClaim(claim, customer, history, tenant.Fraud, now)

	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	slog.Info("Purchase claim submitted",
		"tenantId", tenantID.Hex(),
		"claimId", claim.ID.Hex(),
		"amountMinor", claim.AmountMinor,
		"fraudFlags", claim.FraudFlags,
	)
	return claim, nil
}

func (s *ClaimServiceImpl) buildHistory(ctx context.Context, tenant *models.Tenant, customer *models.Customer, now time.Time) (ClaimHistory, error) {
	var history ClaimHistory

	reviewed, rejected, err := s.claimRepo.CountReviewedByCustomer(ctx, tenant.ID, customer.ID)
	if err != nil {
		return history, err
	}
	history.ReviewedClaims = int(reviewed)
	history.RejectedClaims = int(rejected)

	if tenant.Fraud.RepeatedAmountWindowDays > 0 {
		since := now.Add(-time.Duration(tenant.Fraud.RepeatedAmountWindowDays) * 24 * time.Hour)
		recent, err := s.claimRepo.FindByCustomerSince(ctx, tenant.ID, customer.ID, since)
		if err != nil {
			return history, err
		}
		for _, c := range recent {
			history.RecentAmounts = append(history.RecentAmounts, c.AmountMinor)
		}
	}

	typical, err := s.purchaseRepo.AverageAmountByCustomer(ctx, tenant.ID, customer.ID)
	if err != nil {
		return history, err
	}
	history.TypicalAmountMinor = typical

	return history, nil
}

// Review settles a pending claim. Approval creates the purchase record and
// credits points; rejection records the reason. A claim settles exactly once:
// concurrent reviews lose with ErrAlreadyReviewed.
func (s *ClaimServiceImpl) Review(ctx context.Context, tenantID, claimID primitive.ObjectID, action, rejectionReason string) (*models.PurchaseClaim, error) {
	claim, err := s.claimRepo.FindByID(ctx, tenantID, claimID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if claim.Status != models.ClaimStatusPending {
		return nil, ErrAlreadyReviewed
	}
	if time.Now().After(claim.ExpiresAt) {
		// Settle the claim as expired rather than leaving it for the sweep.
		if err := s.claimRepo.MarkReviewed(ctx, claim.ID, models.ClaimStatusExpired, "", primitive.NilObjectID, time.Now()); err != nil && !errors.Is(err, repositories.ErrStateConflict) {
			return nil, err
		}
		return nil, ErrAlreadyReviewed
	}

	switch action {
	case "approve":
		return s.approve(ctx, tenantID, claim)
	case "reject":
		if strings.TrimSpace(rejectionReason) == "" {
			return nil, fmt.Errorf("%w: rejection requires a reason", ErrValidation)
		}
		return s.reject(ctx, claim, rejectionReason)
	default:
		return nil, fmt.Errorf("%w: action must be approve or reject", ErrValidation)
	}
}

func (s *ClaimServiceImpl) approve(ctx context.Context, tenantID primitive.ObjectID, claim *models.PurchaseClaim) (*models.PurchaseClaim, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByID(ctx, tenantID, claim.CustomerID)
	if err != nil {
		return nil, err
	}

	points := utils.PointsForAmount(tenant.HomeCurrency, claim.AmountMinor)
	if !customer.CanAccruePoints() {
		// Blocked customers keep their purchase history but earn nothing.
		points = 0
	}

	// The purchase id is generated up front so the claim can be linked in the
	// same conditional update that settles it.
	purchaseID := primitive.NewObjectID()
	now := time.Now()

	purchase := &models.Purchase{
		ID:            purchaseID,
		TenantID:      tenantID,
		CustomerID:    claim.CustomerID,
		AmountMinor:   claim.AmountMinor,
		Description:   claim.Description,
		Channel:       claim.Channel,
		PurchaseDate:  claim.CreatedAt,
		PointsAwarded: points,
		Source:        models.PurchaseSourceClaim,
	}

	// Settling the claim, creating the purchase, and crediting the points
	// commit as one transaction; a failure anywhere leaves the claim pending
	// so the vendor can simply re-approve.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.claimRepo.MarkReviewed(ctx, claim.ID, models.ClaimStatusApproved, "", purchaseID, now); err != nil {
			return err
		}
		if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
			return err
		}
		if points > 0 {
			if _, err := s.ledger.Record(ctx, tenantID, claim.CustomerID, models.TransactionEarned, points,
				fmt.Sprintf("Approved claim for %d", claim.AmountMinor),
				map[string]string{"purchaseId": purchaseID.Hex(), "claimId": claim.ID.Hex()}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to approve claim: %w", err)
	}

	if points > 0 {
		s.notifier.Notify(ctx, tenantID, customer,
			fmt.Sprintf("Your purchase claim was approved. %d points added to your balance.", points))
	} else {
		s.notifier.Notify(ctx, tenantID, customer, "Your purchase claim was approved.")
	}

	claim.Status = models.ClaimStatusApproved
	claim.PurchaseID = purchaseID
	claim.ReviewedAt = &now

	slog.Info("Purchase claim approved",
		"tenantId", tenantID.Hex(),
		"claimId", claim.ID.Hex(),
		"purchaseId", purchaseID.Hex(),
		"points", points,
	)
	return claim, nil
}

func (s *ClaimServiceImpl) reject(ctx context.Context, claim *models.PurchaseClaim, reason string) (*models.PurchaseClaim, error) {
	now := time.Now()
	if err := s.claimRepo.MarkReviewed(ctx, claim.ID, models.ClaimStatusRejected, reason, primitive.NilObjectID, now); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to reject claim: %w", err)
	}

	claim.Status = models.ClaimStatusRejected
	claim.RejectionReason = reason
	claim.ReviewedAt = &now

	if customer, err := s.customerRepo.FindByID(ctx, claim.TenantID, claim.CustomerID); err == nil {
		s.notifier.Notify(ctx, claim.TenantID, customer,
			fmt.Sprintf("Your purchase claim was rejected: %s", reason))
	}

	slog.Info("Purchase claim rejected",
		"tenantId", claim.TenantID.Hex(),
		"claimId", claim.ID.Hex(),
		"reason", reason,
	)
	return claim, nil
}

// ListByStatus returns a page of the tenant's claims in the given state.
func (s *ClaimServiceImpl) ListByStatus(ctx context.Context, tenantID primitive.ObjectID, status models.ClaimStatus, page, limit int) ([]*models.PurchaseClaim, int64, error) {
	page, limit = NormalizePageLimit(page, limit)
	claims, err := s.claimRepo.FindByTenantAndStatus(ctx, tenantID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.claimRepo.CountByTenantAndStatus(ctx, tenantID, status)
	if err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// ExpireDue sweeps pending claims past their review window into expired.
// Expired claims never moved points, so there is nothing to refund.
func (s *ClaimServiceImpl) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.claimRepo.ExpireDue(ctx, now)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		slog.Info("Expired unreviewed purchase claims", "count", expired)
	}
	return expired, nil
}
