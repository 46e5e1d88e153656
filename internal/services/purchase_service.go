package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"github.com/kolekthq/kolekt-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PurchaseServiceImpl implements PurchaseService
var _ PurchaseService = (*PurchaseServiceImpl)(nil)

// PurchaseServiceImpl logs vendor-confirmed purchases. These need no review:
// points are computed from the tenant's home currency and credited immediately,
// unless the customer is blocked.
type PurchaseServiceImpl struct {
	purchaseRepo repositories.PurchaseRepository
	customerRepo repositories.CustomerRepository
	tenantRepo   repositories.TenantRepository
	ledger       LedgerService
	notifier     NotificationService
}

// NewPurchaseService creates a new PurchaseServiceImpl
func NewPurchaseService(
	purchaseRepo repositories.PurchaseRepository,
	customerRepo repositories.CustomerRepository,
	tenantRepo repositories.TenantRepository,
	ledger LedgerService,
	notifier NotificationService,
) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		purchaseRepo: purchaseRepo,
		customerRepo: customerRepo,
		tenantRepo:   tenantRepo,
		ledger:       ledger,
		notifier:     notifier,
	}
}

// Log records a purchase and credits the earned points.
func (s *PurchaseServiceImpl) Log(ctx context.Context, tenantID primitive.ObjectID, input LogPurchaseInput) (*models.Purchase, error) {
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

	points := utils.PointsForAmount(tenant.HomeCurrency, input.AmountMinor)
	if !customer.CanAccruePoints() {
		points = 0
	}

	purchaseDate := input.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = time.Now()
	}

	purchase := &models.Purchase{
		TenantID:      tenantID,
		CustomerID:    customer.ID,
		AmountMinor:   input.AmountMinor,
		Description:   input.Description,
		Channel:       input.Channel,
		PurchaseDate:  purchaseDate,
		PointsAwarded: points,
		Source:        models.PurchaseSourceVendor,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	if points > 0 {
		_, err = s.ledger.Record(ctx, tenantID, customer.ID, models.TransactionEarned, points,
			fmt.Sprintf("Purchase of %d", input.AmountMinor),
			map[string]string{"purchaseId": purchase.ID.Hex()})
		if err != nil {
			return nil, fmt.Errorf("purchase recorded but points credit failed: %w", err)
		}
		s.notifier.Notify(ctx, tenantID, customer,
			fmt.Sprintf("Thanks for your purchase! You earned %d points.", points))
	}

	slog.Info("Purchase logged",
		"tenantId", tenantID.Hex(),
		"purchaseId", purchase.ID.Hex(),
		"amountMinor", purchase.AmountMinor,
		"points", points,
	)
	return purchase, nil
}

// List returns a page of the tenant's purchases, newest first.
func (s *PurchaseServiceImpl) List(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Purchase, int64, error) {
	page, limit = NormalizePageLimit(page, limit)
	purchases, err := s.purchaseRepo.FindByTenant(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.purchaseRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}
