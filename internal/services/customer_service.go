package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure CustomerServiceImpl implements CustomerService
var _ CustomerService = (*CustomerServiceImpl)(nil)

// phonePattern accepts E.164-ish numbers: optional +, 8 to 15 digits.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// CustomerServiceImpl manages loyalty members: enrollment with the welcome
// bonus, blocking, and vendor-side point adjustments.
type CustomerServiceImpl struct {
	customerRepo repositories.CustomerRepository
	balanceRepo  repositories.BalanceRepository
	tenantRepo   repositories.TenantRepository
	ledger       LedgerService
	notifier     NotificationService
}

// NewCustomerService creates a new CustomerServiceImpl
func NewCustomerService(
	customerRepo repositories.CustomerRepository,
	balanceRepo repositories.BalanceRepository,
	tenantRepo repositories.TenantRepository,
	ledger LedgerService,
	notifier NotificationService,
) *CustomerServiceImpl {
	return &CustomerServiceImpl{
		customerRepo: customerRepo,
		balanceRepo:  balanceRepo,
		tenantRepo:   tenantRepo,
		ledger:       ledger,
		notifier:     notifier,
	}
}

// NormalizePhone strips spaces, dashes and parentheses from a phone number.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, phone)
}

// Enroll registers a loyalty member and opens their balance. The welcome bonus
// is credited once, at enrollment, when the tenant has it enabled.
func (s *CustomerServiceImpl) Enroll(ctx context.Context, tenantID primitive.ObjectID, input EnrollCustomerInput) (*models.Customer, error) {
	phone := NormalizePhone(input.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, fmt.Errorf("%w: invalid phone number", ErrValidation)
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	customer := &models.Customer{
		TenantID:  tenantID,
		Phone:     phone,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		OptedIn:   input.OptedIn,
		Status:    models.LoyaltyStatusActive,
	}
	if input.OptedIn {
		customer.OptInDate = time.Now()
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateCustomer
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	if err := s.balanceRepo.Create(ctx, &models.PointsBalance{
		TenantID:   tenantID,
		CustomerID: customer.ID,
	}); err != nil {
		return nil, fmt.Errorf("failed to open balance: %w", err)
	}

	if tenant.WelcomeBonusEnabled && tenant.WelcomeBonusPoints > 0 {
		_, err = s.ledger.Record(ctx, tenantID, customer.ID, models.TransactionEarned, tenant.WelcomeBonusPoints,
			"Welcome bonus", map[string]string{"event": "enrollment"})
		if err != nil {
			return nil, fmt.Errorf("customer enrolled but welcome bonus failed: %w", err)
		}
		s.notifier.Notify(ctx, tenantID, customer,
			fmt.Sprintf("Welcome to %s! You start with %d points.", tenant.BusinessName, tenant.WelcomeBonusPoints))
	} else {
		s.notifier.Notify(ctx, tenantID, customer,
			fmt.Sprintf("Welcome to %s!", tenant.BusinessName))
	}

	slog.Info("Customer enrolled",
		"tenantId", tenantID.Hex(),
		"customerId", customer.ID.Hex(),
	)
	return customer, nil
}

// GetByID returns a tenant's customer by id.
func (s *CustomerServiceImpl) GetByID(ctx context.Context, tenantID, customerID primitive.ObjectID) (*models.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

// List returns a page of the tenant's customers.
func (s *CustomerServiceImpl) List(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Customer, int64, error) {
	page, limit = NormalizePageLimit(page, limit)
	customers, err := s.customerRepo.FindByTenant(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// SetBlocked blocks or unblocks a customer. Blocking stops point accrual and
// redemptions; the existing balance and history are untouched.
func (s *CustomerServiceImpl) SetBlocked(ctx context.Context, tenantID, customerID primitive.ObjectID, blocked bool, reason string) (*models.Customer, error) {
	if blocked && strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: blocking requires a reason", ErrValidation)
	}

	if err := s.customerRepo.SetBlocked(ctx, tenantID, customerID, blocked, reason); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update customer status: %w", err)
	}

	slog.Info("Customer block status changed",
		"tenantId", tenantID.Hex(),
		"customerId", customerID.Hex(),
		"blocked", blocked,
	)
	return s.GetByID(ctx, tenantID, customerID)
}

// AdjustPoints records a manual vendor correction, positive or negative.
// Negative adjustments are still bounded by the customer's balance.
func (s *CustomerServiceImpl) AdjustPoints(ctx context.Context, tenantID, customerID primitive.ObjectID, points int, adjustmentType, description string) (*models.PointsTransaction, error) {
	if points == 0 {
		return nil, fmt.Errorf("%w: adjustment must be non-zero", ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: adjustment requires a description", ErrValidation)
	}

	transactionType := models.TransactionAdjusted
	if adjustmentType == string(models.TransactionExpired) {
		if points > 0 {
			return nil, fmt.Errorf("%w: expiry adjustments must be negative", ErrValidation)
		}
		transactionType = models.TransactionExpired
	}

	customer, err := s.GetByID(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return s.ledger.Record(ctx, tenantID, customer.ID, transactionType, points, description,
		map[string]string{"source": "manual_adjustment"})
}
