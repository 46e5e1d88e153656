package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure TenantServiceImpl implements TenantService
var _ TenantService = (*TenantServiceImpl)(nil)

// TenantServiceImpl reads and updates tenant settings.
type TenantServiceImpl struct {
	tenantRepo repositories.TenantRepository
}

// NewTenantService creates a new TenantServiceImpl
func NewTenantService(tenantRepo repositories.TenantRepository) *TenantServiceImpl {
	return &TenantServiceImpl{tenantRepo: tenantRepo}
}

// GetByID returns a tenant by id.
func (s *TenantServiceImpl) GetByID(ctx context.Context, tenantID primitive.ObjectID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tenant, nil
}

// UpdateSettings applies the non-nil fields of input. The home currency is
// fixed at registration: changing it would silently reprice every stored
// amount.
func (s *TenantServiceImpl) UpdateSettings(ctx context.Context, tenantID primitive.ObjectID, input UpdateTenantInput) (*models.Tenant, error) {
	tenant, err := s.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			return nil, fmt.Errorf("%w: business name cannot be empty", ErrValidation)
		}
		tenant.BusinessName = name
	}
	if input.WelcomeBonusEnabled != nil {
		tenant.WelcomeBonusEnabled = *input.WelcomeBonusEnabled
	}
	if input.WelcomeBonusPoints != nil {
		if *input.WelcomeBonusPoints < 0 {
			return nil, fmt.Errorf("%w: welcome bonus cannot be negative", ErrValidation)
		}
		tenant.WelcomeBonusPoints = *input.WelcomeBonusPoints
	}
	if input.PointValueMinor != nil {
		if *input.PointValueMinor <= 0 {
			return nil, fmt.Errorf("%w: point value must be positive", ErrValidation)
		}
		tenant.PointValueMinor = *input.PointValueMinor
	}
	if input.Fraud != nil {
		f := *input.Fraud
		if f.HighAmountMinor < 0 || f.NewCustomerWindowDays < 0 || f.RepeatedAmountWindowDays < 0 {
			return nil, fmt.Errorf("%w: fraud thresholds cannot be negative", ErrValidation)
		}
		if f.RejectionRatePercent < 0 || f.RejectionRatePercent > 100 {
			return nil, fmt.Errorf("%w: rejection rate must be between 0 and 100", ErrValidation)
		}
		if f.ClaimExpiryHours < 1 {
			return nil, fmt.Errorf("%w: claim expiry must be at least one hour", ErrValidation)
		}
		tenant.Fraud = f
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	slog.Info("Tenant settings updated", "tenantId", tenantID.Hex())
	return tenant, nil
}
