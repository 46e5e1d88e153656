package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kolekthq/kolekt-backend/internal/config"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"github.com/kolekthq/kolekt-backend/internal/utils"
	"github.com/kolekthq/kolekt-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// vendorCodeRetryAttempts bounds regeneration of the short join code when it
// collides with an existing tenant.
const vendorCodeRetryAttempts = 3

// AuthServiceImpl provisions tenants and authenticates dashboard users.
type AuthServiceImpl struct {
	tenantRepo repositories.TenantRepository
	userRepo   repositories.VendorUserRepository
	tokens     *jwt.TokenService
	defaults   config.LoyaltyConfig
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(
	tenantRepo repositories.TenantRepository,
	userRepo repositories.VendorUserRepository,
	tokens *jwt.TokenService,
	defaults config.LoyaltyConfig,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		tokens:     tokens,
		defaults:   defaults,
	}
}

// Register provisions a tenant with its owner login and returns a session for
// the new user. The tenant starts with the platform's default fraud thresholds.
func (s *AuthServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.LoginResponse, error) {
	currency := models.Currency(strings.ToUpper(req.Currency))
	if !currency.IsSupported() {
		return nil, fmt.Errorf("%w: unsupported currency %q", ErrValidation, req.Currency)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	tenant := &models.Tenant{
		BusinessName:        strings.TrimSpace(req.BusinessName),
		HomeCurrency:        currency,
		WelcomeBonusEnabled: s.defaults.WelcomeBonusPoints > 0,
		WelcomeBonusPoints:  s.defaults.WelcomeBonusPoints,
		PointValueMinor:     defaultPointValueMinor(currency),
		Fraud: models.FraudConfig{
			HighAmountMinor:          s.defaults.HighAmountMinor,
			NewCustomerWindowDays:    s.defaults.NewCustomerWindowDays,
			RejectionRatePercent:     s.defaults.RejectionRatePercent,
			RepeatedAmountWindowDays: s.defaults.RepeatedAmountWindowDays,
			ClaimExpiryHours:         s.defaults.ClaimExpiryHours,
		},
	}

	if err := s.createTenantWithVendorCode(ctx, tenant); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.VendorUser{
		TenantID:  tenant.ID,
		Email:     email,
		Password:  string(hashed),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      "owner",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create vendor user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID.Hex(), tenant.ID.Hex(), user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("Tenant registered",
		"tenantId", tenant.ID.Hex(),
		"vendorCode", tenant.VendorCode,
		"currency", tenant.HomeCurrency,
	)
	return &models.LoginResponse{Token: token, User: user}, nil
}

func (s *AuthServiceImpl) createTenantWithVendorCode(ctx context.Context, tenant *models.Tenant) error {
	for attempt := 0; attempt < vendorCodeRetryAttempts; attempt++ {
		code, err := utils.GenerateVendorCode()
		if err != nil {
			return fmt.Errorf("failed to generate vendor code: %w", err)
		}
		tenant.VendorCode = code

		err = s.tenantRepo.Create(ctx, tenant)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return fmt.Errorf("failed to create tenant: %w", err)
		}
	}
	return fmt.Errorf("failed to create tenant: exhausted vendor code attempts")
}

// defaultPointValueMinor is the starting redemption value of one point in the
// tenant's home currency, adjustable later in settings.
func defaultPointValueMinor(currency models.Currency) int64 {
	if currency == models.CurrencyNGN {
		return 1000 // N10
	}
	return 5 // 5 pence/cents
}

// Login authenticates a vendor dashboard user.
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.Hex(), user.TenantID.Hex(), user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("Vendor user logged in", "userId", user.ID.Hex(), "tenantId", user.TenantID.Hex())
	return &models.LoginResponse{Token: token, User: user}, nil
}
