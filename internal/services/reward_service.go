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

// Compile-time check to ensure RewardServiceImpl implements RewardService
var _ RewardService = (*RewardServiceImpl)(nil)

// RewardServiceImpl manages the reward catalog.
type RewardServiceImpl struct {
	rewardRepo repositories.RewardRepository
}

// NewRewardService creates a new RewardServiceImpl
func NewRewardService(rewardRepo repositories.RewardRepository) *RewardServiceImpl {
	return &RewardServiceImpl{rewardRepo: rewardRepo}
}

func validateRewardInput(input RewardInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.PointsRequired <= 0 {
		return fmt.Errorf("%w: points required must be positive", ErrValidation)
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}
	// Zero is a valid cap: the reward stays visible in the catalog but cannot
	// be redeemed.
	if input.MaxPerCustomer != nil && *input.MaxPerCustomer < 0 {
		return fmt.Errorf("%w: max per customer cannot be negative", ErrValidation)
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return fmt.Errorf("%w: validity window ends before it starts", ErrValidation)
	}
	return nil
}

// Create adds a catalog entry.
func (s *RewardServiceImpl) Create(ctx context.Context, tenantID primitive.ObjectID, input RewardInput) (*models.Reward, error) {
	if err := validateRewardInput(input); err != nil {
		return nil, err
	}

	reward := &models.Reward{
		TenantID:       tenantID,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		PointsRequired: input.PointsRequired,
		ValueMinor:     input.ValueMinor,
		IsActive:       input.IsActive,
		StockQuantity:  input.StockQuantity,
		MaxPerCustomer: input.MaxPerCustomer,
		ValidFrom:      input.ValidFrom,
		ValidUntil:     input.ValidUntil,
		Terms:          input.Terms,
	}
	if err := s.rewardRepo.Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}

	slog.Info("Reward created",
		"tenantId", tenantID.Hex(),
		"rewardId", reward.ID.Hex(),
		"pointsRequired", reward.PointsRequired,
	)
	return reward, nil
}

// Update rewrites a catalog entry's writable fields. Points already reserved by
// pending redemptions are unaffected: the price was locked at redemption time.
func (s *RewardServiceImpl) Update(ctx context.Context, tenantID, rewardID primitive.ObjectID, input RewardInput) (*models.Reward, error) {
	if err := validateRewardInput(input); err != nil {
		return nil, err
	}

	reward, err := s.rewardRepo.FindByID(ctx, tenantID, rewardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	reward.Name = strings.TrimSpace(input.Name)
	reward.Description = input.Description
	reward.PointsRequired = input.PointsRequired
	reward.ValueMinor = input.ValueMinor
	reward.IsActive = input.IsActive
	reward.StockQuantity = input.StockQuantity
	reward.MaxPerCustomer = input.MaxPerCustomer
	reward.ValidFrom = input.ValidFrom
	reward.ValidUntil = input.ValidUntil
	reward.Terms = input.Terms

	if err := s.rewardRepo.Update(ctx, reward); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update reward: %w", err)
	}
	return reward, nil
}

// Delete soft-deletes a catalog entry. Existing pending redemptions against it
// still settle normally.
func (s *RewardServiceImpl) Delete(ctx context.Context, tenantID, rewardID primitive.ObjectID) error {
	if err := s.rewardRepo.SoftDelete(ctx, tenantID, rewardID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete reward: %w", err)
	}
	slog.Info("Reward deleted", "tenantId", tenantID.Hex(), "rewardId", rewardID.Hex())
	return nil
}

// List returns a page of the tenant's catalog, soft-deleted entries excluded.
func (s *RewardServiceImpl) List(ctx context.Context, tenantID primitive.ObjectID, page, limit int) ([]*models.Reward, int64, error) {
	page, limit = NormalizePageLimit(page, limit)
	rewards, err := s.rewardRepo.FindByTenant(ctx, tenantID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.rewardRepo.Count(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	return rewards, total, nil
}
