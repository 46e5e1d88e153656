package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/config"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"github.com/kolekthq/kolekt-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure RedemptionServiceImpl implements RedemptionService
var _ RedemptionService = (*RedemptionServiceImpl)(nil)

// codeRetryAttempts bounds regeneration when a redemption code collides with
// the unique index. With a 31^10 code space collisions are vanishingly rare.
const codeRetryAttempts = 3

// expirySweepBatch caps how many redemptions a single sweep pass refunds.
const expirySweepBatch = 200

// RedemptionServiceImpl drives redemptions through their lifecycle. Points are
// debited when the reservation is created; cancel and expiry refund them,
// fulfillment makes the debit final.
type RedemptionServiceImpl struct {
	redemptionRepo repositories.RedemptionRepository
	rewardRepo     repositories.RewardRepository
	customerRepo   repositories.CustomerRepository
	ledger         LedgerService
	notifier       NotificationService
	locks          *utils.KeyedMutex
	expiry         time.Duration
}

// NewRedemptionService creates a new RedemptionServiceImpl
func NewRedemptionService(
	redemptionRepo repositories.RedemptionRepository,
	rewardRepo repositories.RewardRepository,
	customerRepo repositories.CustomerRepository,
	ledger LedgerService,
	notifier NotificationService,
	cfg config.LoyaltyConfig,
) *RedemptionServiceImpl {
	return &RedemptionServiceImpl{
		redemptionRepo: redemptionRepo,
		rewardRepo:     rewardRepo,
		customerRepo:   customerRepo,
		ledger:         ledger,
		notifier:       notifier,
		locks:          utils.NewKeyedMutex(),
		expiry:         time.Duration(cfg.RedemptionExpiryHours) * time.Hour,
	}
}

// Redeem reserves a reward for a customer: checks availability and limits,
// debits the points, takes a stock unit, and issues a pickup code.
func (s *RedemptionServiceImpl) Redeem(ctx context.Context, tenantID, customerID, rewardID primitive.ObjectID) (*models.Redemption, error) {
	customer, err := s.customerRepo.FindByID(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if customer.Status == models.LoyaltyStatusBlocked {
		return nil, ErrCustomerBlocked
	}

	reward, err := s.rewardRepo.FindByID(ctx, tenantID, rewardID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	if !rewardAvailable(reward, now) {
		return nil, ErrRewardUnavailable
	}

	// The per-customer cap is a count-then-insert check, so the whole
	// reservation is serialized per customer and reward to keep concurrent
	// redemptions from slipping past the cap together.
	key := customerID.Hex() + ":" + rewardID.Hex()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if reward.MaxPerCustomer != nil {
		// Pending and fulfilled both count against the cap; cancelled and
		// expired redemptions give the slot back.
		used, err := s.redemptionRepo.CountByCustomerAndReward(ctx, customerID, rewardID,
			[]models.RedemptionStatus{models.RedemptionStatusPending, models.RedemptionStatusFulfilled})
		if err != nil {
			return nil, err
		}
		if used >= int64(*reward.MaxPerCustomer) {
			return nil, ErrRedemptionLimitReached
		}
	}

	// Debit first; every failure path after this must refund it.
	_, err = s.ledger.Record(ctx, tenantID, customerID, models.TransactionRedeemed, -reward.PointsRequired,
		fmt.Sprintf("Redeemed %s", reward.Name),
		map[string]string{"rewardId": rewardID.Hex()})
	if err != nil {
		return nil, err
	}

	stockReserved := false
	if reward.HasFiniteStock() {
		if err := s.rewardRepo.DecrementStock(ctx, rewardID); err != nil {
			s.refundDebit(ctx, tenantID, customerID, reward, "stock exhausted")
			if errors.Is(err, repositories.ErrStockDepleted) {
				return nil, ErrRewardUnavailable
			}
			return nil, err
		}
		stockReserved = true
	}

	redemption, err := s.createWithCode(ctx, &models.Redemption{
		TenantID:      tenantID,
		RewardID:      rewardID,
		CustomerID:    customerID,
		PointsUsed:    reward.PointsRequired,
		Status:        models.RedemptionStatusPending,
		StockReserved: stockReserved,
		ExpiresAt:     now.Add(s.expiry),
	})
	if err != nil {
		if stockReserved {
			if restoreErr := s.rewardRepo.IncrementStock(ctx, rewardID); restoreErr != nil {
				slog.Error("failed to restore stock after redemption create failure",
					"rewardId", rewardID.Hex(), "error", restoreErr)
			}
		}
		s.refundDebit(ctx, tenantID, customerID, reward, "redemption create failed")
		return nil, err
	}

	s.notifier.Notify(ctx, tenantID, customer,
		fmt.Sprintf("Your code for %s is %s. Show it at the counter within %d hours.",
			reward.Name, redemption.Code, int(s.expiry.Hours())))

	slog.Info("Redemption created",
		"tenantId", tenantID.Hex(),
		"redemptionId", redemption.ID.Hex(),
		"rewardId", rewardID.Hex(),
		"pointsUsed", redemption.PointsUsed,
	)
	return redemption, nil
}

func rewardAvailable(reward *models.Reward, now time.Time) bool {
	if !reward.IsActive || reward.DeletedAt != nil {
		return false
	}
	if reward.ValidFrom != nil && now.Before(*reward.ValidFrom) {
		return false
	}
	if reward.ValidUntil != nil && now.After(*reward.ValidUntil) {
		return false
	}
	if reward.StockQuantity != nil && *reward.StockQuantity <= 0 {
		return false
	}
	return true
}

// createWithCode inserts the redemption, regenerating the code when the unique
// index reports a collision.
func (s *RedemptionServiceImpl) createWithCode(ctx context.Context, redemption *models.Redemption) (*models.Redemption, error) {
	for attempt := 0; attempt < codeRetryAttempts; attempt++ {
		code, err := utils.GenerateRedemptionCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate redemption code: %w", err)
		}
		redemption.Code = code
		redemption.ID = primitive.NilObjectID

		err = s.redemptionRepo.Create(ctx, redemption)
		if err == nil {
			return redemption, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("failed to create redemption: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to create redemption: exhausted code attempts")
}

func (s *RedemptionServiceImpl) refundDebit(ctx context.Context, tenantID, customerID primitive.ObjectID, reward *models.Reward, cause string) {
	_, err := s.ledger.Record(ctx, tenantID, customerID, models.TransactionAdjusted, reward.PointsRequired,
		fmt.Sprintf("Refund for %s (%s)", reward.Name, cause),
		map[string]string{"rewardId": reward.ID.Hex()})
	if err != nil {
		slog.Error("failed to refund redemption debit",
			"customerId", customerID.Hex(), "points", reward.PointsRequired, "error", err)
	}
}

// Verify checks that a redemption code is still actionable at the counter.
// Only a pending, unexpired redemption verifies; codes already fulfilled,
// cancelled, or expired fail with ErrInvalidStateTransition. A pending
// redemption past its expiry is closed and refunded here rather than waiting
// for the sweep, then fails the same way.
func (s *RedemptionServiceImpl) Verify(ctx context.Context, tenantID primitive.ObjectID, code string) (*models.Redemption, error) {
	redemption, err := s.redemptionRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if redemption.Status != models.RedemptionStatusPending {
		return nil, ErrInvalidStateTransition
	}
	if time.Now().After(redemption.ExpiresAt) {
		// Losing the close race still means the code is settled, so the
		// conflict falls through to the same failure.
		if _, err := s.close(ctx, redemption, models.RedemptionStatusExpired, "expired"); err != nil && !errors.Is(err, ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, ErrInvalidStateTransition
	}
	return redemption, nil
}

// Fulfill marks a pending redemption as handed over. The points debit taken at
// creation becomes final.
func (s *RedemptionServiceImpl) Fulfill(ctx context.Context, tenantID, redemptionID primitive.ObjectID, notes string) (*models.Redemption, error) {
	redemption, err := s.redemptionRepo.FindByID(ctx, tenantID, redemptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if redemption.Status != models.RedemptionStatusPending {
		return nil, ErrInvalidStateTransition
	}
	if time.Now().After(redemption.ExpiresAt) {
		// Too late; settle as expired instead of fulfilling a stale code.
		if _, err := s.close(ctx, redemption, models.RedemptionStatusExpired, "expired"); err != nil && !errors.Is(err, ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, ErrInvalidStateTransition
	}

	now := time.Now()
	if err := s.redemptionRepo.MarkFulfilled(ctx, redemptionID, notes, now); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrInvalidStateTransition
		}
		return nil, fmt.Errorf("failed to fulfill redemption: %w", err)
	}

	redemption.Status = models.RedemptionStatusFulfilled
	redemption.Notes = notes
	redemption.FulfilledAt = &now

	slog.Info("Redemption fulfilled",
		"tenantId", tenantID.Hex(),
		"redemptionId", redemptionID.Hex(),
	)
	return redemption, nil
}

// Cancel closes a pending redemption and refunds its points and stock.
func (s *RedemptionServiceImpl) Cancel(ctx context.Context, tenantID, redemptionID primitive.ObjectID, reason string) (*models.Redemption, error) {
	redemption, err := s.redemptionRepo.FindByID(ctx, tenantID, redemptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if redemption.Status != models.RedemptionStatusPending {
		return nil, ErrInvalidStateTransition
	}
	return s.close(ctx, redemption, models.RedemptionStatusCancelled, reason)
}

// close settles a pending redemption as cancelled or expired. The conditional
// transition decides the winner; points and stock are released exactly once by
// whoever wins.
func (s *RedemptionServiceImpl) close(ctx context.Context, redemption *models.Redemption, status models.RedemptionStatus, reason string) (*models.Redemption, error) {
	now := time.Now()
	if err := s.redemptionRepo.MarkClosed(ctx, redemption.ID, status, reason, now); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			return nil, ErrInvalidStateTransition
		}
		return nil, fmt.Errorf("failed to close redemption: %w", err)
	}

	_, err := s.ledger.Record(ctx, redemption.TenantID, redemption.CustomerID, models.TransactionAdjusted, redemption.PointsUsed,
		fmt.Sprintf("Refund for %s redemption %s", status, redemption.Code),
		map[string]string{"redemptionId": redemption.ID.Hex()})
	if err != nil {
		slog.Error("failed to refund closed redemption",
			"redemptionId", redemption.ID.Hex(), "points", redemption.PointsUsed, "error", err)
	}

	if redemption.StockReserved {
		if err := s.rewardRepo.IncrementStock(ctx, redemption.RewardID); err != nil {
			slog.Error("failed to restore stock for closed redemption",
				"redemptionId", redemption.ID.Hex(), "rewardId", redemption.RewardID.Hex(), "error", err)
		}
	}

	redemption.Status = status
	redemption.CancelReason = reason
	redemption.CancelledAt = &now

	slog.Info("Redemption closed",
		"tenantId", redemption.TenantID.Hex(),
		"redemptionId", redemption.ID.Hex(),
		"status", status,
	)
	return redemption, nil
}

// ListByStatus returns a page of the tenant's redemptions in the given state.
func (s *RedemptionServiceImpl) ListByStatus(ctx context.Context, tenantID primitive.ObjectID, status models.RedemptionStatus, page, limit int) ([]*models.Redemption, int64, error) {
	page, limit = NormalizePageLimit(page, limit)
	redemptions, err := s.redemptionRepo.FindByTenantAndStatus(ctx, tenantID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.redemptionRepo.CountByTenantAndStatus(ctx, tenantID, status)
	if err != nil {
		return nil, 0, err
	}
	return redemptions, total, nil
}

// ExpireDue closes pending redemptions past their expiry, refunding points and
// stock for each. Individually-closed redemptions lost to Verify are skipped by
// the conditional transition.
func (s *RedemptionServiceImpl) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	due, err := s.redemptionRepo.FindDueForExpiry(ctx, now, expirySweepBatch)
	if err != nil {
		return 0, err
	}

	var expired int64
	for _, redemption := range due {
		if _, err := s.close(ctx, redemption, models.RedemptionStatusExpired, "expired"); err != nil {
			if errors.Is(err, ErrInvalidStateTransition) {
				continue
			}
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		slog.Info("Expired stale redemptions", "count", expired)
	}
	return expired, nil
}
