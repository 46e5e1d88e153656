package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"github.com/kolekthq/kolekt-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure LedgerServiceImpl implements LedgerService
var _ LedgerService = (*LedgerServiceImpl)(nil)

// LedgerServiceImpl is the single writer of points balances. A per-customer
// keyed mutex totally orders mutations within the process; the guarded balance
// update in the repository is the cross-process backstop, and the balance
// delta commits in one transaction with its ledger entry.
type LedgerServiceImpl struct {
	balanceRepo     repositories.BalanceRepository
	transactionRepo repositories.PointsTransactionRepository
	tx              repositories.TxRunner
	locks           *utils.KeyedMutex
}

// NewLedgerService creates a new LedgerServiceImpl
func NewLedgerService(balanceRepo repositories.BalanceRepository, transactionRepo repositories.PointsTransactionRepository, tx repositories.TxRunner) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
		tx:              tx,
		locks:           utils.NewKeyedMutex(),
	}
}

// Record appends a ledger transaction and updates the cached balance. Debits
// fail with ErrInsufficientBalance rather than taking the balance negative.
func (s *LedgerServiceImpl) Record(ctx context.Context, tenantID, customerID primitive.ObjectID, transactionType models.TransactionType, points int, description string, metadata map[string]string) (*models.PointsTransaction, error) {
	if points == 0 {
		return nil, fmt.Errorf("%w: points must be non-zero", ErrValidation)
	}
	switch transactionType {
	case models.TransactionEarned:
		if points < 0 {
			return nil, fmt.Errorf("%w: earned transactions must be positive", ErrValidation)
		}
	case models.TransactionRedeemed, models.TransactionExpired:
		if points > 0 {
			return nil, fmt.Errorf("%w: %s transactions must be negative", ErrValidation, transactionType)
		}
	case models.TransactionAdjusted:
		// Either sign.
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, transactionType)
	}

	key := customerID.Hex()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	transaction := &models.PointsTransaction{
		TenantID:    tenantID,
		CustomerID:  customerID,
		Type:        transactionType,
		Points:      points,
		Description: description,
		Metadata:    metadata,
	}

	// The balance delta and its ledger entry commit together, so the cached
	// balance always equals the sum of the log.
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.balanceRepo.ApplyDelta(ctx, tenantID, customerID, points); err != nil {
			return err
		}
		return s.transactionRepo.Create(ctx, transaction)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to record ledger transaction: %w", err)
	}

	slog.Info("Ledger transaction recorded",
		"tenantId", tenantID.Hex(),
		"customerId", customerID.Hex(),
		"type", transactionType,
		"points", points,
	)
	return transaction, nil
}

// GetBalance returns the cached balance row for a customer
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, tenantID, customerID primitive.ObjectID) (*models.PointsBalance, error) {
	balance, err := s.balanceRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return balance, nil
}

// ListTransactions returns a page of the customer's ledger, newest first,
// along with the total entry count.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, tenantID, customerID primitive.ObjectID, page, limit int) ([]*models.PointsTransaction, int64, error) {
	page, limit = NormalizePageLimit(page, limit)
	transactions, err := s.transactionRepo.FindByCustomer(ctx, tenantID, customerID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transactionRepo.CountByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// NormalizePageLimit clamps pagination parameters to sane values.
func NormalizePageLimit(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
