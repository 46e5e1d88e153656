package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newLedgerFixture(t *testing.T) (*LedgerServiceImpl, *memBalanceRepo, *memTransactionRepo, primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	balanceRepo := newMemBalanceRepo()
	transactionRepo := newMemTransactionRepo()
	ledger := NewLedgerService(balanceRepo, transactionRepo, newMemTxRunner(balanceRepo, transactionRepo))

	tenantID := primitive.NewObjectID()
	customerID := primitive.NewObjectID()
	if err := balanceRepo.Create(context.Background(), &models.PointsBalance{
		TenantID:   tenantID,
		CustomerID: customerID,
	}); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
	return ledger, balanceRepo, transactionRepo, tenantID, customerID
}

func TestLedgerRecordCreditAndDebit(t *testing.T) {
	ledger, _, _, tenantID, customerID := newLedgerFixture(t)
	ctx := context.Background()

	if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionEarned, 100, "purchase", nil); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionRedeemed, -40, "redemption", nil); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	balance, err := ledger.GetBalance(ctx, tenantID, customerID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance.CurrentBalance != 60 {
		t.Errorf("CurrentBalance = %d, want 60", balance.CurrentBalance)
	}
	if balance.TotalEarned != 100 {
		t.Errorf("TotalEarned = %d, want 100", balance.TotalEarned)
	}
	if balance.TotalRedeemed != 40 {
		t.Errorf("TotalRedeemed = %d, want 40", balance.TotalRedeemed)
	}
	if balance.CurrentBalance != balance.TotalEarned-balance.TotalRedeemed {
		t.Error("balance invariant violated")
	}
}

func TestLedgerRecordRejectsOverdraft(t *testing.T) {
	ledger, _, _, tenantID, customerID := newLedgerFixture(t)
	ctx := context.Background()

	if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionEarned, 10, "seed", nil); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	_, err := ledger.Record(ctx, tenantID, customerID, models.TransactionRedeemed, -11, "too much", nil)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	balance, _ := ledger.GetBalance(ctx, tenantID, customerID)
	if balance.CurrentBalance != 10 {
		t.Errorf("CurrentBalance = %d after rejected debit, want 10", balance.CurrentBalance)
	}
}

func TestLedgerRecordValidatesSigns(t *testing.T) {
	ledger, _, _, tenantID, customerID := newLedgerFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		txType models.TransactionType
		points int
	}{
		{"zero points", models.TransactionAdjusted, 0},
		{"negative earned", models.TransactionEarned, -5},
		{"positive redeemed", models.TransactionRedeemed, 5},
		{"positive expired", models.TransactionExpired, 5},
		{"unknown type", models.TransactionType("bogus"), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Record(ctx, tenantID, customerID, tt.txType, tt.points, "x", nil)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestLedgerConcurrentDebits(t *testing.T) {
	ledger, _, _, tenantID, customerID := newLedgerFixture(t)
	ctx := context.Background()

	if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionEarned, 100, "seed", nil); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	// 10 concurrent debits of 25 against a balance of 100: exactly 4 can win.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionRedeemed, -25, "race", nil); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 4 {
		t.Errorf("%d debits succeeded, want 4", succeeded)
	}
	balance, _ := ledger.GetBalance(ctx, tenantID, customerID)
	if balance.CurrentBalance != 0 {
		t.Errorf("CurrentBalance = %d, want 0", balance.CurrentBalance)
	}
}

func TestLedgerRollsBackBalanceWhenAppendFails(t *testing.T) {
	ledger, _, transactionRepo, tenantID, customerID := newLedgerFixture(t)
	ctx := context.Background()

	if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionEarned, 50, "seed", nil); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	transactionRepo.failNext = true
	if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionEarned, 30, "doomed", nil); err == nil {
		t.Fatal("expected error from failed ledger append")
	}

	balance, _ := ledger.GetBalance(ctx, tenantID, customerID)
	if balance.CurrentBalance != 50 {
		t.Errorf("CurrentBalance = %d after rollback, want 50", balance.CurrentBalance)
	}
	total, _ := transactionRepo.CountByCustomer(ctx, tenantID, customerID)
	if total != 1 {
		t.Errorf("ledger holds %d entries, want 1", total)
	}
}

func TestLedgerListTransactionsPaginates(t *testing.T) {
	ledger, _, _, tenantID, customerID := newLedgerFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := ledger.Record(ctx, tenantID, customerID, models.TransactionEarned, 1, "entry", nil); err != nil {
			t.Fatalf("credit failed: %v", err)
		}
	}

	transactions, total, err := ledger.ListTransactions(ctx, tenantID, customerID, 1, 3)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(transactions) != 3 {
		t.Errorf("page holds %d entries, want 3", len(transactions))
	}
}
