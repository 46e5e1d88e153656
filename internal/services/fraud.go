package services

import (
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
)

// ClaimHistory summarizes the customer's past behaviour for fraud scoring.
type ClaimHistory struct {
	// ReviewedClaims is how many of the customer's claims reached a terminal
	// review (approved or rejected).
	ReviewedClaims int
	// RejectedClaims is how many of those were rejected.
	RejectedClaims int
	// RecentAmounts holds the amounts of claims submitted inside the
	// repeated-amount window, excluding the claim being scored.
	RecentAmounts []int64
	// TypicalAmountMinor is the customer's average purchase amount, 0 when
	// there is no purchase history.
	TypicalAmountMinor int64
}

const (
	// highAmountMultiplier flags claims this many times above the customer's
	// typical spend even when under the absolute cap.
	highAmountMultiplier = 5
	// minReviewedForRejectionRate avoids flagging customers whose first claim
	// happened to be rejected.
	minReviewedForRejectionRate = 3
)

// ScoreClaim produces advisory fraud flags for a purchase claim. Pure
// function: same inputs, same flags. Flags warn the reviewing vendor and never
// gate approval.
func ScoreClaim(claim *models.PurchaseClaim, customer *models.Customer, history ClaimHistory, cfg models.FraudConfig, now time.Time) []models.FraudFlag {
	var flags []models.FraudFlag

	if claim.ReceiptURL == "" {
		flags = append(flags, models.FlagNoReceipt)
	}

	highAmount := cfg.HighAmountMinor > 0 && claim.AmountMinor >= cfg.HighAmountMinor
	if !highAmount && history.TypicalAmountMinor > 0 && claim.AmountMinor >= history.TypicalAmountMinor*highAmountMultiplier {
		highAmount = true
	}
	if highAmount {
		flags = append(flags, models.FlagHighAmount)
	}

	if cfg.NewCustomerWindowDays > 0 {
		window := time.Duration(cfg.NewCustomerWindowDays) * 24 * time.Hour
		if now.Sub(customer.CreatedAt) < window {
			flags = append(flags, models.FlagNewCustomer)
		}
	}

	if cfg.RejectionRatePercent > 0 && history.ReviewedClaims >= minReviewedForRejectionRate {
		rate := history.RejectedClaims * 100 / history.ReviewedClaims
		if rate >= cfg.RejectionRatePercent {
			flags = append(flags, models.FlagHighRejectionRate)
		}
	}

	for _, amount := range history.RecentAmounts {
		if amount == claim.AmountMinor {
			flags = append(flags, models.FlagRepeatedAmount)
			break
		}
	}

	return flags
}
