package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/kolekthq/kolekt-backend/internal/models"
)

// minorUnitsPerPoint returns how many minor currency units earn one point.
// NGN earns 1 point per N1000 (100000 kobo); GBP/USD/EUR earn 1 point per
// major unit (100 pence/cents). The rate is fixed, not tenant-configurable.
func minorUnitsPerPoint(currency models.Currency) int64 {
	if currency == models.CurrencyNGN {
		return 100000
	}
	return 100
}

// PointsForAmount converts a purchase amount in minor currency units into
// loyalty points using floor division. Deterministic and side-effect-free so
// client previews always match server results.
func PointsForAmount(currency models.Currency, amountMinor int64) int {
	if amountMinor <= 0 {
		return 0
	}
	return int(amountMinor / minorUnitsPerPoint(currency))
}

// SuggestedPointsForValue computes the catalog suggestion for pricing a reward
// worth valueMinor at the tenant's point value: ceil(value / pointValue), with
// a minimum of 1. Advisory only; reward validation never trusts it.
func SuggestedPointsForValue(valueMinor, pointValueMinor int64) int {
	if valueMinor <= 0 || pointValueMinor <= 0 {
		return 1
	}
	points := (valueMinor + pointValueMinor - 1) / pointValueMinor
	if points < 1 {
		points = 1
	}
	return int(points)
}

// codeAlphabet excludes ambiguous characters (0/O, 1/I/L) so codes survive
// being read out loud at a counter.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func randomCode(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// GenerateRedemptionCode generates a single-use redemption code. Uniqueness is
// enforced by the database index; callers regenerate on collision.
func GenerateRedemptionCode() (string, error) {
	return randomCode(10)
}

// GenerateVendorCode generates the short join code customers use to enroll
// with a tenant over WhatsApp.
func GenerateVendorCode() (string, error) {
	return randomCode(6)
}
