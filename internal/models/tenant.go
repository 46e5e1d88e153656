package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Currency is a tenant's home currency. All amounts are stored in minor units
// (kobo, pence, cents) of this currency.
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyGBP Currency = "GBP"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// IsSupported reports whether c is one of the supported currencies.
func (c Currency) IsSupported() bool {
	switch c {
	case CurrencyNGN, CurrencyGBP, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// FraudConfig holds the per-tenant thresholds used when scoring purchase claims.
type FraudConfig struct {
	HighAmountMinor          int64 `bson:"highAmountMinor" json:"highAmountMinor"`
	NewCustomerWindowDays    int   `bson:"newCustomerWindowDays" json:"newCustomerWindowDays"`
	RejectionRatePercent     int   `bson:"rejectionRatePercent" json:"rejectionRatePercent"`
	RepeatedAmountWindowDays int   `bson:"repeatedAmountWindowDays" json:"repeatedAmountWindowDays"`
	ClaimExpiryHours         int   `bson:"claimExpiryHours" json:"claimExpiryHours"`
}

// Tenant represents a vendor business running a loyalty program.
type Tenant struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BusinessName        string             `bson:"businessName" json:"businessName"`
	VendorCode          string             `bson:"vendorCode" json:"vendorCode"`
	HomeCurrency        Currency           `bson:"homeCurrency" json:"homeCurrency"`
	WelcomeBonusEnabled bool               `bson:"welcomeBonusEnabled" json:"welcomeBonusEnabled"`
	WelcomeBonusPoints  int                `bson:"welcomeBonusPoints" json:"welcomeBonusPoints"`
	PointValueMinor     int64              `bson:"pointValueMinor" json:"pointValueMinor"`
	Fraud               FraudConfig        `bson:"fraud" json:"fraud"`
	DeletedAt           *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}
