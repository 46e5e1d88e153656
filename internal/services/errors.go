package services

import "errors"

// Business-rule errors returned to the API boundary. Handlers map these onto
// HTTP status codes; infrastructure errors propagate unwrapped and become 500s.
var (
	// ErrValidation wraps malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a tenant-scoped entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientBalance is returned when a debit would drive the
	// customer's balance negative.
	ErrInsufficientBalance = errors.New("insufficient points balance")
	// ErrAlreadyReviewed is returned when a claim review loses the race to a
	// concurrent review or retries after one. Callers treat it as idempotent
	// confirmation that the claim is settled.
	ErrAlreadyReviewed = errors.New("claim has already been reviewed")
	// ErrInvalidStateTransition is returned when a redemption is not in the
	// state the operation requires.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrRewardUnavailable is returned when a reward is inactive, out of its
	// validity window, or out of stock.
	ErrRewardUnavailable = errors.New("reward unavailable")
	// ErrRedemptionLimitReached is returned when the customer has exhausted a
	// reward's per-customer cap.
	ErrRedemptionLimitReached = errors.New("redemption limit reached")
	// ErrCustomerBlocked is returned when a blocked customer attempts an
	// operation the block gate forbids, such as redeeming points.
	ErrCustomerBlocked = errors.New("customer is blocked")
	// ErrDuplicateCustomer is returned when the phone number is already
	// enrolled with the tenant.
	ErrDuplicateCustomer = errors.New("customer already enrolled")
	// ErrEmailTaken is returned when a vendor registration reuses an email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
