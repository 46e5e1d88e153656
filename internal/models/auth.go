package models

// RegisterRequest provisions a new tenant together with its owner login.
type RegisterRequest struct {
	BusinessName string `json:"businessName" binding:"required"`
	Currency     string `json:"currency" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
}

// LoginRequest authenticates a vendor dashboard user.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued JWT and the authenticated user.
type LoginResponse struct {
	Token string      `json:"token"`
	User  *VendorUser `json:"user"`
}
