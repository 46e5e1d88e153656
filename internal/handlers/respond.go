package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"golang.org/x/exp/slog"
)

// respondError maps business errors onto HTTP status codes. Unrecognized
// errors become opaque 500s so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient points balance"})
	case errors.Is(err, services.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "Claim has already been reviewed"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Redemption is not in a state that allows this operation"})
	case errors.Is(err, services.ErrRewardUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Reward unavailable"})
	case errors.Is(err, services.ErrRedemptionLimitReached):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Redemption limit reached for this reward"})
	case errors.Is(err, services.ErrCustomerBlocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Customer is blocked"})
	case errors.Is(err, services.ErrDuplicateCustomer):
		c.JSON(http.StatusConflict, gin.H{"error": "Customer already enrolled"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondPage writes the standard list envelope.
func respondPage(c *gin.Context, data any, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"pagination": models.NewPagination(total, page, limit),
	})
}

// pageParams parses the page and limit query parameters.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, limit
}
