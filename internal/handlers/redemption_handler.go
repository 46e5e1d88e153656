package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedemptionHandler handles redemption HTTP requests
type RedemptionHandler struct {
	redemptionService services.RedemptionService
}

// NewRedemptionHandler creates a new RedemptionHandler
func NewRedemptionHandler(redemptionService services.RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{redemptionService: redemptionService}
}

type redeemRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	RewardID   string `json:"rewardId" binding:"required"`
}

// Redeem handles POST /redemptions
func (h *RedemptionHandler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := primitive.ObjectIDFromHex(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}
	rewardID, err := primitive.ObjectIDFromHex(req.RewardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward ID format"})
		return
	}

	redemption, err := h.redemptionService.Redeem(c.Request.Context(), middleware.TenantID(c), customerID, rewardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, redemption)
}

type verifyRequest struct {
	RedemptionCode string `json:"redemptionCode" binding:"required"`
}

// Verify handles POST /redemptions/verify
func (h *RedemptionHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redemption, err := h.redemptionService.Verify(c.Request.Context(), middleware.TenantID(c), req.RedemptionCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redemption)
}

type fulfillRequest struct {
	Notes string `json:"notes"`
}

// Fulfill handles POST /redemptions/:id/fulfill
func (h *RedemptionHandler) Fulfill(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req fulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redemption, err := h.redemptionService.Fulfill(c.Request.Context(), middleware.TenantID(c), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redemption)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /redemptions/:id/cancel
func (h *RedemptionHandler) Cancel(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redemption, err := h.redemptionService.Cancel(c.Request.Context(), middleware.TenantID(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, redemption)
}

// List handles GET /redemptions?status=pending
func (h *RedemptionHandler) List(c *gin.Context) {
	status := models.RedemptionStatus(c.DefaultQuery("status", string(models.RedemptionStatusPending)))
	switch status {
	case models.RedemptionStatusPending, models.RedemptionStatusFulfilled, models.RedemptionStatusCancelled, models.RedemptionStatusExpired:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid redemption status"})
		return
	}

	page, limit := pageParams(c)
	redemptions, total, err := h.redemptionService.ListByStatus(c.Request.Context(), middleware.TenantID(c), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, redemptions, total, page, limit)
}
