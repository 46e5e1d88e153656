package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClaimHandler handles purchase claim HTTP requests
type ClaimHandler struct {
	claimService services.ClaimService
}

// NewClaimHandler creates a new ClaimHandler
func NewClaimHandler(claimService services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

type submitClaimRequest struct {
	CustomerID  string `json:"customerId" binding:"required"`
	AmountMinor int64  `json:"amountMinor" binding:"required"`
	Channel     string `json:"channel"`
	ReceiptURL  string `json:"receiptUrl"`
	Description string `json:"description"`
}

// Submit handles POST /claims
func (h *ClaimHandler) Submit(c *gin.Context) {
	var req submitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := primitive.ObjectIDFromHex(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	claim, err := h.claimService.Submit(c.Request.Context(), middleware.TenantID(c), services.SubmitClaimInput{
		CustomerID:  customerID,
		AmountMinor: req.AmountMinor,
		Channel:     req.Channel,
		ReceiptURL:  req.ReceiptURL,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, claim)
}

type reviewClaimRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// Review handles POST /claims/:id/review
func (h *ClaimHandler) Review(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req reviewClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.claimService.Review(c.Request.Context(), middleware.TenantID(c), id, req.Action, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claim)
}

// List handles GET /claims?status=pending
func (h *ClaimHandler) List(c *gin.Context) {
	status := models.ClaimStatus(c.DefaultQuery("status", string(models.ClaimStatusPending)))
	switch status {
	case models.ClaimStatusPending, models.ClaimStatusApproved, models.ClaimStatusRejected, models.ClaimStatusExpired:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid claim status"})
		return
	}

	page, limit := pageParams(c)
	claims, total, err := h.claimService.ListByStatus(c.Request.Context(), middleware.TenantID(c), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, claims, total, page, limit)
}
