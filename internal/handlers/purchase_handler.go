package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseHandler handles purchase-related HTTP requests
type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

type logPurchaseRequest struct {
	CustomerID   string     `json:"customerId" binding:"required"`
	AmountMinor  int64      `json:"amountMinor" binding:"required"`
	Description  string     `json:"description"`
	Channel      string     `json:"channel"`
	PurchaseDate *time.Time `json:"purchaseDate"`
}

// Log handles POST /purchases
func (h *PurchaseHandler) Log(c *gin.Context) {
	var req logPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := primitive.ObjectIDFromHex(req.CustomerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	input := services.LogPurchaseInput{
		CustomerID:  customerID,
		AmountMinor: req.AmountMinor,
		Description: req.Description,
		Channel:     req.Channel,
	}
	if req.PurchaseDate != nil {
		input.PurchaseDate = *req.PurchaseDate
	}

	purchase, err := h.purchaseService.Log(c.Request.Context(), middleware.TenantID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	purchases, total, err := h.purchaseService.List(c.Request.Context(), middleware.TenantID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, purchases, total, page, limit)
}
