package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService services.CustomerService
	ledgerService   services.LedgerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService services.CustomerService, ledgerService services.LedgerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		ledgerService:   ledgerService,
	}
}

type enrollRequest struct {
	Phone     string `json:"phone" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	OptedIn   bool   `json:"optedIn"`
}

// Enroll handles POST /customers
func (h *CustomerHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerService.Enroll(c.Request.Context(), middleware.TenantID(c), services.EnrollCustomerInput{
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		OptedIn:   req.OptedIn,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetByID handles GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	customers, total, err := h.customerService.List(c.Request.Context(), middleware.TenantID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, customers, total, page, limit)
}

type blockRequest struct {
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason"`
}

// SetBlocked handles POST /customers/:id/block
func (h *CustomerHandler) SetBlocked(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.customerService.SetBlocked(c.Request.Context(), middleware.TenantID(c), id, req.Blocked, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

type adjustRequest struct {
	Points         int    `json:"points" binding:"required,gt=0"`
	AdjustmentType string `json:"adjustmentType" binding:"required,oneof=add subtract expire"`
	Description    string `json:"description" binding:"required"`
}

// AdjustPoints handles POST /customers/:id/adjust-points
func (h *CustomerHandler) AdjustPoints(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points := req.Points
	adjustmentType := string(models.TransactionAdjusted)
	switch req.AdjustmentType {
	case "subtract":
		points = -points
	case "expire":
		points = -points
		adjustmentType = string(models.TransactionExpired)
	}

	transaction, err := h.customerService.AdjustPoints(c.Request.Context(), middleware.TenantID(c), id, points, adjustmentType, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

// GetBalance handles GET /customers/:id/balance
func (h *CustomerHandler) GetBalance(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// ListTransactions handles GET /customers/:id/transactions
func (h *CustomerHandler) ListTransactions(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	page, limit := pageParams(c)
	transactions, total, err := h.ledgerService.ListTransactions(c.Request.Context(), middleware.TenantID(c), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, transactions, total, page, limit)
}
