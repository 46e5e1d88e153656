package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/services"
)

// TenantHandler handles tenant settings HTTP requests
type TenantHandler struct {
	tenantService services.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// Get handles GET /tenant
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.tenantService.GetByID(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type updateTenantRequest struct {
	BusinessName        *string             `json:"businessName"`
	WelcomeBonusEnabled *bool               `json:"welcomeBonusEnabled"`
	WelcomeBonusPoints  *int                `json:"welcomeBonusPoints"`
	PointValueMinor     *int64              `json:"pointValueMinor"`
	Fraud               *models.FraudConfig `json:"fraud"`
}

// Update handles PATCH /tenant
func (h *TenantHandler) Update(c *gin.Context) {
	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenant, err := h.tenantService.UpdateSettings(c.Request.Context(), middleware.TenantID(c), services.UpdateTenantInput{
		BusinessName:        req.BusinessName,
		WelcomeBonusEnabled: req.WelcomeBonusEnabled,
		WelcomeBonusPoints:  req.WelcomeBonusPoints,
		PointValueMinor:     req.PointValueMinor,
		Fraud:               req.Fraud,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}
