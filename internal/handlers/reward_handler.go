package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"github.com/kolekthq/kolekt-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RewardHandler handles reward catalog HTTP requests
type RewardHandler struct {
	rewardService services.RewardService
	tenantService services.TenantService
}

// NewRewardHandler creates a new RewardHandler
func NewRewardHandler(rewardService services.RewardService, tenantService services.TenantService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
		tenantService: tenantService,
	}
}

type rewardRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	PointsRequired int        `json:"pointsRequired" binding:"required"`
	ValueMinor     int64      `json:"valueMinor"`
	IsActive       *bool      `json:"isActive"`
	StockQuantity  *int       `json:"stockQuantity"`
	MaxPerCustomer *int       `json:"maxPerCustomer"`
	ValidFrom      *time.Time `json:"validFrom"`
	ValidUntil     *time.Time `json:"validUntil"`
	Terms          string     `json:"terms"`
}

func (r *rewardRequest) toInput() services.RewardInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return services.RewardInput{
		Name:           r.Name,
		Description:    r.Description,
		PointsRequired: r.PointsRequired,
		ValueMinor:     r.ValueMinor,
		IsActive:       active,
		StockQuantity:  r.StockQuantity,
		MaxPerCustomer: r.MaxPerCustomer,
		ValidFrom:      r.ValidFrom,
		ValidUntil:     r.ValidUntil,
		Terms:          r.Terms,
	}
}

// Create handles POST /rewards
func (h *RewardHandler) Create(c *gin.Context) {
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reward, err := h.rewardService.Create(c.Request.Context(), middleware.TenantID(c), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reward)
}

// Update handles PUT /rewards/:id
func (h *RewardHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reward, err := h.rewardService.Update(c.Request.Context(), middleware.TenantID(c), id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

// Delete handles DELETE /rewards/:id
func (h *RewardHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.rewardService.Delete(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SuggestPoints handles GET /rewards/suggest-points. It prices a reward in
// points from the tenant's configured point value so dashboard previews match
// what the catalog would accept.
func (h *RewardHandler) SuggestPoints(c *gin.Context) {
	valueMinor, err := strconv.ParseInt(c.Query("valueMinor"), 10, 64)
	if err != nil || valueMinor <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valueMinor must be a positive integer"})
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"suggestedPoints": utils.SuggestedPointsForValue(valueMinor, tenant.PointValueMinor),
	})
}

// List handles GET /rewards
func (h *RewardHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	rewards, total, err := h.rewardService.List(c.Request.Context(), middleware.TenantID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, rewards, total, page, limit)
}
