package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kolekthq/kolekt-backend/internal/middleware"
	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testTenantID = primitive.NewObjectID()

// newTestRouter builds a router with the tenant injected directly, standing in
// for the JWT middleware.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextTenantID, testTenantID)
		c.Next()
	})
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// fakeClaimService returns canned claim results.
type fakeClaimService struct {
	reviewErr error
	claim     *models.PurchaseClaim
}

func (f *fakeClaimService) Submit(_ context.Context, tenantID primitive.ObjectID, input services.SubmitClaimInput) (*models.PurchaseClaim, error) {
	if input.AmountMinor <= 0 {
		return nil, services.ErrValidation
	}
	return &models.PurchaseClaim{
		ID:          primitive.NewObjectID(),
		TenantID:    tenantID,
		CustomerID:  input.CustomerID,
		AmountMinor: input.AmountMinor,
		Status:      models.ClaimStatusPending,
	}, nil
}

func (f *fakeClaimService) Review(_ context.Context, _, _ primitive.ObjectID, _, _ string) (*models.PurchaseClaim, error) {
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return f.claim, nil
}

func (f *fakeClaimService) ListByStatus(_ context.Context, _ primitive.ObjectID, _ models.ClaimStatus, _, _ int) ([]*models.PurchaseClaim, int64, error) {
	if f.claim == nil {
		return nil, 0, nil
	}
	return []*models.PurchaseClaim{f.claim}, 1, nil
}

func (f *fakeClaimService) ExpireDue(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func TestClaimSubmitEndpoint(t *testing.T) {
	router := newTestRouter()
	handler := NewClaimHandler(&fakeClaimService{})
	router.POST("/claims", handler.Submit)

	rr := doJSON(t, router, http.MethodPost, "/claims", gin.H{
		"customerId":  primitive.NewObjectID().Hex(),
		"amountMinor": 150000,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	var claim models.PurchaseClaim
	if err := json.Unmarshal(rr.Body.Bytes(), &claim); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if claim.Status != models.ClaimStatusPending {
		t.Errorf("Status = %s, want pending", claim.Status)
	}
}

func TestClaimSubmitRejectsBadCustomerID(t *testing.T) {
	router := newTestRouter()
	handler := NewClaimHandler(&fakeClaimService{})
	router.POST("/claims", handler.Submit)

	rr := doJSON(t, router, http.MethodPost, "/claims", gin.H{
		"customerId":  "not-an-id",
		"amountMinor": 150000,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestClaimReviewEndpoint(t *testing.T) {
	claimID := primitive.NewObjectID()
	approved := &models.PurchaseClaim{ID: claimID, TenantID: testTenantID, Status: models.ClaimStatusApproved}

	tests := []struct {
		name       string
		service    *fakeClaimService
		body       gin.H
		wantStatus int
	}{
		{"approve succeeds", &fakeClaimService{claim: approved}, gin.H{"action": "approve"}, http.StatusOK},
		{"already reviewed maps to conflict", &fakeClaimService{reviewErr: services.ErrAlreadyReviewed}, gin.H{"action": "approve"}, http.StatusConflict},
		{"validation maps to bad request", &fakeClaimService{reviewErr: services.ErrValidation}, gin.H{"action": "reject"}, http.StatusBadRequest},
		{"unknown claim maps to not found", &fakeClaimService{reviewErr: services.ErrNotFound}, gin.H{"action": "approve"}, http.StatusNotFound},
		{"missing action is bad request", &fakeClaimService{claim: approved}, gin.H{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			handler := NewClaimHandler(tt.service)
			router.POST("/claims/:id/review", handler.Review)

			rr := doJSON(t, router, http.MethodPost, "/claims/"+claimID.Hex()+"/review", tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

// fakeRedemptionService returns canned redemption results.
type fakeRedemptionService struct {
	redemption *models.Redemption
	err        error
}

func (f *fakeRedemptionService) Redeem(_ context.Context, _, _, _ primitive.ObjectID) (*models.Redemption, error) {
	return f.redemption, f.err
}

func (f *fakeRedemptionService) Verify(_ context.Context, _ primitive.ObjectID, _ string) (*models.Redemption, error) {
	return f.redemption, f.err
}

func (f *fakeRedemptionService) Fulfill(_ context.Context, _, _ primitive.ObjectID, _ string) (*models.Redemption, error) {
	return f.redemption, f.err
}

func (f *fakeRedemptionService) Cancel(_ context.Context, _, _ primitive.ObjectID, _ string) (*models.Redemption, error) {
	return f.redemption, f.err
}

func (f *fakeRedemptionService) ListByStatus(_ context.Context, _ primitive.ObjectID, _ models.RedemptionStatus, _, _ int) ([]*models.Redemption, int64, error) {
	if f.redemption == nil {
		return nil, 0, f.err
	}
	return []*models.Redemption{f.redemption}, 1, f.err
}

func (f *fakeRedemptionService) ExpireDue(_ context.Context, _ time.Time) (int64, error) {
	return 0, f.err
}

func TestRedemptionVerifyEndpoint(t *testing.T) {
	pending := &models.Redemption{
		ID:       primitive.NewObjectID(),
		TenantID: testTenantID,
		Code:     "ABCDE23456",
		Status:   models.RedemptionStatusPending,
	}

	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{redemption: pending})
	router.POST("/redemptions/verify", handler.Verify)

	rr := doJSON(t, router, http.MethodPost, "/redemptions/verify", gin.H{"redemptionCode": "ABCDE23456"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var redemption models.Redemption
	if err := json.Unmarshal(rr.Body.Bytes(), &redemption); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if redemption.Code != "ABCDE23456" {
		t.Errorf("Code = %q", redemption.Code)
	}
}

func TestRedemptionVerifyUnknownCode(t *testing.T) {
	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{err: services.ErrNotFound})
	router.POST("/redemptions/verify", handler.Verify)

	rr := doJSON(t, router, http.MethodPost, "/redemptions/verify", gin.H{"redemptionCode": "NOPE"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestRedemptionVerifySettledCode(t *testing.T) {
	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{err: services.ErrInvalidStateTransition})
	router.POST("/redemptions/verify", handler.Verify)

	rr := doJSON(t, router, http.MethodPost, "/redemptions/verify", gin.H{"redemptionCode": "ABCDE23456"})
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

func TestRedemptionRedeemBlockedCustomer(t *testing.T) {
	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{err: services.ErrCustomerBlocked})
	router.POST("/redemptions", handler.Redeem)

	rr := doJSON(t, router, http.MethodPost, "/redemptions", gin.H{
		"customerId": primitive.NewObjectID().Hex(),
		"rewardId":   primitive.NewObjectID().Hex(),
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rr.Code, rr.Body.String())
	}
}

func TestRedemptionFulfillConflict(t *testing.T) {
	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{err: services.ErrInvalidStateTransition})
	router.POST("/redemptions/:id/fulfill", handler.Fulfill)

	rr := doJSON(t, router, http.MethodPost, "/redemptions/"+primitive.NewObjectID().Hex()+"/fulfill", gin.H{})
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

func TestRedemptionRedeemInsufficientBalance(t *testing.T) {
	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{err: services.ErrInsufficientBalance})
	router.POST("/redemptions", handler.Redeem)

	rr := doJSON(t, router, http.MethodPost, "/redemptions", gin.H{
		"customerId": primitive.NewObjectID().Hex(),
		"rewardId":   primitive.NewObjectID().Hex(),
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rr.Code, rr.Body.String())
	}
}

func TestRedemptionListRejectsUnknownStatus(t *testing.T) {
	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{})
	router.GET("/redemptions", handler.List)

	rr := doJSON(t, router, http.MethodGet, "/redemptions?status=bogus", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestListEnvelopeShape(t *testing.T) {
	pending := &models.Redemption{
		ID:       primitive.NewObjectID(),
		TenantID: testTenantID,
		Code:     "ABCDE23456",
		Status:   models.RedemptionStatusPending,
	}
	router := newTestRouter()
	handler := NewRedemptionHandler(&fakeRedemptionService{redemption: pending})
	router.GET("/redemptions", handler.List)

	rr := doJSON(t, router, http.MethodGet, "/redemptions?status=pending&page=1&limit=20", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var envelope struct {
		Data       []models.Redemption `json:"data"`
		Pagination models.Pagination   `json:"pagination"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to parse envelope: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Errorf("data holds %d items, want 1", len(envelope.Data))
	}
	if envelope.Pagination.Total != 1 || envelope.Pagination.Pages != 1 {
		t.Errorf("pagination = %+v", envelope.Pagination)
	}
}
