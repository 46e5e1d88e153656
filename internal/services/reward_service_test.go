package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRewardCreateValidation(t *testing.T) {
	service := NewRewardService(newMemRewardRepo())
	tenantID := primitive.NewObjectID()
	ctx := context.Background()

	earlier := time.Now()
	later := earlier.Add(24 * time.Hour)

	tests := []struct {
		name    string
		input   RewardInput
		wantErr bool
	}{
		{"valid", RewardInput{Name: "Free Coffee", PointsRequired: 10, IsActive: true}, false},
		{"missing name", RewardInput{Name: "  ", PointsRequired: 10}, true},
		{"zero points", RewardInput{Name: "Free Coffee", PointsRequired: 0}, true},
		{"negative stock", RewardInput{Name: "Free Coffee", PointsRequired: 10, StockQuantity: intPtr(-1)}, true},
		{"negative cap", RewardInput{Name: "Free Coffee", PointsRequired: 10, MaxPerCustomer: intPtr(-1)}, true},
		{"zero cap", RewardInput{Name: "Free Coffee", PointsRequired: 10, MaxPerCustomer: intPtr(0)}, false},
		{"inverted window", RewardInput{Name: "Free Coffee", PointsRequired: 10, ValidFrom: &later, ValidUntil: &earlier}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tenantID, tt.input)
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
		})
	}
}

func TestRewardUpdateAndSoftDelete(t *testing.T) {
	rewardRepo := newMemRewardRepo()
	service := NewRewardService(rewardRepo)
	tenantID := primitive.NewObjectID()
	ctx := context.Background()

	reward, err := service.Create(ctx, tenantID, RewardInput{Name: "Free Coffee", PointsRequired: 10, IsActive: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := service.Update(ctx, tenantID, reward.ID, RewardInput{Name: "Free Pastry", PointsRequired: 20, IsActive: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Free Pastry" || updated.PointsRequired != 20 {
		t.Errorf("updated reward = %q/%d, want Free Pastry/20", updated.Name, updated.PointsRequired)
	}

	if err := service.Delete(ctx, tenantID, reward.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	rewards, total, err := service.List(ctx, tenantID, 1, 20)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 0 || len(rewards) != 0 {
		t.Errorf("List returned %d rewards after delete, want 0", len(rewards))
	}
	if _, err := rewardRepo.FindByID(ctx, tenantID, reward.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("FindByID after delete err = %v, want ErrNotFound", err)
	}
}
