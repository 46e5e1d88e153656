package services

import (
	"context"
	"time"

	"github.com/kolekthq/kolekt-backend/internal/models"
	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"github.com/kolekthq/kolekt-backend/pkg/whatsapp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure NotificationServiceImpl implements NotificationService
var _ NotificationService = (*NotificationServiceImpl)(nil)

// sendTimeout bounds a single gateway call so a slow provider cannot hold the
// calling request open.
const sendTimeout = 30 * time.Second

// NotificationServiceImpl writes customer messages to the outbox and pushes
// them through the WhatsApp gateway. Delivery is best-effort: failures are
// recorded on the outbox row and never propagate to the caller.
type NotificationServiceImpl struct {
	notificationRepo repositories.NotificationRepository
	gateway          whatsapp.Gateway
}

// NewNotificationService creates a new NotificationServiceImpl
func NewNotificationService(notificationRepo repositories.NotificationRepository, gateway whatsapp.Gateway) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		gateway:          gateway,
	}
}

// Notify queues and sends a WhatsApp message to a customer. Customers who have
// not opted in are skipped silently.
func (s *NotificationServiceImpl) Notify(ctx context.Context, tenantID primitive.ObjectID, customer *models.Customer, body string) {
	if customer == nil || !customer.OptedIn {
		return
	}

	notification := &models.Notification{
		TenantID:   tenantID,
		CustomerID: customer.ID,
		Phone:      customer.Phone,
		Body:       body,
		Status:     models.NotificationStatusPending,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		slog.Error("failed to write notification outbox row",
			"tenantId", tenantID.Hex(), "customerId", customer.ID.Hex(), "error", err)
		return
	}

	// The send runs detached from the request context so an aborted HTTP
	// request does not drop the message.
	go s.deliver(notification)
}

func (s *NotificationServiceImpl) deliver(notification *models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	messageID, err := s.gateway.SendText(ctx, notification.Phone, notification.Body)
	if err != nil {
		slog.Warn("whatsapp delivery failed",
			"notificationId", notification.ID.Hex(), "error", err)
		if updErr := s.notificationRepo.UpdateStatus(ctx, notification.ID, models.NotificationStatusFailed, "", err.Error()); updErr != nil {
			slog.Error("failed to record notification failure",
				"notificationId", notification.ID.Hex(), "error", updErr)
		}
		return
	}

	if err := s.notificationRepo.UpdateStatus(ctx, notification.ID, models.NotificationStatusSent, messageID, ""); err != nil {
		slog.Error("failed to record notification delivery",
			"notificationId", notification.ID.Hex(), "error", err)
	}
}
