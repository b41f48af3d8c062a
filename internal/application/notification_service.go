package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinlix/service-booking/internal/domain/notification"
	"github.com/clinlix/service-booking/pkg/domain"
)

// NotificationDTO is the response representation of a notification.
type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	TargetURL string    `json:"target_url,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationService exposes a user's notification feed.
type NotificationService struct {
	notifications notification.Repository
	logger        *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications notification.Repository, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// GetUserNotifications retrieves a user's notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[NotificationDTO], error) {
	items, total, err := s.notifications.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]NotificationDTO, len(items))
	for i, n := range items {
		dtos[i] = NotificationDTO{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			TargetURL: n.TargetURL,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifications.MarkRead(ctx, id, userID)
}
