package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for notifications.
type Repository interface {
	// Save persists a new notification.
	Save(ctx context.Context, n *Notification) error

	// FindByUserID retrieves a user's notifications, newest first, with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Notification, int64, error)

	// MarkRead marks a notification as read if it belongs to the user.
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}
