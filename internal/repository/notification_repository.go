package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinlix/service-booking/internal/domain/notification"
	"github.com/clinlix/service-booking/pkg/domain"
)

// NotificationModel is the GORM model for the notifications table.
type NotificationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Title     string    `gorm:"not null;size:200"`
	Body      string    `gorm:"not null;size:1000"`
	TargetURL string    `gorm:"size:255"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (NotificationModel) TableName() string {
	return "notifications"
}

// GormNotificationRepository is the GORM-based implementation of the
// notification repository.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Save persists a new notification.
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	model := &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Body:      n.Body,
		TargetURL: n.TargetURL,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	return nil
}

// FindByUserID retrieves a user's notifications, newest first, with pagination.
func (r *GormNotificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*notification.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&NotificationModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var models []NotificationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find notifications: %w", err)
	}

	notifications := make([]*notification.Notification, len(models))
	for i, m := range models {
		notifications[i] = &notification.Notification{
			ID:        m.ID,
			UserID:    m.UserID,
			Title:     m.Title,
			Body:      m.Body,
			TargetURL: m.TargetURL,
			Read:      m.Read,
			CreatedAt: m.CreatedAt,
		}
	}
	return notifications, total, nil
}

// MarkRead marks a notification as read if it belongs to the user.
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Notification", id.String())
	}
	return nil
}
