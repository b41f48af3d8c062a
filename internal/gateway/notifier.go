package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinlix/service-booking/internal/domain/notification"
	"github.com/clinlix/service-booking/internal/events"
	"github.com/clinlix/service-booking/pkg/kafka"
)

// PersistentNotifier stores one notification row per recipient and emits a
// single notification.requested event for downstream delivery workers.
type PersistentNotifier struct {
	notifications notification.Repository
	producer      *kafka.Producer
	logger        *zap.Logger
}

// NewPersistentNotifier creates a new PersistentNotifier.
func NewPersistentNotifier(notifications notification.Repository, producer *kafka.Producer, logger *zap.Logger) *PersistentNotifier {
	return &PersistentNotifier{
		notifications: notifications,
		producer:      producer,
		logger:        logger,
	}
}

// Notify persists the notification for each user and publishes the fan-out
// event. A failed row insert is reported to the caller; the event is emitted
// for the rows that were stored.
func (n *PersistentNotifier) Notify(ctx context.Context, userIDs []uuid.UUID, title, body, targetURL string) error {
	var firstErr error
	delivered := make([]uuid.UUID, 0, len(userIDs))
	for _, userID := range userIDs {
		record := notification.New(userID, title, body, targetURL)
		if err := n.notifications.Save(ctx, record); err != nil {
			n.logger.Warn("failed to persist notification",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delivered = append(delivered, userID)
	}

	if len(delivered) > 0 {
		evt := events.NotificationRequestedEvent{
			UserIDs:    delivered,
			Title:      title,
			Body:       body,
			TargetURL:  targetURL,
			OccurredAt: time.Now().UTC(),
		}
		cloudEvent, err := kafka.NewCloudEvent("service-booking", events.NotificationRequested, evt)
		if err != nil {
			n.logger.Error("failed to create notification event", zap.Error(err))
		} else if err := n.producer.PublishEvent(ctx, events.TopicNotificationEvents, cloudEvent); err != nil {
			n.logger.Error("failed to publish notification event", zap.Error(err))
		}
	}

	return firstErr
}
