package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/clinlix/service-booking/pkg/kafka"
)

// BookingPaymentLinker is the application operation invoked when a payment
// succeeds for a booking.
type BookingPaymentLinker interface {
	MarkBookingPaid(ctx context.Context, bookingID uuid.UUID, paymentIntentID string) error
}

// PaymentEventConsumer consumes payment.events and links successful payments
// to their bookings.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  BookingPaymentLinker
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a consumer in the given group.
func NewPaymentEventConsumer(brokers []string, groupID string, service BookingPaymentLinker, logger *zap.Logger) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		service:  service,
		logger:   logger,
	}
}

// Start consumes until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka reader.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		return err
	}

	// Other payment event types on the topic are not ours to handle.
	if cloudEvent.Type != PaymentSucceeded {
		return nil
	}

	var evt PaymentSucceededEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		return fmt.Errorf("failed to parse payment succeeded event: %w", err)
	}

	c.logger.Info("payment succeeded",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_intent_id", evt.PaymentIntentID),
	)

	return c.service.MarkBookingPaid(ctx, evt.BookingID, evt.PaymentIntentID)
}
