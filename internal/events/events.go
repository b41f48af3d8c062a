package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents      = "booking.events"
	TopicPaymentEvents      = "payment.events"
	TopicNotificationEvents = "notification.events"
)

// Event types on booking.events.
const (
	BookingRequested     = "booking.requested"
	BookingAccepted      = "booking.accepted"
	BookingDeclined      = "booking.declined"
	BookingReassigned    = "booking.reassigned"
	BookingStatusChanged = "booking.status_changed"
	BookingCancelled     = "booking.cancelled"
	BookingCompleted     = "booking.completed"
)

// Event types on payment.events (consumed).
const (
	PaymentSucceeded = "payment.succeeded"
)

// Event types on notification.events.
const (
	NotificationRequested = "notification.requested"
)

// BookingRequestedEvent is published when a customer creates a booking.
type BookingRequestedEvent struct {
	BookingID          uuid.UUID `json:"booking_id"`
	BookingNumber      string    `json:"booking_number"`
	CustomerID         uuid.UUID `json:"customer_id"`
	ProviderID         uuid.UUID `json:"provider_id"`
	ScheduledDate      string    `json:"scheduled_date"`
	ScheduledTime      string    `json:"scheduled_time"`
	TotalEstimateCents int64     `json:"total_estimate_cents"`
	Currency           string    `json:"currency"`
	OccurredAt         time.Time `json:"occurred_at"`
}

// BookingAcceptedEvent is published when a provider accepts a booking.
type BookingAcceptedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingDeclinedEvent is published when a provider declines a booking.
type BookingDeclinedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	Reason        string    `json:"reason"`
	ExpiresAt     time.Time `json:"expires_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingReassignedEvent is published when a customer reassigns a declined booking.
type BookingReassignedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	OldProviderID uuid.UUID `json:"old_provider_id"`
	NewProviderID uuid.UUID `json:"new_provider_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published for every successful job status
// transition; it is the webhook surface consumed by the notification worker.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID         uuid.UUID  `json:"booking_id"`
	BookingNumber     string     `json:"booking_number"`
	CustomerID        uuid.UUID  `json:"customer_id"`
	CancelledBy       *uuid.UUID `json:"cancelled_by,omitempty"`
	Reason            string     `json:"reason"`
	RefundID          string     `json:"refund_id,omitempty"`
	RefundAmountCents int64      `json:"refund_amount_cents"`
	RefundPercentage  int        `json:"refund_percentage"`
	Currency          string     `json:"currency"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

// BookingCompletedEvent is published when a job completes.
type BookingCompletedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	CustomerID      uuid.UUID `json:"customer_id"`
	ProviderID      uuid.UUID `json:"provider_id"`
	TotalFinalCents int64     `json:"total_final_cents"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent is consumed from payment.events; it links the
// booking to its payment intent.
type PaymentSucceededEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// NotificationRequestedEvent is emitted for each dispatched notification so
// downstream delivery workers (push, email digests) can fan out.
type NotificationRequestedEvent struct {
	UserIDs    []uuid.UUID `json:"user_ids"`
	Title      string      `json:"title"`
	Body       string      `json:"body"`
	TargetURL  string      `json:"target_url"`
	OccurredAt time.Time   `json:"occurred_at"`
}
