package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefundReceipt is the result of a successful refund gateway call.
type RefundReceipt struct {
	RefundID    string
	AmountCents int64
	Currency    string
}

// RefundGateway executes monetary refunds against an external payment network.
// Amounts are always integer minor currency units.
type RefundGateway interface {
	Refund(ctx context.Context, paymentReference string, amountCents int64, currency string) (*RefundReceipt, error)
}

// Notifier delivers a user-facing message to a set of users. Implementations
// are best-effort: failures are logged by the caller and never block the
// originating operation.
type Notifier interface {
	Notify(ctx context.Context, userIDs []uuid.UUID, title, body, targetURL string) error
}

// Mailer sends transactional email. Best-effort, like Notifier.
type Mailer interface {
	SendBookingDeclined(to, bookingNumber, reason string, reassignBy time.Time) error
	SendBookingCancelled(to, bookingNumber string, refund RefundQuote, currency string) error
}

// DeadlineScheduler schedules the durable auto-cancel task fired when a
// declined booking's reassignment window lapses.
type DeadlineScheduler interface {
	ScheduleAutoCancel(ctx context.Context, bookingID uuid.UUID, at time.Time) error
}
