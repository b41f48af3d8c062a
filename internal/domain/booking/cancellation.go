package booking

import (
	"time"

	"github.com/google/uuid"
)

// CancellationRecord is the immutable audit record created once per
// cancellation. It is never mutated after creation.
type CancellationRecord struct {
	ID                uuid.UUID
	BookingID         uuid.UUID
	CancelledBy       *uuid.UUID // nil for the system actor
	RefundAmountCents int64
	RefundPercentage  int
	RefundID          string
	Reason            string
	CreatedAt         time.Time
}

// NewCancellationRecord creates the audit record for a cancellation.
// cancelledBy is nil when the system cancels (decline window expiry).
func NewCancellationRecord(bookingID uuid.UUID, cancelledBy *uuid.UUID, quote RefundQuote, refundID, reason string) *CancellationRecord {
	return &CancellationRecord{
		ID:                uuid.New(),
		BookingID:         bookingID,
		CancelledBy:       cancelledBy,
		RefundAmountCents: quote.AmountCents,
		RefundPercentage:  quote.Percentage,
		RefundID:          refundID,
		Reason:            reason,
		CreatedAt:         time.Now().UTC(),
	}
}
