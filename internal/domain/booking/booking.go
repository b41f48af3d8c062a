package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/clinlix/service-booking/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PaymentStatus tracks the booking's payment linkage.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking is the aggregate root for a scheduled cleaning engagement between
// a customer and a provider.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	customerID    uuid.UUID
	providerID    uuid.UUID
	addressID     uuid.UUID
	packageID     uuid.UUID
	addonIDs      []uuid.UUID
	recurring     bool
	contactEmail  string

	scheduledDate time.Time
	scheduledTime string

	totalEstimateCents int64
	totalFinalCents    *int64
	currency           string

	jobStatus       JobStatus
	paymentIntentID *string
	paymentStatus   PaymentStatus

	confirmedAt   *time.Time
	startedAt     *time.Time
	completedAt   *time.Time
	declinedAt    *time.Time
	cancelledAt   *time.Time
	declinedBy    *uuid.UUID
	declineReason string
	cancelReason  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "CL-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "CL-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with job status pending.
func NewBooking(
	customerID uuid.UUID,
	providerID uuid.UUID,
	addressID uuid.UUID,
	packageID uuid.UUID,
	addonIDs []uuid.UUID,
	contactEmail string,
	scheduledDate time.Time,
	scheduledTime string,
	recurring bool,
	totalEstimateCents int64,
	currency string,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if providerID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if addressID == uuid.Nil {
		return nil, domain.NewValidationError("address ID is required")
	}
	if packageID == uuid.Nil {
		return nil, domain.NewValidationError("package ID is required")
	}
	if contactEmail == "" {
		return nil, domain.NewValidationError("contact email is required")
	}
	if _, err := time.Parse("15:04", scheduledTime); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid requested time: %s", scheduledTime))
	}
	if totalEstimateCents <= 0 {
		return nil, domain.NewValidationError("total estimate must be positive")
	}
	if currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:                 uuid.New(),
		bookingNumber:      bookingNumber,
		customerID:         customerID,
		providerID:         providerID,
		addressID:          addressID,
		packageID:          packageID,
		addonIDs:           addonIDs,
		recurring:          recurring,
		contactEmail:       contactEmail,
		scheduledDate:      truncateToDate(scheduledDate),
		scheduledTime:      scheduledTime,
		totalEstimateCents: totalEstimateCents,
		currency:           currency,
		jobStatus:          JobStatusPending,
		paymentStatus:      PaymentStatusPending,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	customerID uuid.UUID,
	providerID uuid.UUID,
	addressID uuid.UUID,
	packageID uuid.UUID,
	addonIDs []uuid.UUID,
	recurring bool,
	contactEmail string,
	scheduledDate time.Time,
	scheduledTime string,
	totalEstimateCents int64,
	totalFinalCents *int64,
	currency string,
	jobStatus JobStatus,
	paymentIntentID *string,
	paymentStatus PaymentStatus,
	confirmedAt *time.Time,
	startedAt *time.Time,
	completedAt *time.Time,
	declinedAt *time.Time,
	cancelledAt *time.Time,
	declinedBy *uuid.UUID,
	declineReason string,
	cancelReason string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		bookingNumber:      bookingNumber,
		customerID:         customerID,
		providerID:         providerID,
		addressID:          addressID,
		packageID:          packageID,
		addonIDs:           addonIDs,
		recurring:          recurring,
		contactEmail:       contactEmail,
		scheduledDate:      scheduledDate,
		scheduledTime:      scheduledTime,
		totalEstimateCents: totalEstimateCents,
		totalFinalCents:    totalFinalCents,
		currency:           currency,
		jobStatus:          jobStatus,
		paymentIntentID:    paymentIntentID,
		paymentStatus:      paymentStatus,
		confirmedAt:        confirmedAt,
		startedAt:          startedAt,
		completedAt:        completedAt,
		declinedAt:         declinedAt,
		cancelledAt:        cancelledAt,
		declinedBy:         declinedBy,
		declineReason:      declineReason,
		cancelReason:       cancelReason,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// CustomerID returns the booking customer's user ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// ProviderID returns the assigned provider profile ID.
func (b *Booking) ProviderID() uuid.UUID { return b.providerID }

// AddressID returns the service address ID.
func (b *Booking) AddressID() uuid.UUID { return b.addressID }

// PackageID returns the base service package ID.
func (b *Booking) PackageID() uuid.UUID { return b.packageID }

// AddonIDs returns the selected addon IDs.
func (b *Booking) AddonIDs() []uuid.UUID { return b.addonIDs }

// Recurring returns true if the booking is for a recurring service.
func (b *Booking) Recurring() bool { return b.recurring }

// ContactEmail returns the customer's contact email captured at creation.
func (b *Booking) ContactEmail() string { return b.contactEmail }

// ScheduledDate returns the requested calendar date (midnight UTC).
func (b *Booking) ScheduledDate() time.Time { return b.scheduledDate }

// ScheduledTime returns the requested time of day in "15:04" form.
func (b *Booking) ScheduledTime() string { return b.scheduledTime }

// ScheduledAt combines the requested date and time into a single instant (UTC).
func (b *Booking) ScheduledAt() time.Time {
	tod, err := time.Parse("15:04", b.scheduledTime)
	if err != nil {
		return b.scheduledDate
	}
	return b.scheduledDate.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute)
}

// TotalEstimateCents returns the estimated price in minor currency units.
func (b *Booking) TotalEstimateCents() int64 { return b.totalEstimateCents }

// TotalFinalCents returns the final price, or nil before completion.
func (b *Booking) TotalFinalCents() *int64 { return b.totalFinalCents }

// Currency returns the currency code, derived from the service address.
func (b *Booking) Currency() string { return b.currency }

// JobStatus returns the authoritative fine-grained status.
func (b *Booking) JobStatus() JobStatus { return b.jobStatus }

// Status returns the coarse status projected from the job status.
func (b *Booking) Status() Status { return b.jobStatus.Coarse() }

// PaymentIntentID returns the opaque payment reference, or nil if unpaid.
func (b *Booking) PaymentIntentID() *string { return b.paymentIntentID }

// PaymentStatus returns the payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// ConfirmedAt returns the time the provider accepted the booking.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// StartedAt returns the time the job started.
func (b *Booking) StartedAt() *time.Time { return b.startedAt }

// CompletedAt returns the time the job completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// DeclinedAt returns the time the provider declined the booking.
func (b *Booking) DeclinedAt() *time.Time { return b.declinedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// DeclinedBy returns the user ID of the declining actor.
func (b *Booking) DeclinedBy() *uuid.UUID { return b.declinedBy }

// DeclineReason returns the decline reason.
func (b *Booking) DeclineReason() string { return b.declineReason }

// CancelReason returns the cancellation reason.
func (b *Booking) CancelReason() string { return b.cancelReason }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Accept transitions the booking from pending to confirmed.
func (b *Booking) Accept(now time.Time) error {
	return b.AdvanceTo(JobStatusConfirmed, now)
}

// Decline transitions the booking from pending to declined, recording the
// declining actor and the mandatory reason.
func (b *Booking) Decline(actorUserID uuid.UUID, reason string, now time.Time) error {
	if reason == "" {
		return domain.NewMissingReasonError()
	}
	if err := ValidateTransition(b.jobStatus, JobStatusDeclined); err != nil {
		return err
	}
	b.jobStatus = JobStatusDeclined
	b.declinedAt = &now
	b.declinedBy = &actorUserID
	b.declineReason = reason
	b.updatedAt = now
	return nil
}

// AdvanceTo applies a forward transition, enforcing the transition graph, the
// premature-start date guard and the once-only timestamp stamping.
func (b *Booking) AdvanceTo(target JobStatus, now time.Time) error {
	// A job must not begin before its scheduled day; time of day is ignored.
	// The date guard outranks the transition graph, so a too-early request is
	// always reported as premature even when the transition itself is illegal.
	if target == JobStatusOnTheWay || target == JobStatusStarted {
		if b.scheduledDate.After(truncateToDate(now)) {
			return domain.NewPrematureStartError(b.scheduledDate.Format("2006-01-02"))
		}
	}

	if err := ValidateTransition(b.jobStatus, target); err != nil {
		return err
	}

	b.jobStatus = target
	switch target {
	case JobStatusConfirmed:
		b.confirmedAt = &now
	case JobStatusStarted:
		b.startedAt = &now
	case JobStatusCompleted:
		b.completedAt = &now
		final := b.totalEstimateCents
		b.totalFinalCents = &final
	}
	b.updatedAt = now
	return nil
}

// Reassign moves a declined booking back to pending with a new provider,
// clearing the decline metadata. Only open while the booking is declined.
func (b *Booking) Reassign(newProviderID uuid.UUID, now time.Time) error {
	if b.jobStatus != JobStatusDeclined {
		return domain.NewValidationError("only a declined booking can be reassigned")
	}
	if newProviderID == uuid.Nil {
		return domain.NewValidationError("provider ID is required")
	}
	b.providerID = newProviderID
	b.jobStatus = JobStatusPending
	b.declinedAt = nil
	b.declinedBy = nil
	b.declineReason = ""
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled from any non-terminal state.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.jobStatus.IsTerminal() {
		return domain.NewAlreadyTerminalError(string(b.jobStatus))
	}
	b.jobStatus = JobStatusCancelled
	b.cancelReason = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// ForceCancelDeclined finalizes a declined booking to cancelled. This is the
// system path taken when the reassignment window lapses; the public cancel
// operation still treats declined as terminal.
func (b *Booking) ForceCancelDeclined(reason string, now time.Time) error {
	if b.jobStatus != JobStatusDeclined {
		return domain.NewValidationError("only a declined booking can be auto-cancelled")
	}
	b.jobStatus = JobStatusCancelled
	b.cancelReason = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// MarkPaid records the payment reference once payment succeeds. A booking
// that already reached a terminal state rejects the payment: the only
// permitted payment mutation after that point is paid to refunded.
func (b *Booking) MarkPaid(paymentIntentID string) error {
	if b.jobStatus.IsTerminal() {
		return domain.NewAlreadyTerminalError(string(b.jobStatus))
	}
	b.paymentIntentID = &paymentIntentID
	b.paymentStatus = PaymentStatusPaid
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkRefunded records that the payment has been refunded.
func (b *Booking) MarkRefunded() {
	b.paymentStatus = PaymentStatusRefunded
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

func truncateToDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
