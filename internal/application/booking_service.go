package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	addressDomain "github.com/clinlix/service-booking/internal/domain/address"
	bookingDomain "github.com/clinlix/service-booking/internal/domain/booking"
	"github.com/clinlix/service-booking/internal/domain/catalog"
	providerDomain "github.com/clinlix/service-booking/internal/domain/provider"
	"github.com/clinlix/service-booking/internal/events"
	"github.com/clinlix/service-booking/pkg/domain"
	"github.com/clinlix/service-booking/pkg/kafka"
)

// declineReassignWindow is how long a customer has to reassign a declined
// booking before the system cancels it with a full refund.
const declineReassignWindow = 24 * time.Hour

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CustomerID    uuid.UUID   `json:"customer_id" binding:"required"`
	ProviderID    uuid.UUID   `json:"provider_id" binding:"required"`
	AddressID     uuid.UUID   `json:"address_id" binding:"required"`
	PackageID     uuid.UUID   `json:"package_id" binding:"required"`
	AddonIDs      []uuid.UUID `json:"addon_ids"`
	ContactEmail  string      `json:"contact_email" binding:"required,email"`
	RequestedDate string      `json:"requested_date" binding:"required"`
	RequestedTime string      `json:"requested_time" binding:"required"`
	Recurring     bool        `json:"recurring"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID   `json:"id"`
	BookingNumber      string      `json:"booking_number"`
	CustomerID         uuid.UUID   `json:"customer_id"`
	ProviderID         uuid.UUID   `json:"provider_id"`
	AddressID          uuid.UUID   `json:"address_id"`
	PackageID          uuid.UUID   `json:"package_id"`
	AddonIDs           []uuid.UUID `json:"addon_ids"`
	Recurring          bool        `json:"recurring"`
	Status             string      `json:"status"`
	JobStatus          string      `json:"job_status"`
	RequestedDate      string      `json:"requested_date"`
	RequestedTime      string      `json:"requested_time"`
	TotalEstimateCents int64       `json:"total_estimate_cents"`
	TotalFinalCents    *int64      `json:"total_final_cents,omitempty"`
	Currency           string      `json:"currency"`
	PaymentStatus      string      `json:"payment_status"`
	ConfirmedAt        *time.Time  `json:"confirmed_at,omitempty"`
	StartedAt          *time.Time  `json:"started_at,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	DeclinedAt         *time.Time  `json:"declined_at,omitempty"`
	CancelledAt        *time.Time  `json:"cancelled_at,omitempty"`
	DeclineReason      string      `json:"decline_reason,omitempty"`
	CancelReason       string      `json:"cancel_reason,omitempty"`
	Version            int64       `json:"version"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// DeclineResultDTO is returned from a decline, carrying the reassignment deadline.
type DeclineResultDTO struct {
	Booking   BookingDTO `json:"booking"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CancelResultDTO is returned from a cancellation.
type CancelResultDTO struct {
	RefundID          string `json:"refund_id,omitempty"`
	RefundAmountCents int64  `json:"refund_amount_cents"`
	RefundPercentage  int    `json:"refund_percentage"`
	Currency          string `json:"currency"`
}

// RefundPreviewDTO is the non-mutating cancellation quote.
type RefundPreviewDTO struct {
	RefundAmountCents int64  `json:"refund_amount_cents"`
	RefundPercentage  int    `json:"refund_percentage"`
	Currency          string `json:"currency"`
}

// EventPublisher publishes CloudEvents to a topic. Satisfied by the Kafka
// producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingServiceDeps bundles the orchestrator's collaborators.
type BookingServiceDeps struct {
	Bookings  bookingDomain.Repository
	Catalog   catalog.Repository
	Providers providerDomain.Repository
	Addresses addressDomain.Repository
	Refunds   bookingDomain.RefundGateway
	Notifier  bookingDomain.Notifier
	Mailer    bookingDomain.Mailer
	Scheduler bookingDomain.DeadlineScheduler
	Schedule  bookingDomain.RefundSchedule
	Producer  EventPublisher
	Logger    *zap.Logger
}

// BookingService is the application service orchestrating the booking lifecycle.
type BookingService struct {
	bookings  bookingDomain.Repository
	catalog   catalog.Repository
	providers providerDomain.Repository
	addresses addressDomain.Repository
	refunds   bookingDomain.RefundGateway
	notifier  bookingDomain.Notifier
	mailer    bookingDomain.Mailer
	scheduler bookingDomain.DeadlineScheduler
	schedule  bookingDomain.RefundSchedule
	producer  EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(deps BookingServiceDeps) *BookingService {
	return &BookingService{
		bookings:  deps.Bookings,
		catalog:   deps.Catalog,
		providers: deps.Providers,
		addresses: deps.Addresses,
		refunds:   deps.Refunds,
		notifier:  deps.Notifier,
		mailer:    deps.Mailer,
		scheduler: deps.Scheduler,
		schedule:  deps.Schedule,
		producer:  deps.Producer,
		logger:    deps.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking creates a new booking for the calling customer. Pricing is
// computed server-side from the catalog, never trusted from the client.
func (s *BookingService) CreateBooking(ctx context.Context, callerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if callerID != req.CustomerID {
		return nil, domain.NewUnauthorizedError("bookings can only be created for yourself")
	}

	requestedDate, err := time.Parse("2006-01-02", req.RequestedDate)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid requested date: %s", req.RequestedDate))
	}

	addr, err := s.addresses.FindByID(ctx, req.AddressID)
	if err != nil {
		return nil, err
	}
	if !addr.BelongsTo(callerID) {
		return nil, domain.NewInvalidAddressError("address does not belong to this user")
	}

	if _, err := s.providers.FindByID(ctx, req.ProviderID); err != nil {
		return nil, err
	}
	available, err := s.providers.HasAvailability(ctx, req.ProviderID, requestedDate)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewProviderUnavailableError(req.RequestedDate)
	}

	pkg, err := s.catalog.FindPackageByID(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	addons, err := s.catalog.FindAddonsByIDs(ctx, req.AddonIDs)
	if err != nil {
		return nil, err
	}
	estimate, err := bookingDomain.ComputeEstimate(pkg, addons, req.AddonIDs, req.Recurring)
	if err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		req.CustomerID,
		req.ProviderID,
		req.AddressID,
		req.PackageID,
		req.AddonIDs,
		req.ContactEmail,
		requestedDate,
		req.RequestedTime,
		req.Recurring,
		estimate.TotalCents(),
		addr.Currency(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	evt := events.BookingRequestedEvent{
		BookingID:          bk.ID(),
		BookingNumber:      bk.BookingNumber(),
		CustomerID:         bk.CustomerID(),
		ProviderID:         bk.ProviderID(),
		ScheduledDate:      req.RequestedDate,
		ScheduledTime:      req.RequestedTime,
		TotalEstimateCents: bk.TotalEstimateCents(),
		Currency:           bk.Currency(),
		OccurredAt:         s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, evt)

	s.notifyProvider(ctx, bk.ProviderID(),
		"New booking request",
		fmt.Sprintf("Booking %s is waiting for your confirmation.", bk.BookingNumber()),
		fmt.Sprintf("/provider/jobs/%s", bk.ID()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// AcceptBooking transitions a pending booking to confirmed. Only the user
// owning the booking's assigned provider profile may accept.
func (s *BookingService) AcceptBooking(ctx context.Context, bookingID, actingUserID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProvider(ctx, bk, actingUserID); err != nil {
		return nil, err
	}

	oldStatus := bk.JobStatus()
	if err := bk.Accept(s.now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingAcceptedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		ProviderID:    bk.ProviderID(),
		OccurredAt:    s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingAccepted, evt)
	s.publishStatusChanged(ctx, bk, oldStatus)

	s.dispatchNotification(ctx, []uuid.UUID{bk.CustomerID()},
		"Booking confirmed",
		fmt.Sprintf("Your booking %s has been confirmed by the provider.", bk.BookingNumber()),
		fmt.Sprintf("/bookings/%s", bk.ID()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// DeclineBooking declines a pending booking with a mandatory reason, opens
// the 24-hour reassignment window and schedules its expiry.
func (s *BookingService) DeclineBooking(ctx context.Context, bookingID, actingUserID uuid.UUID, reason string) (*DeclineResultDTO, error) {
	if reason == "" {
		return nil, domain.NewMissingReasonError()
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProvider(ctx, bk, actingUserID); err != nil {
		return nil, err
	}

	oldStatus := bk.JobStatus()
	now := s.now()
	if err := bk.Decline(actingUserID, reason, now); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	expiresAt := now.Add(declineReassignWindow)
	if err := s.scheduler.ScheduleAutoCancel(ctx, bk.ID(), expiresAt); err != nil {
		s.logger.Error("failed to schedule auto-cancel deadline",
			zap.String("booking_id", bk.ID().String()),
			zap.Error(err),
		)
	}

	evt := events.BookingDeclinedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		ProviderID:    bk.ProviderID(),
		Reason:        reason,
		ExpiresAt:     expiresAt,
		OccurredAt:    now,
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingDeclined, evt)
	s.publishStatusChanged(ctx, bk, oldStatus)

	s.dispatchNotification(ctx, []uuid.UUID{bk.CustomerID()},
		"Booking declined",
		fmt.Sprintf("The provider declined booking %s. Pick a new provider within 24 hours or the booking is cancelled with a full refund.", bk.BookingNumber()),
		fmt.Sprintf("/bookings/%s/reassign", bk.ID()),
	)

	go func(to, number, reason string, deadline time.Time) {
		if err := s.mailer.SendBookingDeclined(to, number, reason, deadline); err != nil {
			s.logger.Warn("failed to send decline email",
				zap.String("booking_number", number),
				zap.Error(err),
			)
		}
	}(bk.ContactEmail(), bk.BookingNumber(), reason, expiresAt)

	return &DeclineResultDTO{Booking: toBookingDTO(bk), ExpiresAt: expiresAt}, nil
}

// UpdateJobStatus applies a provider-driven forward transition.
func (s *BookingService) UpdateJobStatus(ctx context.Context, bookingID, actingUserID uuid.UUID, newStatus string) (*BookingDTO, error) {
	target, err := bookingDomain.ParseJobStatus(newStatus)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if target == bookingDomain.JobStatusDeclined {
		return nil, domain.NewValidationError("declining requires the decline operation with a reason")
	}
	if target == bookingDomain.JobStatusCancelled {
		return nil, domain.NewValidationError("cancelling requires the cancel operation")
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProvider(ctx, bk, actingUserID); err != nil {
		return nil, err
	}

	oldStatus := bk.JobStatus()
	if err := bk.AdvanceTo(target, s.now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	if target == bookingDomain.JobStatusCompleted {
		evt := events.BookingCompletedEvent{
			BookingID:       bk.ID(),
			BookingNumber:   bk.BookingNumber(),
			CustomerID:      bk.CustomerID(),
			ProviderID:      bk.ProviderID(),
			TotalFinalCents: *bk.TotalFinalCents(),
			Currency:        bk.Currency(),
			OccurredAt:      s.now(),
		}
		s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCompleted, evt)
	}
	s.publishStatusChanged(ctx, bk, oldStatus)

	s.dispatchNotification(ctx, []uuid.UUID{bk.CustomerID()},
		"Booking update",
		statusMessage(target, bk.BookingNumber()),
		fmt.Sprintf("/bookings/%s", bk.ID()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a non-terminal booking. The refund is quoted from the
// tier schedule for customer cancellations and in full for provider
// cancellations, and is executed before any state is persisted: a failed
// gateway call leaves the booking untouched.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actingUserID uuid.UUID, reason string) (*CancelResultDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	byProvider, err := s.authorizeCancelActor(ctx, bk, actingUserID)
	if err != nil {
		return nil, err
	}

	if bk.JobStatus().IsTerminal() {
		return nil, domain.NewAlreadyTerminalError(string(bk.JobStatus()))
	}

	now := s.now()
	quote := s.schedule.Quote(bk.ScheduledAt(), now, bk.TotalEstimateCents())
	if byProvider {
		quote = bookingDomain.FullRefund(bk.TotalEstimateCents())
	}

	refundID, refunded, err := s.executeRefund(ctx, bk, quote)
	if err != nil {
		return nil, err
	}

	oldStatus := bk.JobStatus()
	if err := bk.Cancel(reason, now); err != nil {
		return nil, err
	}
	if refunded {
		bk.MarkRefunded()
	}
	bk.IncrementVersion()

	record := bookingDomain.NewCancellationRecord(bk.ID(), &actingUserID, quote, refundID, reason)
	if err := s.bookings.UpdateWithCancellation(ctx, bk, record); err != nil {
		return nil, err
	}

	s.publishCancelled(ctx, bk, record)
	s.publishStatusChanged(ctx, bk, oldStatus)

	s.dispatchNotification(ctx, []uuid.UUID{bk.CustomerID()},
		"Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled. Refund: %d%%.", bk.BookingNumber(), quote.Percentage),
		fmt.Sprintf("/bookings/%s", bk.ID()),
	)
	s.notifyProvider(ctx, bk.ProviderID(),
		"Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled.", bk.BookingNumber()),
		fmt.Sprintf("/provider/jobs/%s", bk.ID()),
	)

	go func(to, number string, q bookingDomain.RefundQuote, currency string) {
		if err := s.mailer.SendBookingCancelled(to, number, q, currency); err != nil {
			s.logger.Warn("failed to send cancellation email",
				zap.String("booking_number", number),
				zap.Error(err),
			)
		}
	}(bk.ContactEmail(), bk.BookingNumber(), quote, bk.Currency())

	return &CancelResultDTO{
		RefundID:          refundID,
		RefundAmountCents: quote.AmountCents,
		RefundPercentage:  quote.Percentage,
		Currency:          bk.Currency(),
	}, nil
}

// ReassignBooking moves a declined booking to a new provider, keeping it
// alive past the decline. Only the booking's customer may reassign.
func (s *BookingService) ReassignBooking(ctx context.Context, bookingID, actingUserID, newProviderID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.CustomerID() != actingUserID {
		return nil, domain.NewUnauthorizedError("only the booking customer can reassign")
	}

	if _, err := s.providers.FindByID(ctx, newProviderID); err != nil {
		return nil, err
	}
	available, err := s.providers.HasAvailability(ctx, newProviderID, bk.ScheduledDate())
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewProviderUnavailableError(bk.ScheduledDate().Format("2006-01-02"))
	}

	oldProviderID := bk.ProviderID()
	oldStatus := bk.JobStatus()
	if err := bk.Reassign(newProviderID, s.now()); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingReassignedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		OldProviderID: oldProviderID,
		NewProviderID: newProviderID,
		OccurredAt:    s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingReassigned, evt)
	s.publishStatusChanged(ctx, bk, oldStatus)

	s.notifyProvider(ctx, newProviderID,
		"New booking request",
		fmt.Sprintf("Booking %s is waiting for your confirmation.", bk.BookingNumber()),
		fmt.Sprintf("/provider/jobs/%s", bk.ID()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// AutoCancelDeclined is the system path fired when a declined booking's
// reassignment window lapses. It is a no-op if the customer has already
// acted; otherwise it cancels with a full refund.
func (s *BookingService) AutoCancelDeclined(ctx context.Context, bookingID uuid.UUID) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if bk.JobStatus() != bookingDomain.JobStatusDeclined {
		s.logger.Info("skipping auto-cancel, booking no longer declined",
			zap.String("booking_id", bookingID.String()),
			zap.String("job_status", string(bk.JobStatus())),
		)
		return nil
	}

	now := s.now()
	quote := bookingDomain.FullRefund(bk.TotalEstimateCents())

	refundID, refunded, err := s.executeRefund(ctx, bk, quote)
	if err != nil {
		return err
	}

	oldStatus := bk.JobStatus()
	if err := bk.ForceCancelDeclined("reassignment window expired", now); err != nil {
		return err
	}
	if refunded {
		bk.MarkRefunded()
	}
	bk.IncrementVersion()

	record := bookingDomain.NewCancellationRecord(bk.ID(), nil, quote, refundID, "reassignment window expired")
	if err := s.bookings.UpdateWithCancellation(ctx, bk, record); err != nil {
		return err
	}

	s.publishCancelled(ctx, bk, record)
	s.publishStatusChanged(ctx, bk, oldStatus)

	s.dispatchNotification(ctx, []uuid.UUID{bk.CustomerID()},
		"Booking cancelled",
		fmt.Sprintf("Booking %s was cancelled after the reassignment window expired. A full refund has been issued.", bk.BookingNumber()),
		fmt.Sprintf("/bookings/%s", bk.ID()),
	)

	go func(to, number string, q bookingDomain.RefundQuote, currency string) {
		if err := s.mailer.SendBookingCancelled(to, number, q, currency); err != nil {
			s.logger.Warn("failed to send cancellation email",
				zap.String("booking_number", number),
				zap.Error(err),
			)
		}
	}(bk.ContactEmail(), bk.BookingNumber(), quote, bk.Currency())

	return nil
}

// PreviewCancellation quotes the refund for cancelling now, without mutating
// anything. It consumes the same schedule as the cancel path.
func (s *BookingService) PreviewCancellation(ctx context.Context, bookingID, actingUserID uuid.UUID) (*RefundPreviewDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	byProvider, err := s.authorizeCancelActor(ctx, bk, actingUserID)
	if err != nil {
		return nil, err
	}

	if bk.JobStatus().IsTerminal() {
		return nil, domain.NewAlreadyTerminalError(string(bk.JobStatus()))
	}

	quote := s.schedule.Quote(bk.ScheduledAt(), s.now(), bk.TotalEstimateCents())
	if byProvider {
		quote = bookingDomain.FullRefund(bk.TotalEstimateCents())
	}

	return &RefundPreviewDTO{
		RefundAmountCents: quote.AmountCents,
		RefundPercentage:  quote.Percentage,
		Currency:          bk.Currency(),
	}, nil
}

// MarkBookingPaid links the booking to its payment intent once the payment
// service reports success. Invoked by the payment events consumer.
func (s *BookingService) MarkBookingPaid(ctx context.Context, bookingID uuid.UUID, paymentIntentID string) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := bk.MarkPaid(paymentIntentID); err != nil {
		// A payment landing after cancellation needs an operator, not a write.
		s.logger.Warn("payment received for terminal booking",
			zap.String("booking_id", bookingID.String()),
			zap.String("payment_intent_id", paymentIntentID),
			zap.String("job_status", string(bk.JobStatus())),
		)
		return err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return err
	}

	s.logger.Info("booking marked paid",
		zap.String("booking_id", bookingID.String()),
	)
	return nil
}

// GetBooking retrieves a single booking visible to the caller.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetProviderBookings retrieves paginated bookings assigned to the provider
// profile owned by the given user.
func (s *BookingService) GetProviderBookings(ctx context.Context, actingUserID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	prof, err := s.providers.FindByUserID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	bookings, total, err := s.bookings.FindByProviderID(ctx, prof.ID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByJobStatus   map[string]int64 `json:"by_job_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByJobStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByJobStatus: counts}, nil
}

// --- Helpers ---

// authorizeProvider verifies the acting user owns the booking's assigned
// provider profile.
func (s *BookingService) authorizeProvider(ctx context.Context, bk *bookingDomain.Booking, actingUserID uuid.UUID) error {
	prof, err := s.providers.FindByUserID(ctx, actingUserID)
	if err != nil {
		return domain.NewUnauthorizedError("no provider profile for this user")
	}
	if prof.ID != bk.ProviderID() {
		return domain.NewUnauthorizedError("booking is not assigned to this provider")
	}
	return nil
}

// authorizeCancelActor permits the booking's customer or its assigned
// provider's user to cancel; the bool result is true for the provider.
func (s *BookingService) authorizeCancelActor(ctx context.Context, bk *bookingDomain.Booking, actingUserID uuid.UUID) (bool, error) {
	if bk.CustomerID() == actingUserID {
		return false, nil
	}
	if err := s.authorizeProvider(ctx, bk, actingUserID); err == nil {
		return true, nil
	}
	return false, domain.NewUnauthorizedError("only the customer or the assigned provider can cancel")
}

// executeRefund calls the refund gateway when there is a paid amount to
// return. It returns the gateway refund ID and whether a refund happened.
func (s *BookingService) executeRefund(ctx context.Context, bk *bookingDomain.Booking, quote bookingDomain.RefundQuote) (string, bool, error) {
	if quote.AmountCents == 0 || bk.PaymentStatus() != bookingDomain.PaymentStatusPaid || bk.PaymentIntentID() == nil {
		return "", false, nil
	}

	receipt, err := s.refunds.Refund(ctx, *bk.PaymentIntentID(), quote.AmountCents, bk.Currency())
	if err != nil {
		return "", false, domain.NewRefundFailedError(err)
	}
	return receipt.RefundID, true, nil
}

func (s *BookingService) publishCancelled(ctx context.Context, bk *bookingDomain.Booking, record *bookingDomain.CancellationRecord) {
	evt := events.BookingCancelledEvent{
		BookingID:         bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		CustomerID:        bk.CustomerID(),
		CancelledBy:       record.CancelledBy,
		Reason:            record.Reason,
		RefundID:          record.RefundID,
		RefundAmountCents: record.RefundAmountCents,
		RefundPercentage:  record.RefundPercentage,
		Currency:          bk.Currency(),
		OccurredAt:        s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, oldStatus bookingDomain.JobStatus) {
	evt := events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		OldStatus:  string(oldStatus),
		NewStatus:  string(bk.JobStatus()),
		CustomerID: bk.CustomerID(),
		ProviderID: bk.ProviderID(),
		OccurredAt: s.now(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// dispatchNotification delivers a notification best-effort: failures are
// logged and never block the originating operation.
func (s *BookingService) dispatchNotification(ctx context.Context, userIDs []uuid.UUID, title, body, targetURL string) {
	if err := s.notifier.Notify(ctx, userIDs, title, body, targetURL); err != nil {
		s.logger.Warn("failed to dispatch notification",
			zap.String("title", title),
			zap.Error(err),
		)
	}
}

// notifyProvider resolves the provider profile to its owning user and
// notifies them.
func (s *BookingService) notifyProvider(ctx context.Context, providerID uuid.UUID, title, body, targetURL string) {
	prof, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		s.logger.Warn("failed to resolve provider for notification",
			zap.String("provider_id", providerID.String()),
			zap.Error(err),
		)
		return
	}
	s.dispatchNotification(ctx, []uuid.UUID{prof.UserID}, title, body, targetURL)
}

func statusMessage(status bookingDomain.JobStatus, number string) string {
	switch status {
	case bookingDomain.JobStatusOnTheWay:
		return fmt.Sprintf("Your cleaner is on the way for booking %s.", number)
	case bookingDomain.JobStatusArrived:
		return fmt.Sprintf("Your cleaner has arrived for booking %s.", number)
	case bookingDomain.JobStatusStarted:
		return fmt.Sprintf("Work has started on booking %s.", number)
	case bookingDomain.JobStatusCompleted:
		return fmt.Sprintf("Booking %s is complete.", number)
	default:
		return fmt.Sprintf("Booking %s status changed to %s.", number, status)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                 bk.ID(),
		BookingNumber:      bk.BookingNumber(),
		CustomerID:         bk.CustomerID(),
		ProviderID:         bk.ProviderID(),
		AddressID:          bk.AddressID(),
		PackageID:          bk.PackageID(),
		AddonIDs:           bk.AddonIDs(),
		Recurring:          bk.Recurring(),
		Status:             string(bk.Status()),
		JobStatus:          string(bk.JobStatus()),
		RequestedDate:      bk.ScheduledDate().Format("2006-01-02"),
		RequestedTime:      bk.ScheduledTime(),
		TotalEstimateCents: bk.TotalEstimateCents(),
		TotalFinalCents:    bk.TotalFinalCents(),
		Currency:           bk.Currency(),
		PaymentStatus:      string(bk.PaymentStatus()),
		ConfirmedAt:        bk.ConfirmedAt(),
		StartedAt:          bk.StartedAt(),
		CompletedAt:        bk.CompletedAt(),
		DeclinedAt:         bk.DeclinedAt(),
		CancelledAt:        bk.CancelledAt(),
		DeclineReason:      bk.DeclineReason(),
		CancelReason:       bk.CancelReason(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
