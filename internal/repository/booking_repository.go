package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/clinlix/service-booking/internal/domain/booking"
	"github.com/clinlix/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table. The coarse status
// column is a projection of job_status kept for dashboard queries; job_status
// is authoritative.
type BookingModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber      string          `gorm:"uniqueIndex;not null;size:20"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProviderID         uuid.UUID       `gorm:"type:uuid;index;not null"`
	AddressID          uuid.UUID       `gorm:"type:uuid;not null"`
	PackageID          uuid.UUID       `gorm:"type:uuid;not null"`
	AddonIDs           json.RawMessage `gorm:"type:jsonb"`
	Recurring          bool            `gorm:"not null;default:false"`
	ContactEmail       string          `gorm:"not null;size:255"`
	Status             string          `gorm:"not null;size:20;index"`
	JobStatus          string          `gorm:"not null;size:20;index"`
	ScheduledDate      time.Time       `gorm:"not null;index"`
	ScheduledTime      string          `gorm:"not null;size:5"`
	TotalEstimateCents int64           `gorm:"not null"`
	TotalFinalCents    *int64          `gorm:""`
	Currency           string          `gorm:"not null;size:3"`
	PaymentIntentID    *string         `gorm:"size:255"`
	PaymentStatus      string          `gorm:"not null;size:20;default:'pending'"`
	ConfirmedAt        *time.Time      `gorm:""`
	StartedAt          *time.Time      `gorm:""`
	CompletedAt        *time.Time      `gorm:""`
	DeclinedAt         *time.Time      `gorm:""`
	CancelledAt        *time.Time      `gorm:""`
	DeclinedBy         *uuid.UUID      `gorm:"type:uuid"`
	DeclineReason      string          `gorm:"size:500"`
	CancelReason       string          `gorm:"size:500"`
	Version            int64           `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// CancellationModel is the GORM model for the booking_cancellations audit table.
type CancellationModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	CancelledBy       *uuid.UUID `gorm:"type:uuid"`
	RefundAmountCents int64      `gorm:"not null"`
	RefundPercentage  int        `gorm:"not null"`
	RefundID          string     `gorm:"size:255"`
	Reason            string     `gorm:"size:500"`
	CreatedAt         time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CancellationModel) TableName() string {
	return "booking_cancellations"
}

// GormBookingRepository is the GORM-based implementation of the booking repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings for a specific customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find customer bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindByProviderID retrieves bookings assigned to a provider with pagination.
func (r *GormBookingRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("provider_id = ?", providerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count provider bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find provider bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByJobStatus returns booking counts grouped by job status (admin).
func (r *GormBookingRepository) CountByJobStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		JobStatus string
		Count     int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("job_status, count(*) as count").
		Group("job_status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by job status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.JobStatus] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.updateTx(ctx, r.db, bk)
}

// UpdateWithCancellation persists the cancelled booking and its audit record
// in a single transaction.
func (r *GormBookingRepository) UpdateWithCancellation(ctx context.Context, bk *bookingDomain.Booking, record *bookingDomain.CancellationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateTx(ctx, tx, bk); err != nil {
			return err
		}

		model := &CancellationModel{
			ID:                record.ID,
			BookingID:         record.BookingID,
			CancelledBy:       record.CancelledBy,
			RefundAmountCents: record.RefundAmountCents,
			RefundPercentage:  record.RefundPercentage,
			RefundID:          record.RefundID,
			Reason:            record.Reason,
			CreatedAt:         record.CreatedAt,
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save cancellation record: %w", err)
		}
		return nil
	})
}

// updateTx performs the optimistic-locked update on the given handle so it
// can run standalone or inside a transaction.
func (r *GormBookingRepository) updateTx(ctx context.Context, tx *gorm.DB, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the stored version matches the version we loaded
	// (current version - 1 since IncrementVersion was called).
	expectedVersion := bk.Version() - 1
	result := tx.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"provider_id":       model.ProviderID,
			"status":            model.Status,
			"job_status":        model.JobStatus,
			"total_final_cents": model.TotalFinalCents,
			"payment_intent_id": model.PaymentIntentID,
			"payment_status":    model.PaymentStatus,
			"confirmed_at":      model.ConfirmedAt,
			"started_at":        model.StartedAt,
			"completed_at":      model.CompletedAt,
			"declined_at":       model.DeclinedAt,
			"cancelled_at":      model.CancelledAt,
			"declined_by":       model.DeclinedBy,
			"decline_reason":    model.DeclineReason,
			"cancel_reason":     model.CancelReason,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	addonIDsJSON, err := json.Marshal(bk.AddonIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal addon IDs: %w", err)
	}

	return &BookingModel{
		ID:                 bk.ID(),
		BookingNumber:      bk.BookingNumber(),
		CustomerID:         bk.CustomerID(),
		ProviderID:         bk.ProviderID(),
		AddressID:          bk.AddressID(),
		PackageID:          bk.PackageID(),
		AddonIDs:           addonIDsJSON,
		Recurring:          bk.Recurring(),
		ContactEmail:       bk.ContactEmail(),
		Status:             string(bk.Status()),
		JobStatus:          string(bk.JobStatus()),
		ScheduledDate:      bk.ScheduledDate(),
		ScheduledTime:      bk.ScheduledTime(),
		TotalEstimateCents: bk.TotalEstimateCents(),
		TotalFinalCents:    bk.TotalFinalCents(),
		Currency:           bk.Currency(),
		PaymentIntentID:    bk.PaymentIntentID(),
		PaymentStatus:      string(bk.PaymentStatus()),
		ConfirmedAt:        bk.ConfirmedAt(),
		StartedAt:          bk.StartedAt(),
		CompletedAt:        bk.CompletedAt(),
		DeclinedAt:         bk.DeclinedAt(),
		CancelledAt:        bk.CancelledAt(),
		DeclinedBy:         bk.DeclinedBy(),
		DeclineReason:      bk.DeclineReason(),
		CancelReason:       bk.CancelReason(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var addonIDs []uuid.UUID
	if len(m.AddonIDs) > 0 {
		if err := json.Unmarshal(m.AddonIDs, &addonIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal addon IDs: %w", err)
		}
	}

	jobStatus, err := bookingDomain.ParseJobStatus(m.JobStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.CustomerID,
		m.ProviderID,
		m.AddressID,
		m.PackageID,
		addonIDs,
		m.Recurring,
		m.ContactEmail,
		m.ScheduledDate,
		m.ScheduledTime,
		m.TotalEstimateCents,
		m.TotalFinalCents,
		m.Currency,
		jobStatus,
		m.PaymentIntentID,
		bookingDomain.PaymentStatus(m.PaymentStatus),
		m.ConfirmedAt,
		m.StartedAt,
		m.CompletedAt,
		m.DeclinedAt,
		m.CancelledAt,
		m.DeclinedBy,
		m.DeclineReason,
		m.CancelReason,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
