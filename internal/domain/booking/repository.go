package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByCustomerID retrieves bookings belonging to a customer with pagination.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByProviderID retrieves bookings assigned to a provider with pagination.
	FindByProviderID(ctx context.Context, providerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByJobStatus returns booking counts grouped by job status (admin).
	CountByJobStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	// A lost version race surfaces as a conflict error.
	Update(ctx context.Context, booking *Booking) error

	// UpdateWithCancellation persists the cancelled booking and its audit
	// record in a single transaction.
	UpdateWithCancellation(ctx context.Context, booking *Booking, record *CancellationRecord) error
}
