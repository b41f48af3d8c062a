package provider

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the read contract for provider profiles and availability.
type Repository interface {
	// FindByID retrieves a provider profile by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	// FindByUserID retrieves the provider profile owned by a platform user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// HasAvailability reports whether the provider has an availability
	// record for the given calendar date.
	HasAvailability(ctx context.Context, providerID uuid.UUID, date time.Time) (bool, error)
}
