package address

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for addresses.
type Repository interface {
	// FindByID retrieves an address by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)

	// FindByUserID retrieves all addresses owned by a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Address, error)

	// Save persists a new address.
	Save(ctx context.Context, addr *Address) error

	// Update persists changes to an existing address.
	Update(ctx context.Context, addr *Address) error

	// Delete removes an address.
	Delete(ctx context.Context, id uuid.UUID) error
}
