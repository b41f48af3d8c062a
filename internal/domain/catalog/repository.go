package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the read contract for the service catalog.
type Repository interface {
	// FindPackageByID retrieves a service package by its identifier.
	FindPackageByID(ctx context.Context, id uuid.UUID) (*ServicePackage, error)

	// FindAddonsByIDs retrieves the addons matching the given identifiers.
	// Missing IDs are simply absent from the result; callers decide whether
	// that invalidates the request.
	FindAddonsByIDs(ctx context.Context, ids []uuid.UUID) ([]*Addon, error)

	// ListPackages retrieves all active packages.
	ListPackages(ctx context.Context) ([]*ServicePackage, error)

	// ListAddons retrieves all active addons.
	ListAddons(ctx context.Context) ([]*Addon, error)
}
