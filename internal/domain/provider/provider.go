package provider

import (
	"time"

	"github.com/google/uuid"
)

// Profile links a provider profile to the platform user who owns it.
// Forward transitions on a booking are only allowed to this user.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Active      bool      `json:"active"`
}

// Availability marks a provider as bookable on a calendar date.
type Availability struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Date       time.Time `json:"date"`
}
