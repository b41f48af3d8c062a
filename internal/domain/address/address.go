package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinlix/service-booking/pkg/domain"
)

// Address is a customer-owned service location. The address determines the
// currency bookings at it are priced in.
type Address struct {
	id        uuid.UUID
	userID    uuid.UUID
	label     string
	line1     string
	line2     string
	city      string
	postcode  string
	country   string
	currency  string
	createdAt time.Time
	updatedAt time.Time
}

// NewAddress creates a new Address for the given user.
func NewAddress(userID uuid.UUID, label, line1, line2, city, postcode, country, currency string) (*Address, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if line1 == "" {
		return nil, domain.NewValidationError("address line 1 is required")
	}
	if city == "" {
		return nil, domain.NewValidationError("city is required")
	}
	if country == "" {
		return nil, domain.NewValidationError("country is required")
	}
	if len(currency) != 3 {
		return nil, domain.NewValidationError("currency must be a 3-letter code")
	}

	now := time.Now().UTC()
	return &Address{
		id:        uuid.New(),
		userID:    userID,
		label:     label,
		line1:     line1,
		line2:     line2,
		city:      city,
		postcode:  postcode,
		country:   country,
		currency:  currency,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an Address from persistence data (no validation).
func Reconstruct(id, userID uuid.UUID, label, line1, line2, city, postcode, country, currency string, createdAt, updatedAt time.Time) *Address {
	return &Address{
		id:        id,
		userID:    userID,
		label:     label,
		line1:     line1,
		line2:     line2,
		city:      city,
		postcode:  postcode,
		country:   country,
		currency:  currency,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the address identifier.
func (a *Address) ID() uuid.UUID { return a.id }

// UserID returns the owning user's ID.
func (a *Address) UserID() uuid.UUID { return a.userID }

// Label returns the user-facing label ("Home", "Office").
func (a *Address) Label() string { return a.label }

// Line1 returns the first address line.
func (a *Address) Line1() string { return a.line1 }

// Line2 returns the second address line.
func (a *Address) Line2() string { return a.line2 }

// City returns the city.
func (a *Address) City() string { return a.city }

// Postcode returns the postal code.
func (a *Address) Postcode() string { return a.postcode }

// Country returns the country code.
func (a *Address) Country() string { return a.country }

// Currency returns the 3-letter currency code for this location.
func (a *Address) Currency() string { return a.currency }

// CreatedAt returns the creation timestamp.
func (a *Address) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (a *Address) UpdatedAt() time.Time { return a.updatedAt }

// BelongsTo reports whether the address is owned by the given user.
func (a *Address) BelongsTo(userID uuid.UUID) bool {
	return a.userID == userID
}

// UpdateDetails replaces the mutable address fields.
func (a *Address) UpdateDetails(label, line1, line2, city, postcode string) error {
	if line1 == "" {
		return domain.NewValidationError("address line 1 is required")
	}
	if city == "" {
		return domain.NewValidationError("city is required")
	}
	a.label = label
	a.line1 = line1
	a.line2 = line2
	a.city = city
	a.postcode = postcode
	a.updatedAt = time.Now().UTC()
	return nil
}
