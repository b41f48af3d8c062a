package catalog

import "github.com/google/uuid"

// ServicePackage is a bookable cleaning package with one-time and recurring prices.
type ServicePackage struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	OneTimePriceCents   int64     `json:"one_time_price_cents"`
	RecurringPriceCents int64     `json:"recurring_price_cents"`
	Active              bool      `json:"active"`
}

// Addon is an optional extra service with a fixed price.
type Addon struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Active     bool      `json:"active"`
}
