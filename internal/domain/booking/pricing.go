package booking

import (
	"github.com/google/uuid"

	"github.com/clinlix/service-booking/internal/domain/catalog"
	"github.com/clinlix/service-booking/pkg/domain"
)

// Estimate is the server-side price computed at booking time. Prices are
// integer minor currency units throughout, so repeated computation is exact.
type Estimate struct {
	BaseCents   int64
	AddonsCents int64
}

// TotalCents returns the total estimated price.
func (e Estimate) TotalCents() int64 {
	return e.BaseCents + e.AddonsCents
}

// ComputeEstimate prices a booking from the selected package and addons.
// The base is the package's recurring or one-time price depending on the
// recurring flag; addon prices are summed. Any requested addon missing from
// the looked-up set invalidates the whole request.
func ComputeEstimate(pkg *catalog.ServicePackage, addons []*catalog.Addon, requestedAddonIDs []uuid.UUID, recurring bool) (Estimate, error) {
	est := Estimate{BaseCents: pkg.OneTimePriceCents}
	if recurring {
		est.BaseCents = pkg.RecurringPriceCents
	}

	byID := make(map[uuid.UUID]*catalog.Addon, len(addons))
	for _, a := range addons {
		byID[a.ID] = a
	}

	for _, id := range requestedAddonIDs {
		addon, ok := byID[id]
		if !ok {
			return Estimate{}, domain.NewInvalidAddonError(id.String())
		}
		est.AddonsCents += addon.PriceCents
	}

	return est, nil
}
