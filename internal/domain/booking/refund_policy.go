package booking

import "time"

// RefundTier grants a refund percentage to cancellations made at least
// MinHoursBefore hours ahead of the scheduled service time.
type RefundTier struct {
	MinHoursBefore float64 `json:"min_hours_before"`
	Percentage     int     `json:"percentage"`
}

// RefundSchedule is the ordered tier table, most generous first. It is the
// single source of truth for cancellation refunds: the calculator, the
// cancel-preview endpoint and any UI table all consume the same value.
type RefundSchedule []RefundTier

// DefaultRefundSchedule returns the platform's standard cancellation tiers.
func DefaultRefundSchedule() RefundSchedule {
	return RefundSchedule{
		{MinHoursBefore: 48, Percentage: 100},
		{MinHoursBefore: 24, Percentage: 50},
		{MinHoursBefore: 12, Percentage: 25},
		{MinHoursBefore: 0, Percentage: 0},
	}
}

// RefundQuote is the computed refund for a cancellation.
type RefundQuote struct {
	Percentage  int   `json:"percentage"`
	AmountCents int64 `json:"amount_cents"`
}

// Quote computes the refund for cancelling at `now` a service scheduled at
// `scheduledAt`, on a total of totalCents minor currency units. Pure and
// total: a past-due schedule quotes 0%.
func (s RefundSchedule) Quote(scheduledAt, now time.Time, totalCents int64) RefundQuote {
	hoursBefore := scheduledAt.Sub(now).Hours()
	if hoursBefore < 0 {
		return RefundQuote{Percentage: 0, AmountCents: 0}
	}

	for _, tier := range s {
		if hoursBefore >= tier.MinHoursBefore {
			return RefundQuote{
				Percentage:  tier.Percentage,
				AmountCents: totalCents * int64(tier.Percentage) / 100,
			}
		}
	}
	return RefundQuote{Percentage: 0, AmountCents: 0}
}

// FullRefund returns a 100% quote on the given total. Used when the
// cancellation is not the customer's doing (provider or system actor).
func FullRefund(totalCents int64) RefundQuote {
	return RefundQuote{Percentage: 100, AmountCents: totalCents}
}
