package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefundScheduleTiers(t *testing.T) {
	schedule := DefaultRefundSchedule()
	scheduledAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	const total = int64(10000)

	tests := []struct {
		name        string
		hoursBefore float64
		percentage  int
		amountCents int64
	}{
		{"well ahead of 48h", 72, 100, 10000},
		{"exactly 48h", 48, 100, 10000},
		{"just under 48h", 47.99, 50, 5000},
		{"exactly 24h", 24, 50, 5000},
		{"just under 24h", 23.99, 25, 2500},
		{"exactly 12h", 12, 25, 2500},
		{"just under 12h", 11.99, 0, 0},
		{"one hour before", 1, 0, 0},
		{"at the scheduled time", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := scheduledAt.Add(-time.Duration(tt.hoursBefore * float64(time.Hour)))
			quote := schedule.Quote(scheduledAt, now, total)
			assert.Equal(t, tt.percentage, quote.Percentage)
			assert.Equal(t, tt.amountCents, quote.AmountCents)
		})
	}
}

func TestRefundSchedulePastDue(t *testing.T) {
	schedule := DefaultRefundSchedule()
	scheduledAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	now := scheduledAt.Add(3 * time.Hour)

	quote := schedule.Quote(scheduledAt, now, 10000)
	assert.Equal(t, 0, quote.Percentage)
	assert.Equal(t, int64(0), quote.AmountCents)
}

// Moving the cancellation earlier never reduces the refund.
func TestRefundScheduleMonotonic(t *testing.T) {
	schedule := DefaultRefundSchedule()
	scheduledAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	prev := int64(-1)
	for hours := 0; hours <= 96; hours++ {
		now := scheduledAt.Add(-time.Duration(hours) * time.Hour)
		quote := schedule.Quote(scheduledAt, now, 10000)
		assert.GreaterOrEqual(t, quote.AmountCents, prev,
			"refund shrank when cancelling %dh before", hours)
		prev = quote.AmountCents
	}
}

// Integer cents keep half-percentage amounts exact: 50% of 48.50 is 24.25.
func TestRefundScheduleExactCents(t *testing.T) {
	schedule := DefaultRefundSchedule()
	scheduledAt := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	now := scheduledAt.Add(-30 * time.Hour)

	quote := schedule.Quote(scheduledAt, now, 4850)
	assert.Equal(t, 50, quote.Percentage)
	assert.Equal(t, int64(2425), quote.AmountCents)
}

func TestFullRefund(t *testing.T) {
	quote := FullRefund(4850)
	assert.Equal(t, 100, quote.Percentage)
	assert.Equal(t, int64(4850), quote.AmountCents)
}
