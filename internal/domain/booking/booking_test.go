package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinlix/service-booking/pkg/domain"
)

func newTestBooking(t *testing.T, scheduledDate time.Time) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(),
		uuid.New(),
		uuid.New(),
		uuid.New(),
		nil,
		"customer@example.com",
		scheduledDate,
		"09:30",
		false,
		4850,
		"GBP",
	)
	require.NoError(t, err)
	return bk
}

func TestNewBookingDefaults(t *testing.T) {
	scheduled := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	bk := newTestBooking(t, scheduled)

	assert.Equal(t, JobStatusPending, bk.JobStatus())
	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, PaymentStatusPending, bk.PaymentStatus())
	assert.Equal(t, int64(1), bk.Version())
	assert.Regexp(t, `^CL-[A-Z2-9]{6}$`, bk.BookingNumber())
	assert.Nil(t, bk.TotalFinalCents())
	assert.Equal(t, time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC), bk.ScheduledAt())
}

func TestNewBookingValidation(t *testing.T) {
	scheduled := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	_, err := NewBooking(uuid.Nil, uuid.New(), uuid.New(), uuid.New(), nil, "a@b.c", scheduled, "09:30", false, 100, "GBP")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), uuid.New(), nil, "", scheduled, "09:30", false, 100, "GBP")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), uuid.New(), nil, "a@b.c", scheduled, "9:30am", false, 100, "GBP")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), uuid.New(), nil, "a@b.c", scheduled, "09:30", false, 0, "GBP")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestAcceptStampsConfirmedAt(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, bk.Accept(now))
	assert.Equal(t, JobStatusConfirmed, bk.JobStatus())
	require.NotNil(t, bk.ConfirmedAt())
	assert.Equal(t, now, *bk.ConfirmedAt())
}

func TestDeclineRequiresReason(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	actor := uuid.New()
	now := time.Now().UTC()

	err := bk.Decline(actor, "", now)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeMissingReason))
	assert.Equal(t, JobStatusPending, bk.JobStatus())

	require.NoError(t, bk.Decline(actor, "fully booked that day", now))
	assert.Equal(t, JobStatusDeclined, bk.JobStatus())
	assert.Equal(t, "fully booked that day", bk.DeclineReason())
	require.NotNil(t, bk.DeclinedBy())
	assert.Equal(t, actor, *bk.DeclinedBy())
	require.NotNil(t, bk.DeclinedAt())
}

func TestDeclineOnlyFromPending(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	now := time.Now().UTC()
	require.NoError(t, bk.Accept(now))

	err := bk.Decline(uuid.New(), "changed my mind", now)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTransition))
}

func TestAdvanceToPrematureStart(t *testing.T) {
	scheduled := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	bk := newTestBooking(t, scheduled)
	dayBefore := time.Date(2026, 6, 14, 23, 0, 0, 0, time.UTC)
	require.NoError(t, bk.Accept(dayBefore))

	err := bk.AdvanceTo(JobStatusOnTheWay, dayBefore)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodePrematureStart))
	assert.Equal(t, JobStatusConfirmed, bk.JobStatus())

	// Any time on the scheduled day itself is fine.
	earlyOnDay := time.Date(2026, 6, 15, 0, 5, 0, 0, time.UTC)
	require.NoError(t, bk.AdvanceTo(JobStatusOnTheWay, earlyOnDay))
	assert.Equal(t, JobStatusOnTheWay, bk.JobStatus())
}

func TestAdvanceToPrematureStartOutranksTransitionGraph(t *testing.T) {
	scheduled := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	daysBefore := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)

	// pending -> started is illegal on the graph too, but with a future date
	// the premature-start guard answers first.
	for _, target := range []JobStatus{JobStatusOnTheWay, JobStatusStarted} {
		t.Run(string(target), func(t *testing.T) {
			bk := newTestBooking(t, scheduled)
			err := bk.AdvanceTo(target, daysBefore)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodePrematureStart), "got %v", err)
			assert.Equal(t, JobStatusPending, bk.JobStatus())
		})
	}
}

func TestAdvanceToCompletedSetsFinalTotal(t *testing.T) {
	scheduled := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	bk := newTestBooking(t, scheduled)
	onDay := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, bk.Accept(onDay))
	require.NoError(t, bk.AdvanceTo(JobStatusOnTheWay, onDay))
	require.NoError(t, bk.AdvanceTo(JobStatusArrived, onDay))
	require.NoError(t, bk.AdvanceTo(JobStatusStarted, onDay))
	require.NotNil(t, bk.StartedAt())

	require.NoError(t, bk.AdvanceTo(JobStatusCompleted, onDay.Add(2*time.Hour)))
	assert.Equal(t, JobStatusCompleted, bk.JobStatus())
	assert.Equal(t, StatusConfirmed, bk.Status())
	require.NotNil(t, bk.CompletedAt())
	require.NotNil(t, bk.TotalFinalCents())
	assert.Equal(t, int64(4850), *bk.TotalFinalCents())
}

func TestCancelFromAnyNonTerminalState(t *testing.T) {
	scheduled := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	onDay := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	advance := map[string]func(*Booking){
		"pending":    func(b *Booking) {},
		"confirmed":  func(b *Booking) { _ = b.Accept(onDay) },
		"on_the_way": func(b *Booking) { _ = b.Accept(onDay); _ = b.AdvanceTo(JobStatusOnTheWay, onDay) },
		"started": func(b *Booking) {
			_ = b.Accept(onDay)
			_ = b.AdvanceTo(JobStatusOnTheWay, onDay)
			_ = b.AdvanceTo(JobStatusArrived, onDay)
			_ = b.AdvanceTo(JobStatusStarted, onDay)
		},
	}

	for name, setup := range advance {
		t.Run(name, func(t *testing.T) {
			bk := newTestBooking(t, scheduled)
			setup(bk)
			require.NoError(t, bk.Cancel("plans changed", onDay))
			assert.Equal(t, JobStatusCancelled, bk.JobStatus())
			require.NotNil(t, bk.CancelledAt())
		})
	}
}

func TestCancelTerminalIsRejected(t *testing.T) {
	scheduled := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	onDay := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

	bk := newTestBooking(t, scheduled)
	require.NoError(t, bk.Cancel("plans changed", onDay))

	err := bk.Cancel("again", onDay)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyTerminal))
	assert.Equal(t, "plans changed", bk.CancelReason())

	declined := newTestBooking(t, scheduled)
	require.NoError(t, declined.Decline(uuid.New(), "no capacity", onDay))
	err = declined.Cancel("cleanup", onDay)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyTerminal))
}

func TestReassignClearsDeclineMetadata(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	now := time.Now().UTC()
	require.NoError(t, bk.Decline(uuid.New(), "on holiday", now))

	newProvider := uuid.New()
	require.NoError(t, bk.Reassign(newProvider, now))

	assert.Equal(t, JobStatusPending, bk.JobStatus())
	assert.Equal(t, newProvider, bk.ProviderID())
	assert.Nil(t, bk.DeclinedAt())
	assert.Nil(t, bk.DeclinedBy())
	assert.Empty(t, bk.DeclineReason())
}

func TestReassignOnlyWhileDeclined(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	err := bk.Reassign(uuid.New(), time.Now().UTC())
	assert.Error(t, err)
}

func TestForceCancelDeclined(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	now := time.Now().UTC()
	require.NoError(t, bk.Decline(uuid.New(), "no capacity", now))

	require.NoError(t, bk.ForceCancelDeclined("reassignment window expired", now.Add(24*time.Hour)))
	assert.Equal(t, JobStatusCancelled, bk.JobStatus())
	assert.Equal(t, "reassignment window expired", bk.CancelReason())

	// Not open from any other state.
	fresh := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.Error(t, fresh.ForceCancelDeclined("reassignment window expired", now))
}

func TestMarkPaidAndRefunded(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))

	require.NoError(t, bk.MarkPaid("pi_123"))
	assert.Equal(t, PaymentStatusPaid, bk.PaymentStatus())
	require.NotNil(t, bk.PaymentIntentID())
	assert.Equal(t, "pi_123", *bk.PaymentIntentID())

	bk.MarkRefunded()
	assert.Equal(t, PaymentStatusRefunded, bk.PaymentStatus())
}

func TestMarkPaidRejectedOnTerminalBooking(t *testing.T) {
	now := time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC)

	cancelled := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, cancelled.Cancel("plans changed", now))

	declined := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, declined.Decline(uuid.New(), "no capacity", now))

	for name, bk := range map[string]*Booking{"cancelled": cancelled, "declined": declined} {
		t.Run(name, func(t *testing.T) {
			err := bk.MarkPaid("pi_late_event")
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeAlreadyTerminal))
			assert.Equal(t, PaymentStatusPending, bk.PaymentStatus())
			assert.Nil(t, bk.PaymentIntentID())
		})
	}
}

func TestIncrementVersion(t *testing.T) {
	bk := newTestBooking(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	bk.IncrementVersion()
	bk.IncrementVersion()
	assert.Equal(t, int64(3), bk.Version())
}
