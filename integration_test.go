//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinlix/service-booking/internal/application"
	bookingEvents "github.com/clinlix/service-booking/internal/events"
	"github.com/clinlix/service-booking/internal/repository"
	"github.com/clinlix/service-booking/pkg/domain"
)

// TestPaymentSucceeded_LinksAndRefundsOnCancel drives the full path: a
// booking is created, the payment service reports success over Kafka, and a
// later cancellation refunds through the gateway and lands the audit record.
func TestPaymentSucceeded_LinksAndRefundsOnCancel(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	customerID := uuid.New()
	scheduled := time.Now().UTC().Add(96 * time.Hour)
	packageID, _, _, addressID := seedFixtures(t, infra.DB, customerID, scheduled)

	// Re-read the seeded provider for the request.
	var profile repository.ProviderProfileModel
	require.NoError(t, infra.DB.First(&profile).Error)

	created, err := stack.Service.CreateBooking(context.Background(), customerID, application.CreateBookingRequest{
		CustomerID:    customerID,
		ProviderID:    profile.ID,
		AddressID:     addressID,
		PackageID:     packageID,
		ContactEmail:  "customer@example.com",
		RequestedDate: scheduled.Format("2006-01-02"),
		RequestedTime: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4850), created.TotalEstimateCents)
	assert.Equal(t, "GBP", created.Currency)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish PaymentSucceededEvent.
	evt := bookingEvents.PaymentSucceededEvent{
		BookingID:       created.ID,
		PaymentIntentID: "pi_integration",
		AmountCents:     4850,
		Currency:        "GBP",
		OccurredAt:      time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicPaymentEvents,
		"service-payment", bookingEvents.PaymentSucceeded, evt)

	// Assert: booking links the payment intent.
	model := waitForPaymentStatus(t, infra.DB, created.ID, "paid", 15*time.Second)
	require.NotNil(t, model.PaymentIntentID)
	assert.Equal(t, "pi_integration", *model.PaymentIntentID)

	// Cancel 96h ahead: the 100% tier applies and the gateway is called.
	result, err := stack.Service.CancelBooking(context.Background(), created.ID, customerID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, 100, result.RefundPercentage)
	assert.Equal(t, int64(4850), result.RefundAmountCents)
	require.Equal(t, []int64{4850}, stack.Refunds.Calls)

	// Assert: audit record persisted in the same transaction.
	var record repository.CancellationModel
	require.NoError(t, infra.DB.Where("booking_id = ?", created.ID).First(&record).Error)
	assert.Equal(t, int64(4850), record.RefundAmountCents)
	assert.Equal(t, 100, record.RefundPercentage)

	// Assert: BookingCancelledEvent on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingCancelled, 15*time.Second)

	var cancelled bookingEvents.BookingCancelledEvent
	require.NoError(t, ce.ParseData(&cancelled))
	assert.Equal(t, created.ID, cancelled.BookingID)
	assert.Equal(t, int64(4850), cancelled.RefundAmountCents)
	assert.Equal(t, "GBP", cancelled.Currency)
}

// TestOptimisticLocking_ConcurrentUpdateConflicts verifies the version guard:
// two loads of the same booking race, and the second writer loses.
func TestOptimisticLocking_ConcurrentUpdateConflicts(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	customerID := uuid.New()
	scheduled := time.Now().UTC().Add(96 * time.Hour)
	packageID, _, _, addressID := seedFixtures(t, infra.DB, customerID, scheduled)

	var profile repository.ProviderProfileModel
	require.NoError(t, infra.DB.First(&profile).Error)

	created, err := stack.Service.CreateBooking(context.Background(), customerID, application.CreateBookingRequest{
		CustomerID:    customerID,
		ProviderID:    profile.ID,
		AddressID:     addressID,
		PackageID:     packageID,
		ContactEmail:  "customer@example.com",
		RequestedDate: scheduled.Format("2006-01-02"),
		RequestedTime: "10:00",
	})
	require.NoError(t, err)

	repo := repository.NewGormBookingRepository(infra.DB)

	first, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, first.Accept(now))
	first.IncrementVersion()
	require.NoError(t, repo.Update(context.Background(), first))

	require.NoError(t, second.Accept(now))
	second.IncrementVersion()
	err = repo.Update(context.Background(), second)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict), "expected conflict, got %v", err)
}

// TestBookingNumberUniqueAcrossCreates sanity-checks the generated numbers
// against the unique index under a burst of inserts.
func TestBookingNumberUniqueAcrossCreates(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	customerID := uuid.New()
	scheduled := time.Now().UTC().Add(96 * time.Hour)
	packageID, _, _, addressID := seedFixtures(t, infra.DB, customerID, scheduled)

	var profile repository.ProviderProfileModel
	require.NoError(t, infra.DB.First(&profile).Error)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		created, err := stack.Service.CreateBooking(context.Background(), customerID, application.CreateBookingRequest{
			CustomerID:    customerID,
			ProviderID:    profile.ID,
			AddressID:     addressID,
			PackageID:     packageID,
			ContactEmail:  fmt.Sprintf("customer+%d@example.com", i),
			RequestedDate: scheduled.Format("2006-01-02"),
			RequestedTime: "10:00",
		})
		require.NoError(t, err)
		require.False(t, seen[created.BookingNumber], "duplicate booking number %s", created.BookingNumber)
		seen[created.BookingNumber] = true
	}
}
