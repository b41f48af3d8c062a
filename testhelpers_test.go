//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/clinlix/service-booking/internal/application"
	bookingDomain "github.com/clinlix/service-booking/internal/domain/booking"
	bookingEvents "github.com/clinlix/service-booking/internal/events"
	"github.com/clinlix/service-booking/internal/repository"
	"github.com/clinlix/service-booking/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Consumer        *bookingEvents.PaymentEventConsumer
	Refunds         *stubRefundGateway
	CleanupProducer func()
}

// stubRefundGateway always succeeds, recording the amounts it was asked for.
type stubRefundGateway struct {
	Calls []int64
}

func (g *stubRefundGateway) Refund(_ context.Context, _ string, amountCents int64, currency string) (*bookingDomain.RefundReceipt, error) {
	g.Calls = append(g.Calls, amountCents)
	return &bookingDomain.RefundReceipt{RefundID: "re_stub", AmountCents: amountCents, Currency: currency}, nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(_ context.Context, _ []uuid.UUID, _, _, _ string) error { return nil }

type noopMailer struct{}

func (noopMailer) SendBookingDeclined(_, _, _ string, _ time.Time) error { return nil }
func (noopMailer) SendBookingCancelled(_, _ string, _ bookingDomain.RefundQuote, _ string) error {
	return nil
}

type noopScheduler struct{}

func (noopScheduler) ScheduleAutoCancel(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.BookingModel{},
		&repository.CancellationModel{},
		&repository.ServicePackageModel{},
		&repository.AddonModel{},
		&repository.ProviderProfileModel{},
		&repository.ProviderAvailabilityModel{},
		&repository.AddressModel{},
		&repository.NotificationModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, "booking.events", "payment.events", "notification.events")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the booking service against real Postgres and
// Kafka, stubbing only the edges that would reach third-party networks.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	producer := kafka.NewProducer(brokers, logger)
	refunds := &stubRefundGateway{}

	bookingSvc := application.NewBookingService(application.BookingServiceDeps{
		Bookings:  repository.NewGormBookingRepository(db),
		Catalog:   repository.NewGormCatalogRepository(db),
		Providers: repository.NewGormProviderRepository(db),
		Addresses: repository.NewGormAddressRepository(db),
		Refunds:   refunds,
		Notifier:  noopNotifier{},
		Mailer:    noopMailer{},
		Scheduler: noopScheduler{},
		Schedule:  bookingDomain.DefaultRefundSchedule(),
		Producer:  producer,
		Logger:    logger,
	})

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewPaymentEventConsumer(brokers, groupID, bookingSvc, logger)

	return &bookingStack{
		Service:         bookingSvc,
		Consumer:        consumer,
		Refunds:         refunds,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedFixtures inserts the catalog, provider and address rows a booking needs.
func seedFixtures(t *testing.T, db *gorm.DB, customerID uuid.UUID, date time.Time) (packageID, providerID, providerUserID, addressID uuid.UUID) {
	t.Helper()

	packageID = uuid.New()
	require.NoError(t, db.Create(&repository.ServicePackageModel{
		ID:                  packageID,
		Name:                "Standard Clean",
		OneTimePriceCents:   4850,
		RecurringPriceCents: 3900,
		Active:              true,
	}).Error)

	providerID = uuid.New()
	providerUserID = uuid.New()
	require.NoError(t, db.Create(&repository.ProviderProfileModel{
		ID:          providerID,
		UserID:      providerUserID,
		DisplayName: "Spotless Cleaners",
		Active:      true,
	}).Error)
	require.NoError(t, db.Create(&repository.ProviderAvailabilityModel{
		ID:         uuid.New(),
		ProviderID: providerID,
		Date:       time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
	}).Error)

	addressID = uuid.New()
	now := time.Now().UTC()
	require.NoError(t, db.Create(&repository.AddressModel{
		ID:        addressID,
		UserID:    customerID,
		Label:     "Home",
		Line1:     "10 Mill Road",
		City:      "Cambridge",
		Postcode:  "CB1 2AB",
		Country:   "GB",
		Currency:  "GBP",
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	return packageID, providerID, providerUserID, addressID
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPaymentStatus polls the bookings table until the payment status matches.
func waitForPaymentStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expected string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.PaymentStatus == expected {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking payment status did not become %s", expected)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
