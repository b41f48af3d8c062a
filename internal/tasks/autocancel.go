package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/clinlix/service-booking/pkg/config"
	"github.com/clinlix/service-booking/pkg/domain"
)

// TypeBookingAutoCancel is the task type for the declined-booking deadline.
const TypeBookingAutoCancel = "booking:auto_cancel"

// autoCancelPayload is the task payload for TypeBookingAutoCancel.
type autoCancelPayload struct {
	BookingID uuid.UUID `json:"booking_id"`
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Scheduler enqueues durable delayed tasks backed by Redis. Tasks survive
// process restarts, which is what makes the 24-hour deadline enforceable.
type Scheduler struct {
	client *asynq.Client
	logger *zap.Logger
}

// NewScheduler creates a Scheduler on the given Redis instance.
func NewScheduler(cfg config.RedisConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		client: asynq.NewClient(redisOpt(cfg)),
		logger: logger,
	}
}

// ScheduleAutoCancel enqueues the auto-cancel task to fire at the given time.
// The task ID is derived from the booking so re-scheduling after a second
// decline replaces rather than duplicates the deadline.
func (s *Scheduler) ScheduleAutoCancel(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	payload, err := json.Marshal(autoCancelPayload{BookingID: bookingID})
	if err != nil {
		return fmt.Errorf("failed to marshal auto-cancel payload: %w", err)
	}

	task := asynq.NewTask(TypeBookingAutoCancel, payload)
	info, err := s.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(at),
		asynq.TaskID(fmt.Sprintf("auto-cancel:%s:%d", bookingID, at.Unix())),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue auto-cancel task: %w", err)
	}

	s.logger.Info("auto-cancel scheduled",
		zap.String("booking_id", bookingID.String()),
		zap.String("task_id", info.ID),
		zap.Time("process_at", at),
	)
	return nil
}

// Close releases the underlying Redis client.
func (s *Scheduler) Close() error {
	return s.client.Close()
}

// AutoCanceller is the application-side operation the worker invokes when a
// deadline fires.
type AutoCanceller interface {
	AutoCancelDeclined(ctx context.Context, bookingID uuid.UUID) error
}

// Worker runs the asynq server processing booking deadline tasks.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	service AutoCanceller
	logger  *zap.Logger
}

// NewWorker creates a Worker bound to the given Redis instance.
func NewWorker(cfg config.RedisConfig, service AutoCanceller, logger *zap.Logger) *Worker {
	server := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		service: service,
		logger:  logger,
	}
	w.mux.HandleFunc(TypeBookingAutoCancel, w.handleAutoCancel)
	return w
}

// Start begins processing tasks in the background.
func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

// Shutdown stops the worker, waiting for in-flight tasks.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleAutoCancel(ctx context.Context, t *asynq.Task) error {
	var payload autoCancelPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal auto-cancel payload: %w", err)
	}

	w.logger.Info("auto-cancel deadline fired",
		zap.String("booking_id", payload.BookingID.String()),
	)

	if err := w.service.AutoCancelDeclined(ctx, payload.BookingID); err != nil {
		// A booking deleted or already resolved is not worth retrying.
		if domain.IsCode(err, domain.CodeNotFound) {
			w.logger.Warn("auto-cancel target gone",
				zap.String("booking_id", payload.BookingID.String()),
			)
			return nil
		}
		return err
	}
	return nil
}
