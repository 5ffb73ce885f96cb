package triplog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/domain/repository"
	"github.com/navigation-bridge/internal/worker"
)

// TriplogWorker потребляет зеркалированные события навигации из Redis
// Stream и сохраняет сводки завершённых сессий в Postgres. События одной
// сессии сворачиваются в памяти: старт фиксируется по navigation_running,
// сводка пишется по on_arrival или navigation_cancelled.
type TriplogWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	tripRepo     repository.TripRepository
	consumerName string
	maxRetries   int

	// состояние незавершённых сессий, только внутри горутины Start
	sessions map[string]*sessionTrace
}

type sessionTrace struct {
	startedAt     time.Time
	routeDistance float64
	waypointCount int
}

// NewTriplogWorker создает новый TriplogWorker
func NewTriplogWorker(
	streamRepo repository.StreamRepository,
	tripRepo repository.TripRepository,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *TriplogWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &TriplogWorker{
		BaseWorker:   worker.NewBaseWorker("navigation-triplog", consumerGroup, logger),
		streamRepo:   streamRepo,
		tripRepo:     tripRepo,
		consumerName: consumerName,
		maxRetries:   maxRetries,
		sessions:     make(map[string]*sessionTrace),
	}
}

// Start запускает воркер
func (w *TriplogWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting TriplogWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamNavigationEvents, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	messages, err := w.streamRepo.ConsumeStream(ctx, domain.StreamNavigationEvents, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}

			if err := w.processMessage(ctx, msg); err != nil {
				logger.Error("Failed to process message",
					zap.String("message_id", msg.ID),
					zap.Error(err))
				continue
			}

			if err := w.streamRepo.AckMessage(ctx, domain.StreamNavigationEvents, w.ConsumerGroup(), msg.ID); err != nil {
				logger.Warn("Failed to ack message", zap.String("message_id", msg.ID), zap.Error(err))
			}
		}
	}
}

// processMessage сворачивает одно событие в состояние сессий
func (w *TriplogWorker) processMessage(ctx context.Context, msg domain.StreamMessage) error {
	logger := w.Logger()

	var event domain.Event
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		// Битое сообщение не ретраим
		logger.Warn("Failed to parse event, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return nil
	}

	if event.SessionID == "" {
		return nil
	}

	switch event.Type {
	case domain.EventNavigationRunning:
		w.sessions[event.SessionID] = &sessionTrace{
			startedAt:     eventTimestamp(event),
			routeDistance: dataFloat(event, "route_distance"),
			waypointCount: int(dataFloat(event, "waypoint_count")),
		}
		return nil

	case domain.EventOnArrival:
		return w.finishTrip(ctx, event, domain.TripArrived)

	case domain.EventNavigationCancelled:
		return w.finishTrip(ctx, event, domain.TripCancelled)

	default:
		// Прогресс и события маршрута сводку не меняют
		return nil
	}
}

// finishTrip пишет сводку завершённой сессии с ретраями
func (w *TriplogWorker) finishTrip(ctx context.Context, event domain.Event, outcome domain.TripOutcome) error {
	logger := w.Logger()

	trace, ok := w.sessions[event.SessionID]
	if !ok {
		// Воркер мог стартовать посреди сессии - сводку не восстановить
		logger.Warn("No start event seen for session, skipping trip",
			zap.String("session_id", event.SessionID))
		return nil
	}
	delete(w.sessions, event.SessionID)

	endedAt := eventTimestamp(event)
	trip := &domain.Trip{
		SessionID:       event.SessionID,
		Outcome:         outcome,
		StartedAt:       trace.startedAt,
		EndedAt:         endedAt,
		DistanceCovered: trace.routeDistance - event.DistanceRemaining,
		DurationSeconds: endedAt.Sub(trace.startedAt).Seconds(),
		WaypointCount:   trace.waypointCount,
	}

	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.tripRepo.SaveTrip(ctx, trip); err == nil {
			logger.Info("Trip saved",
				zap.String("session_id", trip.SessionID),
				zap.String("outcome", string(outcome)))
			return nil
		}
		logger.Warn("Failed to save trip, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	return fmt.Errorf("save trip after %d attempts: %w", w.maxRetries, err)
}

// eventTimestamp достаёт временную метку из события, иначе текущее время
func eventTimestamp(event domain.Event) time.Time {
	if raw, ok := event.Data["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return ts
		}
	}
	return time.Now().UTC()
}

func dataFloat(event domain.Event, key string) float64 {
	if v, ok := event.Data[key].(float64); ok {
		return v
	}
	return 0
}
