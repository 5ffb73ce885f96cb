package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/domain/repository"
)

// Gateway - единая точка выхода событий моста. Держит не больше одного
// подписчика: новый подписчик вытесняет предыдущего, без подписчика
// события отбрасываются (очереди нет - хосту важно только последнее
// состояние). Каждое событие дополнительно зеркалируется в Redis Stream,
// если стрим сконфигурирован.
type Gateway struct {
	logger     *zap.Logger
	streamRepo repository.StreamRepository // nil, если зеркалирование выключено

	mu         sync.Mutex
	subscriber *Subscription
}

// Subscription - активная подписка на поток событий
type Subscription struct {
	C         chan []byte
	Displaced chan struct{} // закрывается, когда подписку вытеснил новый подписчик

	gateway *Gateway
}

// NewGateway - создание нового Gateway
func NewGateway(streamRepo repository.StreamRepository, logger *zap.Logger) *Gateway {
	return &Gateway{
		logger:     logger,
		streamRepo: streamRepo,
	}
}

// Subscribe регистрирует единственного подписчика событий.
// Предыдущий подписчик, если был, вытесняется.
func (g *Gateway) Subscribe() *Subscription {
	sub := &Subscription{
		C:         make(chan []byte, 64),
		Displaced: make(chan struct{}),
		gateway:   g,
	}

	g.mu.Lock()
	if g.subscriber != nil {
		close(g.subscriber.Displaced)
	}
	g.subscriber = sub
	g.mu.Unlock()

	g.logger.Info("Event subscriber attached")
	return sub
}

// Close снимает подписку, если она всё ещё активна
func (s *Subscription) Close() {
	g := s.gateway
	g.mu.Lock()
	if g.subscriber == s {
		g.subscriber = nil
	}
	g.mu.Unlock()
}

// Emit отправляет событие подписчику и зеркалирует его в Redis.
// Без подписчика событие отбрасывается.
func (g *Gateway) Emit(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		g.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	g.mu.Lock()
	sub := g.subscriber
	g.mu.Unlock()

	if sub != nil {
		select {
		case sub.C <- payload:
		default:
			// Подписчик не успевает читать - событие отбрасывается
			g.logger.Warn("Subscriber is slow, event dropped",
				zap.String("event_type", string(event.Type)))
		}
	} else {
		g.logger.Debug("No subscriber attached, event dropped",
			zap.String("event_type", string(event.Type)))
	}

	if g.streamRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := g.streamRepo.PublishToStream(ctx, domain.StreamNavigationEvents, event); err != nil {
			// Зеркалирование best effort: ошибка не блокирует мост
			g.logger.Warn("Failed to mirror event to stream", zap.Error(err))
		}
	}
}
