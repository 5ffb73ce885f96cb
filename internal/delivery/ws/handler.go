package ws

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/domain"
)

// RegisterRoutes подключает websocket-эндпоинт потока событий
func RegisterRoutes(r fiber.Router, gateway *Gateway, logger *zap.Logger) {
	r.Use("/events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/events", websocket.New(func(c *websocket.Conn) {
		sub := gateway.Subscribe()
		defer sub.Close()

		// map_ready сообщает хосту, что поверхность готова принимать команды
		ready, _ := json.Marshal(domain.Event{Type: domain.EventMapReady})
		if err := c.WriteMessage(websocket.TextMessage, ready); err != nil {
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			// Читаем, только чтобы заметить закрытие соединения хостом
			for {
				if _, _, err := c.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg := <-sub.C:
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					logger.Debug("Subscriber write failed, closing", zap.Error(err))
					return
				}
			case <-sub.Displaced:
				// Новый подписчик вытеснил это соединение
				return
			case <-done:
				return
			}
		}
	}))
}
