package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/domain"
)

func TestGateway_SingleSubscriber(t *testing.T) {
	logger := zap.NewNop()

	t.Run("events reach the subscriber", func(t *testing.T) {
		g := NewGateway(nil, logger)
		sub := g.Subscribe()
		defer sub.Close()

		g.Emit(domain.Event{
			Type:              domain.EventProgressChange,
			SessionID:         "session-1",
			DistanceRemaining: 1200,
		})

		select {
		case payload := <-sub.C:
			var event domain.Event
			require.NoError(t, json.Unmarshal(payload, &event))
			assert.Equal(t, domain.EventProgressChange, event.Type)
			assert.Equal(t, "session-1", event.SessionID)
			assert.Equal(t, 1200.0, event.DistanceRemaining)
		case <-time.After(time.Second):
			t.Fatal("event was not delivered")
		}
	})

	t.Run("no subscriber drops events silently", func(t *testing.T) {
		g := NewGateway(nil, logger)

		// Не должно паниковать и блокироваться
		g.Emit(domain.Event{Type: domain.EventRouteBuilt})
	})

	t.Run("new subscriber displaces the previous one", func(t *testing.T) {
		g := NewGateway(nil, logger)

		first := g.Subscribe()
		second := g.Subscribe()
		defer second.Close()

		select {
		case <-first.Displaced:
		case <-time.After(time.Second):
			t.Fatal("first subscriber was not displaced")
		}

		g.Emit(domain.Event{Type: domain.EventMapReady})

		select {
		case <-second.C:
		case <-time.After(time.Second):
			t.Fatal("event was not delivered to the new subscriber")
		}

		// Вытесненный подписчик событий больше не получает
		select {
		case <-first.C:
			t.Fatal("displaced subscriber still receives events")
		default:
		}
	})

	t.Run("closing a displaced subscription keeps the active one", func(t *testing.T) {
		g := NewGateway(nil, logger)

		first := g.Subscribe()
		second := g.Subscribe()
		defer second.Close()

		first.Close()

		g.Emit(domain.Event{Type: domain.EventMapReady})

		select {
		case <-second.C:
		case <-time.After(time.Second):
			t.Fatal("active subscription lost after displaced close")
		}
	})

	t.Run("slow subscriber overflows without blocking", func(t *testing.T) {
		g := NewGateway(nil, logger)
		sub := g.Subscribe()
		defer sub.Close()

		// Буфер канала конечен: переполнение не должно блокировать Emit
		for i := 0; i < 200; i++ {
			g.Emit(domain.Event{Type: domain.EventProgressChange})
		}
	})
}

func TestGateway_EventWireFormat(t *testing.T) {
	g := NewGateway(nil, zap.NewNop())
	sub := g.Subscribe()
	defer sub.Close()

	g.Emit(domain.Event{
		Type:              domain.EventRouteBuilt,
		SessionID:         "s",
		DistanceRemaining: 10,
		DurationRemaining: 5,
		Data:              map[string]interface{}{"routes_count": 2},
	})

	payload := <-sub.C

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &wire))

	assert.Equal(t, "route_built", wire["eventType"])
	assert.Equal(t, "s", wire["sessionId"])
	assert.Equal(t, 10.0, wire["distanceRemaining"])
	assert.Equal(t, 5.0, wire["durationRemaining"])

	data, ok := wire["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 2.0, data["routes_count"])
}
