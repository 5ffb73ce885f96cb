package domain

// Имя Redis-стрима, в который зеркалируются исходящие события
// (должно совпадать с потребителем в worker)
const StreamNavigationEvents = "stream:navigation:events"

// EventType - дискриминатор исходящих событий моста
type EventType string

const (
	EventMapReady             EventType = "map_ready"
	EventRouteBuilding        EventType = "route_building"
	EventRouteBuilt           EventType = "route_built"
	EventRouteBuildFailed     EventType = "route_build_failed"
	EventProgressChange       EventType = "progress_change"
	EventNavigationRunning    EventType = "navigation_running"
	EventNavigationCancelled  EventType = "navigation_cancelled"
	EventOnArrival            EventType = "on_arrival"
)

// Event - одно событие исходящего потока. Каждое событие несёт
// минимум {eventType, distanceRemaining, durationRemaining}.
type Event struct {
	Type              EventType              `json:"eventType"`
	SessionID         string                 `json:"sessionId,omitempty"`
	DistanceRemaining float64                `json:"distanceRemaining"`
	DurationRemaining float64                `json:"durationRemaining"`
	Data              map[string]interface{} `json:"data,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
