package domain

// SessionState - состояние сессии навигации.
// Idle -> Building -> Active -> (Rerouting) -> Active -> Ended
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionBuilding  SessionState = "building"
	SessionActive    SessionState = "active"
	SessionRerouting SessionState = "rerouting"
	SessionEnded     SessionState = "ended"
)

var sessionTransitions = map[SessionState][]SessionState{
	SessionIdle:      {SessionBuilding},
	SessionBuilding:  {SessionActive, SessionIdle},
	SessionActive:    {SessionRerouting, SessionEnded},
	SessionRerouting: {SessionActive},
	SessionEnded:     {SessionIdle},
}

// CanTransition проверяет допустимость перехода состояния сессии
func (s SessionState) CanTransition(to SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Progress - прогресс активной сессии. Обновляется на каждом тике
// guidance-движка, сбрасывается при завершении сессии.
type Progress struct {
	DistanceRemaining float64 `json:"distanceRemaining"` // метры
	DurationRemaining float64 `json:"durationRemaining"` // секунды
	Location          Point   `json:"location"`
	Arrived           bool    `json:"arrived"`
}
