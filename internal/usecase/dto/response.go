package dto

import "github.com/navigation-bridge/internal/domain"

// CommandResponse - булев результат команды моста
type CommandResponse struct {
	Success bool `json:"success"`
}

// DistanceRemainingResponse - ответ на getDistanceRemaining
type DistanceRemainingResponse struct {
	DistanceRemaining float64 `json:"distanceRemaining"` // метры
}

// DurationRemainingResponse - ответ на getDurationRemaining
type DurationRemainingResponse struct {
	DurationRemaining float64 `json:"durationRemaining"` // секунды
}

// SessionStateResponse - текущее состояние сессии
type SessionStateResponse struct {
	State     domain.SessionState `json:"state"`
	SessionID string              `json:"sessionId,omitempty"`
}

// CameraResponse - текущее кадрирование карты
type CameraResponse struct {
	Mode  domain.CameraMode  `json:"mode"`
	Frame domain.CameraFrame `json:"frame"`
}

// TripsResponse - список завершённых сессий
type TripsResponse struct {
	Trips []domain.Trip `json:"trips"`
	Total int           `json:"total"`
}
