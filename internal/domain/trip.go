package domain

import "time"

// TripOutcome - итог завершённой сессии
type TripOutcome string

const (
	TripArrived   TripOutcome = "arrived"
	TripCancelled TripOutcome = "cancelled"
)

// Trip - сводка завершённой навигационной сессии,
// сохраняется worker-ом из стрима событий
type Trip struct {
	SessionID       string      `json:"session_id" db:"session_id"`
	Outcome         TripOutcome `json:"outcome" db:"outcome"`
	StartedAt       time.Time   `json:"started_at" db:"started_at"`
	EndedAt         time.Time   `json:"ended_at" db:"ended_at"`
	DistanceCovered float64     `json:"distance_covered" db:"distance_covered"`
	DurationSeconds float64     `json:"duration_seconds" db:"duration_seconds"`
	WaypointCount   int         `json:"waypoint_count" db:"waypoint_count"`
}
