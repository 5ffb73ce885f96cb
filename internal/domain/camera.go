package domain

// CameraMode - режим камеры карты
type CameraMode string

const (
	// CameraFollowing - камера следует за текущей позицией
	CameraFollowing CameraMode = "following"
	// CameraOverview - камера показывает весь маршрут целиком
	CameraOverview CameraMode = "overview"
)

// ParseCameraMode распознаёт режим камеры из входящей команды
func ParseCameraMode(s string) (CameraMode, bool) {
	switch CameraMode(s) {
	case CameraFollowing:
		return CameraFollowing, true
	case CameraOverview:
		return CameraOverview, true
	default:
		return "", false
	}
}

// CameraFrame - параметры кадрирования карты.
// Пересчитывается на каждом обновлении позиции, не персистится.
type CameraFrame struct {
	Center  Point   `json:"center"`
	Bearing float64 `json:"bearing"`
	Zoom    float64 `json:"zoom"`
	Pitch   float64 `json:"pitch"`
	Padding float64 `json:"padding"`
}
