package dto

import (
	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/pkg/errors"
	"github.com/navigation-bridge/internal/pkg/utils"
)

// WaypointInput - точка маршрута из входящей команды.
// Координаты - указатели, чтобы отличать отсутствующее поле от нуля.
type WaypointInput struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Order     *int     `json:"order,omitempty"`
}

// BuildRouteRequest - команда buildRoute
type BuildRouteRequest struct {
	Waypoints              []WaypointInput `json:"wayPoints" validate:"required,min=2,max=25"`
	Language               string          `json:"language"`
	Units                  string          `json:"units" validate:"omitempty,oneof=metric imperial"`
	SimulateRoute          bool            `json:"simulateRoute"`
	IsOptimized            bool            `json:"isOptimized"`
	AllowsUTurnAtWayPoints bool            `json:"allowsUTurnAtWayPoints"`
	Alternatives           bool            `json:"alternatives"`
	Mode                   string          `json:"mode"`
	MapStyleURLDay         string          `json:"mapStyleUrlDay"`
	MapStyleURLNight       string          `json:"mapStyleUrlNight"`
}

// UpdateNavigationRequest - команда updateNavigation (смена точек на ходу)
type UpdateNavigationRequest struct {
	Waypoints []WaypointInput `json:"wayPoints" validate:"required,min=2,max=25"`
}

// LocationUpdateRequest - обновление позиции от хоста
type LocationUpdateRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// CameraModeRequest - смена режима камеры
type CameraModeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

// ToWaypoints преобразует входящие точки в доменные.
// Отсутствие координат - явная ошибка валидации, а не молчаливый отказ.
// При выключенной оптимизации точки сортируются по полю order.
func ToWaypoints(inputs []WaypointInput, optimized bool) ([]domain.Waypoint, error) {
	waypoints := make([]domain.Waypoint, 0, len(inputs))

	for i, in := range inputs {
		if in.Latitude == nil || in.Longitude == nil {
			return nil, errors.ErrMissingCoordinates.WithDetails(map[string]interface{}{
				"waypoint_index": i,
				"waypoint_name":  in.Name,
			})
		}
		if !utils.ValidateCoordinates(*in.Latitude, *in.Longitude) {
			return nil, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
				"waypoint_index": i,
				"waypoint_name":  in.Name,
			})
		}

		wp := domain.Waypoint{
			Name: in.Name,
			Lat:  *in.Latitude,
			Lon:  *in.Longitude,
		}
		if in.Order != nil {
			wp.Order = *in.Order
			wp.HasOrder = true
		}
		waypoints = append(waypoints, wp)
	}

	if !optimized {
		waypoints = domain.SortWaypointsByOrder(waypoints)
	}

	return waypoints, nil
}
