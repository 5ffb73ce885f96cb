package domain

import "sort"

// Waypoint - именованная географическая точка, остановка маршрута.
// Order имеет смысл только при выключенной оптимизации порядка.
type Waypoint struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Order    int     `json:"order"`
	HasOrder bool    `json:"-"`
}

// SortWaypointsByOrder сортирует точки по возрастанию Order.
// Точки без явного порядка считаются Order=0. Сортировка стабильная:
// при равных значениях сохраняется исходный порядок следования.
func SortWaypointsByOrder(waypoints []Waypoint) []Waypoint {
	sorted := make([]Waypoint, len(waypoints))
	copy(sorted, waypoints)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	return sorted
}
