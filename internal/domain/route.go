package domain

import (
	"github.com/navigation-bridge/internal/pkg/utils"
)

// Profile - режим передвижения для расчёта маршрута
type Profile string

const (
	ProfileDrivingTraffic Profile = "driving-traffic"
	ProfileDriving        Profile = "driving"
	ProfileWalking        Profile = "walking"
	ProfileCycling        Profile = "cycling"
)

// ParseProfile распознаёт режим из входящей команды.
// Пустая строка означает, что режим не был указан явно.
func ParseProfile(s string) (Profile, bool) {
	switch s {
	case "drivingWithTraffic", string(ProfileDrivingTraffic):
		return ProfileDrivingTraffic, true
	case "driving", "car":
		return ProfileDriving, true
	case "walking", "pedestrian":
		return ProfileWalking, true
	case "cycling", "bicycle":
		return ProfileCycling, true
	default:
		return "", false
	}
}

// UnitSystem - система единиц измерения расстояний
type UnitSystem string

const (
	UnitsMetric   UnitSystem = "metric"
	UnitsImperial UnitSystem = "imperial"
)

// ParseUnits - "imperial" даёт имперскую систему, всё остальное метрическую
func ParseUnits(s string) UnitSystem {
	if s == string(UnitsImperial) {
		return UnitsImperial
	}
	return UnitsMetric
}

// RouteOptions - опции построения маршрута. Неизменяемы после передачи
// клиенту направлений; пересоздаются на каждый запрос.
type RouteOptions struct {
	Profile          Profile
	Units            UnitSystem
	Language         string
	AllowUTurns      bool
	Alternatives     bool
	SimulateRoute    bool
	MapStyleURLDay   string
	MapStyleURLNight string
}

// RouteRequest - готовый запрос к сервису направлений
type RouteRequest struct {
	Waypoints []Waypoint
	Options   RouteOptions
}

// maxWaypointsForTraffic - при большем числе точек режим с трафиком
// деградирует до обычного driving, чтобы ограничить стоимость расчёта
const maxWaypointsForTraffic = 3

// ResolveProfile применяет политику выбора профиля: если указан явный
// режим, он используется как есть; иначе traffic-aware driving, который
// деградирует до plain driving при более чем трёх точках маршрута.
func ResolveProfile(explicit string, waypointCount int) Profile {
	if p, ok := ParseProfile(explicit); ok {
		return p
	}
	if waypointCount > maxWaypointsForTraffic {
		return ProfileDriving
	}
	return ProfileDrivingTraffic
}

// Route - один вариант пути из результата маршрутизации
type Route struct {
	Distance float64 `json:"distance"` // метры
	Duration float64 `json:"duration"` // секунды
	Geometry []Point `json:"geometry"`
}

// Bounds возвращает bounding box геометрии маршрута
func (r *Route) Bounds() BoundingBox {
	if len(r.Geometry) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{
		MinLat: r.Geometry[0].Lat,
		MaxLat: r.Geometry[0].Lat,
		MinLon: r.Geometry[0].Lon,
		MaxLon: r.Geometry[0].Lon,
	}
	for _, p := range r.Geometry[1:] {
		b = b.Extend(p)
	}
	return b
}

// nearestVertex находит индекс ближайшей к p вершины геометрии
func (r *Route) nearestVertex(p Point) int {
	best := 0
	bestDist := -1.0
	for i, g := range r.Geometry {
		d := utils.HaversineDistance(p.Lat, p.Lon, g.Lat, g.Lon)
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// RemainingFrom вычисляет оставшееся расстояние (метры) и время (секунды)
// от текущей позиции до конца маршрута. Позиция проецируется на ближайшую
// вершину геометрии, время масштабируется по оставшейся доле расстояния.
func (r *Route) RemainingFrom(p Point) (distance, duration float64) {
	if len(r.Geometry) == 0 {
		return 0, 0
	}

	idx := r.nearestVertex(p)
	distance = utils.HaversineDistance(p.Lat, p.Lon, r.Geometry[idx].Lat, r.Geometry[idx].Lon)
	for i := idx; i < len(r.Geometry)-1; i++ {
		distance += utils.HaversineDistance(
			r.Geometry[i].Lat, r.Geometry[i].Lon,
			r.Geometry[i+1].Lat, r.Geometry[i+1].Lon,
		)
	}

	if r.Distance > 0 {
		duration = r.Duration * (distance / r.Distance)
	}
	return distance, duration
}

// RouteResult - кандидаты маршрутов и индекс выбранного.
// Заменяется целиком при каждом успешном перерасчёте.
type RouteResult struct {
	Routes   []Route `json:"routes"`
	Selected int     `json:"selected"`
}

// SelectedRoute возвращает выбранный маршрут или nil, если результата нет
func (rr *RouteResult) SelectedRoute() *Route {
	if rr == nil || len(rr.Routes) == 0 {
		return nil
	}
	if rr.Selected < 0 || rr.Selected >= len(rr.Routes) {
		return &rr.Routes[0]
	}
	return &rr.Routes[rr.Selected]
}
