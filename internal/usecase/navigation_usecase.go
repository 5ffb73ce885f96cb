package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/config"
	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/domain/repository"
	"github.com/navigation-bridge/internal/pkg/errors"
	"github.com/navigation-bridge/internal/usecase/dto"
)

// EventEmitter - исходящий поток событий моста
type EventEmitter interface {
	Emit(event domain.Event)
}

// NavigationUseCase - контроллер сессии навигации. Владеет маршрутом,
// состоянием сессии и прогрессом; весь расчёт маршрутов делегирован
// внешнему сервису направлений, ведение по маршруту - тикам позиции
// (от хоста или симулятора).
//
// Все мутации состояния идут под одним мьютексом; асинхронные
// завершения (ответ сервиса направлений) перед применением заново
// берут мьютекс и проверяют номер поколения запроса - применяется
// только последний выданный запрос (last-response-wins).
type NavigationUseCase struct {
	directions repository.DirectionsRepository
	mapView    *MapViewUseCase
	emitter    EventEmitter
	cfg        *config.NavConfig
	logger     *zap.Logger

	mu             sync.Mutex
	state          domain.SessionState
	sessionID      string
	startedAt      time.Time
	waypoints      []domain.Waypoint
	options        domain.RouteOptions
	routeResult    *domain.RouteResult
	progress       domain.Progress
	arrivalEmitted bool
	buildSeq       uint64
	simCancel      context.CancelFunc
}

// NewNavigationUseCase - создание нового NavigationUseCase
func NewNavigationUseCase(
	directions repository.DirectionsRepository,
	mapView *MapViewUseCase,
	emitter EventEmitter,
	cfg *config.NavConfig,
	logger *zap.Logger,
) *NavigationUseCase {
	return &NavigationUseCase{
		directions: directions,
		mapView:    mapView,
		emitter:    emitter,
		cfg:        cfg,
		logger:     logger,
		state:      domain.SessionIdle,
	}
}

// State возвращает текущее состояние сессии
func (u *NavigationUseCase) State() (domain.SessionState, string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state, u.sessionID
}

// BuildRoute строит маршрут через внешний сервис направлений.
// Ошибка никогда не трогает уже построенный маршрут: неудачный
// перерасчёт не сбрасывает предыдущий результат.
func (u *NavigationUseCase) BuildRoute(ctx context.Context, req dto.BuildRouteRequest) error {
	waypoints, err := dto.ToWaypoints(req.Waypoints, req.IsOptimized)
	if err != nil {
		// Отсутствие координат - явная ошибка команды, а не молчаливый
		// отказ: вызывающая сторона всегда получает ответ
		return err
	}
	if len(waypoints) < 2 {
		return errors.ErrNotEnoughWaypoints
	}

	options := u.resolveOptions(req, len(waypoints))

	u.mu.Lock()
	if u.state == domain.SessionActive || u.state == domain.SessionRerouting {
		u.mu.Unlock()
		return errors.ErrNoActiveSession.WithDetails(map[string]interface{}{
			"reason": "session is live, use updateNavigation to change waypoints",
		})
	}
	if u.state == domain.SessionEnded {
		u.state = domain.SessionIdle
	}
	u.state = domain.SessionBuilding
	u.buildSeq++
	seq := u.buildSeq
	u.mu.Unlock()

	u.emitter.Emit(u.makeEvent(domain.EventRouteBuilding, nil))

	result, buildErr := u.directions.GetRoutes(ctx, domain.RouteRequest{
		Waypoints: waypoints,
		Options:   options,
	})

	u.mu.Lock()
	if seq != u.buildSeq {
		// Пока шёл запрос, был выдан более новый - его ответ канонический
		u.mu.Unlock()
		u.logger.Debug("Route build superseded", zap.Uint64("seq", seq))
		return errors.ErrRouteBuildFailed.WithDetails(map[string]interface{}{
			"reason": "superseded by a newer build request",
		})
	}

	if buildErr != nil {
		if u.state == domain.SessionBuilding && u.routeResult == nil {
			u.state = domain.SessionIdle
		}
		u.mu.Unlock()

		u.logger.Error("Route build failed", zap.Error(buildErr))
		u.emitter.Emit(u.makeEvent(domain.EventRouteBuildFailed, map[string]interface{}{
			"error": buildErr.Error(),
		}))
		return errors.ErrRouteBuildFailed
	}

	route := result.SelectedRoute()
	u.routeResult = result
	u.waypoints = waypoints
	u.options = options
	u.progress = domain.Progress{
		DistanceRemaining: route.Distance,
		DurationRemaining: route.Duration,
	}
	u.mu.Unlock()

	u.mapView.ShowRoute(route, options.MapStyleURLDay, options.MapStyleURLNight)

	u.emitter.Emit(u.makeEvent(domain.EventRouteBuilt, map[string]interface{}{
		"route_distance": route.Distance,
		"route_duration": route.Duration,
		"routes_count":   len(result.Routes),
	}))

	u.logger.Info("Route built",
		zap.Int("waypoints", len(waypoints)),
		zap.String("profile", string(options.Profile)),
		zap.Float64("distance", route.Distance))

	return nil
}

// StartNavigation запускает сессию ведения по построенному маршруту
func (u *NavigationUseCase) StartNavigation() error {
	u.mu.Lock()
	if u.routeResult == nil {
		u.mu.Unlock()
		return errors.ErrNoActiveRoute
	}
	if !u.state.CanTransition(domain.SessionActive) {
		u.mu.Unlock()
		return errors.ErrNoActiveRoute.WithDetails(map[string]interface{}{
			"state": string(u.state),
		})
	}

	u.state = domain.SessionActive
	u.sessionID = uuid.NewString()
	u.startedAt = time.Now().UTC()
	u.arrivalEmitted = false

	route := u.routeResult.SelectedRoute()
	u.progress = domain.Progress{
		DistanceRemaining: route.Distance,
		DurationRemaining: route.Duration,
	}

	simulate := u.options.SimulateRoute
	var simCtx context.Context
	if simulate {
		simCtx, u.simCancel = context.WithCancel(context.Background())
	}
	waypointCount := len(u.waypoints)
	u.mu.Unlock()

	u.mapView.SetMode(domain.CameraFollowing)

	u.emitter.Emit(u.makeEvent(domain.EventNavigationRunning, map[string]interface{}{
		"waypoint_count": waypointCount,
		"route_distance": route.Distance,
		"route_duration": route.Duration,
		"simulated":      simulate,
	}))

	if simulate {
		go u.runSimulation(simCtx, route)
	}

	u.logger.Info("Navigation session started",
		zap.String("session_id", u.sessionID),
		zap.Bool("simulated", simulate))

	return nil
}

// UpdateNavigation перестраивает маршрут живой сессии без её остановки.
// При неудаче сессия остаётся на прежнем маршруте.
func (u *NavigationUseCase) UpdateNavigation(ctx context.Context, req dto.UpdateNavigationRequest) error {
	waypoints, err := dto.ToWaypoints(req.Waypoints, false)
	if err != nil {
		return err
	}
	if len(waypoints) < 2 {
		return errors.ErrNotEnoughWaypoints
	}

	u.mu.Lock()
	if u.state != domain.SessionActive {
		u.mu.Unlock()
		return errors.ErrNoActiveSession
	}
	u.state = domain.SessionRerouting
	u.buildSeq++
	seq := u.buildSeq
	options := u.options
	u.mu.Unlock()

	u.emitter.Emit(u.makeEvent(domain.EventRouteBuilding, nil))

	result, buildErr := u.directions.GetRoutes(ctx, domain.RouteRequest{
		Waypoints: waypoints,
		Options:   options,
	})

	u.mu.Lock()
	if seq != u.buildSeq {
		if u.state == domain.SessionRerouting {
			u.state = domain.SessionActive
		}
		u.mu.Unlock()
		return errors.ErrRouteBuildFailed.WithDetails(map[string]interface{}{
			"reason": "superseded by a newer build request",
		})
	}

	if u.state != domain.SessionRerouting {
		// Сессию успели завершить, пока шёл перерасчёт
		u.mu.Unlock()
		return errors.ErrNoActiveSession
	}

	if buildErr != nil {
		u.state = domain.SessionActive
		u.mu.Unlock()

		u.logger.Error("Reroute failed, keeping previous route", zap.Error(buildErr))
		u.emitter.Emit(u.makeEvent(domain.EventRouteBuildFailed, map[string]interface{}{
			"error": buildErr.Error(),
		}))
		return errors.ErrRouteBuildFailed
	}

	route := result.SelectedRoute()
	u.routeResult = result
	u.waypoints = waypoints
	u.state = domain.SessionActive
	u.progress.DistanceRemaining = route.Distance
	u.progress.DurationRemaining = route.Duration
	u.mu.Unlock()

	u.mapView.ShowRoute(route, options.MapStyleURLDay, options.MapStyleURLNight)

	u.emitter.Emit(u.makeEvent(domain.EventRouteBuilt, map[string]interface{}{
		"route_distance": route.Distance,
		"route_duration": route.Duration,
		"rerouted":       true,
	}))

	return nil
}

// FinishNavigation завершает активную сессию по команде хоста
func (u *NavigationUseCase) FinishNavigation() error {
	u.mu.Lock()
	if u.state != domain.SessionActive && u.state != domain.SessionRerouting {
		u.mu.Unlock()
		return errors.ErrNoActiveSession
	}

	u.stopSimulationLocked()
	u.state = domain.SessionEnded
	arrived := u.arrivalEmitted
	u.mu.Unlock()

	u.mapView.SetMode(domain.CameraOverview)

	if !arrived {
		u.emitter.Emit(u.makeEvent(domain.EventNavigationCancelled, nil))
	}

	u.logger.Info("Navigation session finished", zap.String("session_id", u.sessionID))
	return nil
}

// ClearRoute сбрасывает маршрут и все связанные с ним данные.
// Живая сессия при этом отменяется.
func (u *NavigationUseCase) ClearRoute() error {
	u.mu.Lock()
	wasLive := u.state == domain.SessionActive || u.state == domain.SessionRerouting

	u.stopSimulationLocked()
	// Инвалидируем возможный незавершённый build
	u.buildSeq++
	u.routeResult = nil
	u.waypoints = nil
	u.progress = domain.Progress{}
	u.arrivalEmitted = false
	u.state = domain.SessionIdle
	u.sessionID = ""
	u.mu.Unlock()

	u.mapView.ClearRoute()

	if wasLive {
		u.emitter.Emit(u.makeEvent(domain.EventNavigationCancelled, nil))
	}

	u.logger.Info("Route cleared")
	return nil
}

// OnLocationUpdate - тик прогресса: пересчитывает оставшиеся
// расстояние и время, детектирует прибытие на финальную точку.
// После прибытия дальнейшие тики сессии подавляются.
func (u *NavigationUseCase) OnLocationUpdate(loc domain.Point) error {
	u.mu.Lock()
	if u.state != domain.SessionActive && u.state != domain.SessionRerouting {
		u.mu.Unlock()
		return errors.ErrNoActiveSession
	}
	if u.arrivalEmitted {
		u.mu.Unlock()
		return nil
	}

	route := u.routeResult.SelectedRoute()
	distance, duration := route.RemainingFrom(loc)
	u.progress.DistanceRemaining = distance
	u.progress.DurationRemaining = duration
	u.progress.Location = loc

	final := u.waypoints[len(u.waypoints)-1]
	toFinal := distanceBetween(loc, domain.Point{Lat: final.Lat, Lon: final.Lon})
	arrived := toFinal <= u.cfg.ArrivalThreshold

	if arrived {
		u.progress.Arrived = true
		u.arrivalEmitted = true
		u.stopSimulationLocked()
		u.state = domain.SessionEnded
	}
	u.mu.Unlock()

	u.mapView.OnLocationUpdate(loc)

	if arrived {
		u.emitter.Emit(u.makeEvent(domain.EventOnArrival, nil))
		u.logger.Info("Arrived at final waypoint", zap.String("session_id", u.sessionID))
	} else {
		u.emitter.Emit(u.makeEvent(domain.EventProgressChange, nil))
	}

	return nil
}

// DistanceRemaining возвращает оставшееся расстояние в метрах
func (u *NavigationUseCase) DistanceRemaining() (float64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.routeResult == nil {
		return 0, errors.ErrNoActiveRoute
	}
	return u.progress.DistanceRemaining, nil
}

// DurationRemaining возвращает оставшееся время в секундах
func (u *NavigationUseCase) DurationRemaining() (float64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.routeResult == nil {
		return 0, errors.ErrNoActiveRoute
	}
	return u.progress.DurationRemaining, nil
}

// resolveOptions собирает неизменяемые опции маршрута из команды
// и значений по умолчанию
func (u *NavigationUseCase) resolveOptions(req dto.BuildRouteRequest, waypointCount int) domain.RouteOptions {
	language := req.Language
	if language == "" {
		language = u.cfg.DefaultLanguage
	}
	styleDay := req.MapStyleURLDay
	if styleDay == "" {
		styleDay = u.cfg.MapStyleURLDay
	}
	styleNight := req.MapStyleURLNight
	if styleNight == "" {
		styleNight = u.cfg.MapStyleURLNight
	}

	return domain.RouteOptions{
		Profile:          domain.ResolveProfile(req.Mode, waypointCount),
		Units:            domain.ParseUnits(req.Units),
		Language:         language,
		AllowUTurns:      req.AllowsUTurnAtWayPoints,
		Alternatives:     req.Alternatives,
		SimulateRoute:    req.SimulateRoute,
		MapStyleURLDay:   styleDay,
		MapStyleURLNight: styleNight,
	}
}

// makeEvent собирает событие с текущим прогрессом
func (u *NavigationUseCase) makeEvent(t domain.EventType, data map[string]interface{}) domain.Event {
	u.mu.Lock()
	defer u.mu.Unlock()

	if data == nil {
		data = map[string]interface{}{}
	}
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)

	return domain.Event{
		Type:              t,
		SessionID:         u.sessionID,
		DistanceRemaining: u.progress.DistanceRemaining,
		DurationRemaining: u.progress.DurationRemaining,
		Data:              data,
	}
}

// stopSimulationLocked останавливает симулятор; вызывать под mu
func (u *NavigationUseCase) stopSimulationLocked() {
	if u.simCancel != nil {
		u.simCancel()
		u.simCancel = nil
	}
}
