package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/config"
	"github.com/navigation-bridge/internal/domain"
	apperrors "github.com/navigation-bridge/internal/pkg/errors"
	"github.com/navigation-bridge/internal/usecase"
	"github.com/navigation-bridge/internal/usecase/dto"
)

// MockDirectionsRepository - мок внешнего сервиса направлений
type MockDirectionsRepository struct {
	mock.Mock
}

func (m *MockDirectionsRepository) GetRoutes(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteResult), args.Error(1)
}

// captureEmitter накапливает испущенные события для проверок
type captureEmitter struct {
	mu     sync.Mutex
	events []domain.Event
}

func (e *captureEmitter) Emit(event domain.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *captureEmitter) Types() []domain.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]domain.EventType, len(e.events))
	for i, ev := range e.events {
		types[i] = ev.Type
	}
	return types
}

func (e *captureEmitter) Count(t domain.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (e *captureEmitter) Last(t domain.EventType) *domain.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.events) - 1; i >= 0; i-- {
		if e.events[i].Type == t {
			ev := e.events[i]
			return &ev
		}
	}
	return nil
}

func testNavConfig() *config.NavConfig {
	return &config.NavConfig{
		DefaultLanguage:   "en",
		DefaultUnits:      "metric",
		ArrivalThreshold:  30,
		FollowZoom:        16,
		FollowPitch:       45,
		OverviewPadding:   64,
		AnimationDuration: 10 * time.Millisecond,
		AnimationTick:     2 * time.Millisecond,
		SimulationTick:    10 * time.Millisecond,
		SimulationSpeed:   13.9,
	}
}

func floatPtr(v float64) *float64 { return &v }

func wpInput(name string, lat, lon float64) dto.WaypointInput {
	return dto.WaypointInput{Name: name, Latitude: floatPtr(lat), Longitude: floatPtr(lon)}
}

func testWaypoints() []dto.WaypointInput {
	return []dto.WaypointInput{
		wpInput("start", 41.38, 2.17),
		wpInput("finish", 41.40, 2.17),
	}
}

func testRouteResult(distance, duration float64) *domain.RouteResult {
	return &domain.RouteResult{
		Routes: []domain.Route{
			{
				Distance: distance,
				Duration: duration,
				Geometry: []domain.Point{
					{Lat: 41.38, Lon: 2.17},
					{Lat: 41.39, Lon: 2.17},
					{Lat: 41.40, Lon: 2.17},
				},
			},
		},
	}
}

func newTestUseCase(t *testing.T, directions *MockDirectionsRepository) (*usecase.NavigationUseCase, *captureEmitter) {
	t.Helper()
	logger := zap.NewNop()
	cfg := testNavConfig()
	emitter := &captureEmitter{}
	mapView := usecase.NewMapViewUseCase(cfg, logger)
	return usecase.NewNavigationUseCase(directions, mapView, emitter, cfg, logger), emitter
}

func TestNavigationUseCase_BuildRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("successful build emits building then built", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil)

		uc, emitter := newTestUseCase(t, directions)

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()})
		require.NoError(t, err)

		assert.Equal(t, 1, emitter.Count(domain.EventRouteBuilding))
		assert.Equal(t, 1, emitter.Count(domain.EventRouteBuilt))

		built := emitter.Last(domain.EventRouteBuilt)
		require.NotNil(t, built)
		assert.Equal(t, 2224.0, built.Data["route_distance"])
		assert.NotEmpty(t, built.Data["timestamp"])

		distance, err := uc.DistanceRemaining()
		require.NoError(t, err)
		assert.Equal(t, 2224.0, distance)

		state, _ := uc.State()
		assert.Equal(t, domain.SessionBuilding, state)

		directions.AssertExpectations(t)
	})

	t.Run("missing coordinates is an explicit error", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		uc, emitter := newTestUseCase(t, directions)

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{
			Waypoints: []dto.WaypointInput{
				wpInput("start", 41.38, 2.17),
				{Name: "broken", Latitude: floatPtr(41.40)},
			},
		})

		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrMissingCoordinates.Code, appErr.Code)
		assert.Equal(t, 1, appErr.Details["waypoint_index"])
		assert.Equal(t, "broken", appErr.Details["waypoint_name"])

		// Сервис направлений не должен вызываться вовсе
		directions.AssertNotCalled(t, "GetRoutes")
		assert.Empty(t, emitter.Types())
	})

	t.Run("not enough waypoints", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		uc, _ := newTestUseCase(t, directions)

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{
			Waypoints: []dto.WaypointInput{wpInput("only", 41.38, 2.17)},
		})

		assert.ErrorIs(t, err, apperrors.ErrNotEnoughWaypoints)
		directions.AssertNotCalled(t, "GetRoutes")
	})

	t.Run("failed build with no prior route resets to idle", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(nil, assert.AnError)

		uc, emitter := newTestUseCase(t, directions)

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()})
		require.Error(t, err)

		assert.Equal(t, 1, emitter.Count(domain.EventRouteBuildFailed))

		state, _ := uc.State()
		assert.Equal(t, domain.SessionIdle, state)

		_, err = uc.DistanceRemaining()
		assert.Error(t, err)
	})

	t.Run("failed rebuild keeps previous route", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil).Once()
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(nil, assert.AnError).Once()

		uc, emitter := newTestUseCase(t, directions)

		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.Error(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))

		// Предыдущий маршрут остаётся доступным
		distance, err := uc.DistanceRemaining()
		require.NoError(t, err)
		assert.Equal(t, 2224.0, distance)

		assert.Equal(t, 1, emitter.Count(domain.EventRouteBuilt))
		assert.Equal(t, 1, emitter.Count(domain.EventRouteBuildFailed))
	})

	t.Run("rejected while session is live", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil).Once()

		uc, _ := newTestUseCase(t, directions)

		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.StartNavigation())

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()})
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrNoActiveSession.Code, appErr.Code)
	})

	t.Run("superseded build loses to the newest request", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		uc, emitter := newTestUseCase(t, directions)

		newer := testRouteResult(999, 120)

		// Пока первый запрос "в полёте", прилетает второй: его ответ
		// канонический, первый обязан отброситься
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil).Once().
			Run(func(args mock.Arguments) {
				directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
					Return(newer, nil).Once()
				require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
			})

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()})
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrRouteBuildFailed.Code, appErr.Code)

		distance, err := uc.DistanceRemaining()
		require.NoError(t, err)
		assert.Equal(t, 999.0, distance)

		assert.Equal(t, 1, emitter.Count(domain.EventRouteBuilt))
	})
}

func TestNavigationUseCase_StartNavigation(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a built route", func(t *testing.T) {
		uc, _ := newTestUseCase(t, &MockDirectionsRepository{})
		assert.ErrorIs(t, uc.StartNavigation(), apperrors.ErrNoActiveRoute)
	})

	t.Run("starts session and emits navigation_running", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil)

		uc, emitter := newTestUseCase(t, directions)
		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.StartNavigation())

		state, sessionID := uc.State()
		assert.Equal(t, domain.SessionActive, state)
		assert.NotEmpty(t, sessionID)

		running := emitter.Last(domain.EventNavigationRunning)
		require.NotNil(t, running)
		assert.Equal(t, sessionID, running.SessionID)
		assert.Equal(t, 2, running.Data["waypoint_count"])
		assert.Equal(t, 2224.0, running.Data["route_distance"])
		assert.Equal(t, false, running.Data["simulated"])
	})
}

func TestNavigationUseCase_UpdateNavigation(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a live session", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		uc, _ := newTestUseCase(t, directions)

		err := uc.UpdateNavigation(ctx, dto.UpdateNavigationRequest{Waypoints: testWaypoints()})
		assert.ErrorIs(t, err, apperrors.ErrNoActiveSession)
		directions.AssertNotCalled(t, "GetRoutes")
	})

	t.Run("replaces the route of a live session", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil).Once()
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(3500, 480), nil).Once()

		uc, emitter := newTestUseCase(t, directions)
		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.StartNavigation())

		require.NoError(t, uc.UpdateNavigation(ctx, dto.UpdateNavigationRequest{
			Waypoints: []dto.WaypointInput{
				wpInput("start", 41.38, 2.17),
				wpInput("detour", 41.41, 2.18),
			},
		}))

		state, _ := uc.State()
		assert.Equal(t, domain.SessionActive, state)

		distance, err := uc.DistanceRemaining()
		require.NoError(t, err)
		assert.Equal(t, 3500.0, distance)

		rebuilt := emitter.Last(domain.EventRouteBuilt)
		require.NotNil(t, rebuilt)
		assert.Equal(t, true, rebuilt.Data["rerouted"])
	})

	t.Run("failed reroute keeps session on the old route", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil).Once()
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(nil, assert.AnError).Once()

		uc, emitter := newTestUseCase(t, directions)
		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.StartNavigation())

		err := uc.UpdateNavigation(ctx, dto.UpdateNavigationRequest{Waypoints: testWaypoints()})
		require.Error(t, err)

		state, _ := uc.State()
		assert.Equal(t, domain.SessionActive, state)

		distance, derr := uc.DistanceRemaining()
		require.NoError(t, derr)
		assert.Equal(t, 2224.0, distance)

		assert.Equal(t, 1, emitter.Count(domain.EventRouteBuildFailed))
	})
}

func TestNavigationUseCase_FinishNavigation(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a live session", func(t *testing.T) {
		uc, _ := newTestUseCase(t, &MockDirectionsRepository{})
		assert.ErrorIs(t, uc.FinishNavigation(), apperrors.ErrNoActiveSession)
	})

	t.Run("cancellation emits navigation_cancelled", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil)

		uc, emitter := newTestUseCase(t, directions)
		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.StartNavigation())
		require.NoError(t, uc.FinishNavigation())

		state, _ := uc.State()
		assert.Equal(t, domain.SessionEnded, state)
		assert.Equal(t, 1, emitter.Count(domain.EventNavigationCancelled))
	})
}

func TestNavigationUseCase_OnLocationUpdate(t *testing.T) {
	ctx := context.Background()

	startSession := func(t *testing.T) (*usecase.NavigationUseCase, *captureEmitter) {
		t.Helper()
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil)

		uc, emitter := newTestUseCase(t, directions)
		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.StartNavigation())
		return uc, emitter
	}

	t.Run("requires a live session", func(t *testing.T) {
		uc, _ := newTestUseCase(t, &MockDirectionsRepository{})
		err := uc.OnLocationUpdate(domain.Point{Lat: 41.38, Lon: 2.17})
		assert.ErrorIs(t, err, apperrors.ErrNoActiveSession)
	})

	t.Run("mid route tick emits progress_change", func(t *testing.T) {
		uc, emitter := startSession(t)

		require.NoError(t, uc.OnLocationUpdate(domain.Point{Lat: 41.39, Lon: 2.17}))

		assert.Equal(t, 1, emitter.Count(domain.EventProgressChange))
		assert.Equal(t, 0, emitter.Count(domain.EventOnArrival))

		progress := emitter.Last(domain.EventProgressChange)
		require.NotNil(t, progress)
		assert.InDelta(t, 1112, progress.DistanceRemaining, 60)

		distance, err := uc.DistanceRemaining()
		require.NoError(t, err)
		assert.InDelta(t, 1112, distance, 60)
	})

	t.Run("arrival is detected and emitted exactly once", func(t *testing.T) {
		uc, emitter := startSession(t)

		require.NoError(t, uc.OnLocationUpdate(domain.Point{Lat: 41.39, Lon: 2.17}))
		require.NoError(t, uc.OnLocationUpdate(domain.Point{Lat: 41.40, Lon: 2.17}))

		assert.Equal(t, 1, emitter.Count(domain.EventOnArrival))

		state, _ := uc.State()
		assert.Equal(t, domain.SessionEnded, state)

		// После прибытия сессия завершена, дальнейшие тики отклоняются
		require.Error(t, uc.OnLocationUpdate(domain.Point{Lat: 41.40, Lon: 2.17}))
		assert.Equal(t, 1, emitter.Count(domain.EventOnArrival))
		assert.Equal(t, 1, emitter.Count(domain.EventProgressChange))
	})

	t.Run("arrival suppresses cancellation on finish", func(t *testing.T) {
		uc, emitter := startSession(t)

		require.NoError(t, uc.OnLocationUpdate(domain.Point{Lat: 41.40, Lon: 2.17}))
		assert.Equal(t, 1, emitter.Count(domain.EventOnArrival))

		// Сессия уже завершена прибытием
		assert.ErrorIs(t, uc.FinishNavigation(), apperrors.ErrNoActiveSession)
		assert.Equal(t, 0, emitter.Count(domain.EventNavigationCancelled))
	})
}

func TestNavigationUseCase_ClearRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("resets everything to idle", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil)

		uc, _ := newTestUseCase(t, directions)
		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.ClearRoute())

		state, sessionID := uc.State()
		assert.Equal(t, domain.SessionIdle, state)
		assert.Empty(t, sessionID)

		_, err := uc.DistanceRemaining()
		assert.Error(t, err)
	})

	t.Run("cancels a live session", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Return(testRouteResult(2224, 300), nil)

		uc, emitter := newTestUseCase(t, directions)
		require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{Waypoints: testWaypoints()}))
		require.NoError(t, uc.StartNavigation())
		require.NoError(t, uc.ClearRoute())

		assert.Equal(t, 1, emitter.Count(domain.EventNavigationCancelled))

		state, _ := uc.State()
		assert.Equal(t, domain.SessionIdle, state)
	})
}

func TestNavigationUseCase_ProfilePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("many waypoints degrade traffic profile", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		var captured domain.RouteRequest
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(domain.RouteRequest)
			}).
			Return(testRouteResult(5000, 600), nil)

		uc, _ := newTestUseCase(t, directions)

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{
			Waypoints: []dto.WaypointInput{
				wpInput("a", 41.38, 2.17),
				wpInput("b", 41.39, 2.17),
				wpInput("c", 41.40, 2.17),
				wpInput("d", 41.41, 2.17),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProfileDriving, captured.Options.Profile)
	})

	t.Run("explicit mode wins over the policy", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		var captured domain.RouteRequest
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(domain.RouteRequest)
			}).
			Return(testRouteResult(5000, 600), nil)

		uc, _ := newTestUseCase(t, directions)

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{
			Mode: "pedestrian",
			Waypoints: []dto.WaypointInput{
				wpInput("a", 41.38, 2.17),
				wpInput("b", 41.39, 2.17),
				wpInput("c", 41.40, 2.17),
				wpInput("d", 41.41, 2.17),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProfileWalking, captured.Options.Profile)
	})

	t.Run("unordered waypoints are sorted unless optimized", func(t *testing.T) {
		directions := &MockDirectionsRepository{}
		var captured domain.RouteRequest
		directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(domain.RouteRequest)
			}).
			Return(testRouteResult(5000, 600), nil)

		uc, _ := newTestUseCase(t, directions)

		second := wpInput("second", 41.39, 2.17)
		second.Order = intPtr(1)
		first := wpInput("first", 41.38, 2.17)
		first.Order = intPtr(0)

		err := uc.BuildRoute(ctx, dto.BuildRouteRequest{
			Waypoints: []dto.WaypointInput{second, first},
		})
		require.NoError(t, err)
		require.Len(t, captured.Waypoints, 2)
		assert.Equal(t, "first", captured.Waypoints[0].Name)
		assert.Equal(t, "second", captured.Waypoints[1].Name)
	})
}

func intPtr(v int) *int { return &v }
