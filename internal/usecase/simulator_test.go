package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/usecase"
	"github.com/navigation-bridge/internal/usecase/dto"
)

func TestNavigationUseCase_SimulatedSession(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	// Быстрая симуляция: короткий маршрут, большой шаг за тик
	cfg := testNavConfig()
	cfg.SimulationTick = 5 * time.Millisecond
	cfg.SimulationSpeed = 10000

	// ~111 метров строго на север
	shortRoute := &domain.RouteResult{
		Routes: []domain.Route{
			{
				Distance: 111,
				Duration: 30,
				Geometry: []domain.Point{
					{Lat: 41.380, Lon: 2.17},
					{Lat: 41.381, Lon: 2.17},
				},
			},
		},
	}

	directions := &MockDirectionsRepository{}
	directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
		Return(shortRoute, nil)

	emitter := &captureEmitter{}
	mapView := usecase.NewMapViewUseCase(cfg, logger)
	uc := usecase.NewNavigationUseCase(directions, mapView, emitter, cfg, logger)

	err := uc.BuildRoute(ctx, dto.BuildRouteRequest{
		SimulateRoute: true,
		Waypoints: []dto.WaypointInput{
			wpInput("start", 41.380, 2.17),
			wpInput("finish", 41.381, 2.17),
		},
	})
	require.NoError(t, err)
	require.NoError(t, uc.StartNavigation())

	running := emitter.Last(domain.EventNavigationRunning)
	require.NotNil(t, running)
	assert.Equal(t, true, running.Data["simulated"])

	// Симулятор сам доводит сессию до прибытия
	require.Eventually(t, func() bool {
		return emitter.Count(domain.EventOnArrival) == 1
	}, 3*time.Second, 10*time.Millisecond)

	state, _ := uc.State()
	assert.Equal(t, domain.SessionEnded, state)

	// Прибытие ровно одно, после него тиков больше нет
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, emitter.Count(domain.EventOnArrival))
}

func TestNavigationUseCase_FinishStopsSimulation(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	cfg := testNavConfig()
	cfg.SimulationTick = 50 * time.Millisecond
	cfg.SimulationSpeed = 1 // еле ползём, прибытие не успевает случиться

	directions := &MockDirectionsRepository{}
	directions.On("GetRoutes", ctx, mock.AnythingOfType("domain.RouteRequest")).
		Return(testRouteResult(2224, 300), nil)

	emitter := &captureEmitter{}
	mapView := usecase.NewMapViewUseCase(cfg, logger)
	uc := usecase.NewNavigationUseCase(directions, mapView, emitter, cfg, logger)

	require.NoError(t, uc.BuildRoute(ctx, dto.BuildRouteRequest{
		SimulateRoute: true,
		Waypoints:     testWaypoints(),
	}))
	require.NoError(t, uc.StartNavigation())
	require.NoError(t, uc.FinishNavigation())

	state, _ := uc.State()
	assert.Equal(t, domain.SessionEnded, state)
	assert.Equal(t, 1, emitter.Count(domain.EventNavigationCancelled))
	assert.Equal(t, 0, emitter.Count(domain.EventOnArrival))
}
