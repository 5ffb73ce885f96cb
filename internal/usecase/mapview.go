package usecase

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/config"
	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/pkg/utils"
)

// MapViewUseCase владеет состоянием картографической поверхности:
// наложенной геометрией маршрута и кадрированием камеры. Сам рендеринг
// выполняет внешний картографический SDK, сюда стекается только состояние.
//
// Переходы камеры - анимации фиксированной длительности с ease-in-out,
// новый переход отменяет незавершённый (последняя команда выигрывает,
// очереди нет).
type MapViewUseCase struct {
	cfg    *config.NavConfig
	logger *zap.Logger

	mu           sync.Mutex
	route        *domain.Route
	mode         domain.CameraMode
	frame        domain.CameraFrame
	lastLocation *domain.Point
	styleDay     string
	styleNight   string

	// Явный список наблюдателей вместо широковещательных нотификаций:
	// кадры анимации отдаются напрямую подписчикам
	observers []func(domain.CameraFrame)

	animCancel context.CancelFunc
}

// NewMapViewUseCase - создание нового MapViewUseCase
func NewMapViewUseCase(cfg *config.NavConfig, logger *zap.Logger) *MapViewUseCase {
	return &MapViewUseCase{
		cfg:    cfg,
		logger: logger,
		mode:   domain.CameraOverview,
	}
}

// AddObserver регистрирует получателя кадров камеры
func (m *MapViewUseCase) AddObserver(fn func(domain.CameraFrame)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// ShowRoute отображает маршрут и вписывает камеру в его границы
func (m *MapViewUseCase) ShowRoute(route *domain.Route, styleDay, styleNight string) {
	m.mu.Lock()
	m.route = route
	m.styleDay = styleDay
	m.styleNight = styleNight
	m.mode = domain.CameraOverview
	target := m.overviewFrameLocked()
	m.mu.Unlock()

	m.logger.Debug("Route shown on map",
		zap.Int("geometry_points", len(route.Geometry)),
		zap.Float64("distance", route.Distance))

	m.animateTo(target)
}

// ClearRoute убирает маршрут с карты и отменяет текущую анимацию
func (m *MapViewUseCase) ClearRoute() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelAnimationLocked()
	m.route = nil
	m.lastLocation = nil
}

// SetMode переключает режим камеры: following или overview
func (m *MapViewUseCase) SetMode(mode domain.CameraMode) {
	m.mu.Lock()
	m.mode = mode

	var target domain.CameraFrame
	switch mode {
	case domain.CameraFollowing:
		if m.lastLocation == nil {
			m.mu.Unlock()
			return
		}
		target = m.followingFrameLocked(*m.lastLocation, m.frame.Bearing)
	default:
		target = m.overviewFrameLocked()
	}
	m.mu.Unlock()

	m.animateTo(target)
}

// OnLocationUpdate пересчитывает кадр в режиме following на каждом
// обновлении позиции
func (m *MapViewUseCase) OnLocationUpdate(loc domain.Point) {
	m.mu.Lock()
	var bearing float64
	if m.lastLocation != nil {
		bearing = utils.Bearing(m.lastLocation.Lat, m.lastLocation.Lon, loc.Lat, loc.Lon)
	} else {
		bearing = m.frame.Bearing
	}
	m.lastLocation = &loc

	if m.mode != domain.CameraFollowing {
		m.mu.Unlock()
		return
	}
	target := m.followingFrameLocked(loc, bearing)
	m.mu.Unlock()

	m.animateTo(target)
}

// Mode возвращает текущий режим камеры
func (m *MapViewUseCase) Mode() domain.CameraMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// CurrentFrame возвращает текущее кадрирование
func (m *MapViewUseCase) CurrentFrame() domain.CameraFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// followingFrameLocked - кадр слежения: фиксированные zoom/pitch,
// центр в текущей позиции, азимут по направлению движения
func (m *MapViewUseCase) followingFrameLocked(loc domain.Point, bearing float64) domain.CameraFrame {
	return domain.CameraFrame{
		Center:  loc,
		Bearing: bearing,
		Zoom:    m.cfg.FollowZoom,
		Pitch:   m.cfg.FollowPitch,
	}
}

// overviewFrameLocked - обзорный кадр: bounding box маршрута с отступом
func (m *MapViewUseCase) overviewFrameLocked() domain.CameraFrame {
	if m.route == nil {
		return m.frame
	}
	bounds := m.route.Bounds()
	return domain.CameraFrame{
		Center:  bounds.Center(),
		Zoom:    zoomForBounds(bounds, m.cfg.OverviewPadding),
		Padding: m.cfg.OverviewPadding,
	}
}

// zoomForBounds подбирает зум, при котором bounding box помещается
// в видимую область с учётом отступа
func zoomForBounds(b domain.BoundingBox, padding float64) float64 {
	latSpan := b.MaxLat - b.MinLat
	lonSpan := (b.MaxLon - b.MinLon) * math.Cos(b.Center().Lat*math.Pi/180)
	span := math.Max(latSpan, lonSpan)
	if span <= 0 {
		return 15
	}
	// Учитываем отступ как долю от условного экрана в 512px
	span *= 1 + padding/256
	zoom := math.Log2(360 / span)
	if zoom < 1 {
		zoom = 1
	}
	if zoom > 18 {
		zoom = 18
	}
	return zoom
}

// animateTo запускает анимацию перехода к целевому кадру.
// Незавершённая анимация отменяется до старта новой.
func (m *MapViewUseCase) animateTo(target domain.CameraFrame) {
	m.mu.Lock()
	m.cancelAnimationLocked()

	ctx, cancel := context.WithCancel(context.Background())
	m.animCancel = cancel
	start := m.frame
	m.mu.Unlock()

	go m.runAnimation(ctx, start, target)
}

// cancelAnimationLocked отменяет текущую анимацию; вызывать под mu
func (m *MapViewUseCase) cancelAnimationLocked() {
	if m.animCancel != nil {
		m.animCancel()
		m.animCancel = nil
	}
}

func (m *MapViewUseCase) runAnimation(ctx context.Context, start, target domain.CameraFrame) {
	duration := m.cfg.AnimationDuration
	tick := m.cfg.AnimationTick
	startedAt := time.Now()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t := float64(time.Since(startedAt)) / float64(duration)
			eased := utils.EaseInOut(t)
			frame := interpolateFrame(start, target, eased)

			m.mu.Lock()
			m.frame = frame
			observers := m.observers
			m.mu.Unlock()

			for _, fn := range observers {
				fn(frame)
			}

			if t >= 1 {
				return
			}
		}
	}
}

func interpolateFrame(a, b domain.CameraFrame, t float64) domain.CameraFrame {
	return domain.CameraFrame{
		Center: domain.Point{
			Lat: utils.Lerp(a.Center.Lat, b.Center.Lat, t),
			Lon: utils.Lerp(a.Center.Lon, b.Center.Lon, t),
		},
		Bearing: utils.Lerp(a.Bearing, lerpTargetBearing(a.Bearing, b.Bearing), t),
		Zoom:    utils.Lerp(a.Zoom, b.Zoom, t),
		Pitch:   utils.Lerp(a.Pitch, b.Pitch, t),
		Padding: utils.Lerp(a.Padding, b.Padding, t),
	}
}

// lerpTargetBearing выбирает эквивалентный целевой азимут,
// чтобы камера вращалась по короткой дуге
func lerpTargetBearing(from, to float64) float64 {
	diff := to - from
	if diff > 180 {
		return to - 360
	}
	if diff < -180 {
		return to + 360
	}
	return to
}
