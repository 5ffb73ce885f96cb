package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/pkg/utils"
)

// runSimulation проигрывает движение по геометрии маршрута с постоянной
// скоростью, подавая синтетические обновления позиции в общий тракт
// прогресса. Используется при simulateRoute=true, когда реальных
// обновлений позиции от устройства нет.
func (u *NavigationUseCase) runSimulation(ctx context.Context, route *domain.Route) {
	if len(route.Geometry) == 0 {
		return
	}

	ticker := time.NewTicker(u.cfg.SimulationTick)
	defer ticker.Stop()

	step := u.cfg.SimulationSpeed * u.cfg.SimulationTick.Seconds() // метров за тик

	cursor := simCursor{geometry: route.Geometry}
	u.logger.Debug("Route simulation started",
		zap.Float64("speed_mps", u.cfg.SimulationSpeed),
		zap.Int("geometry_points", len(route.Geometry)))

	for {
		select {
		case <-ctx.Done():
			u.logger.Debug("Route simulation stopped")
			return
		case <-ticker.C:
			loc, done := cursor.advance(step)
			if err := u.OnLocationUpdate(loc); err != nil {
				// Сессия завершена извне
				return
			}
			if done {
				return
			}
		}
	}
}

// simCursor - позиция на ломаной геометрии маршрута
type simCursor struct {
	geometry []domain.Point
	segment  int     // индекс текущего сегмента
	offset   float64 // пройдено метров по текущему сегменту
}

// advance продвигает курсор на meters вперёд и возвращает новую позицию.
// done=true, когда достигнут конец геометрии.
func (c *simCursor) advance(meters float64) (domain.Point, bool) {
	remaining := meters

	for c.segment < len(c.geometry)-1 {
		a := c.geometry[c.segment]
		b := c.geometry[c.segment+1]
		segLen := distanceBetween(a, b)

		if c.offset+remaining < segLen {
			c.offset += remaining
			t := c.offset / segLen
			return domain.Point{
				Lat: utils.Lerp(a.Lat, b.Lat, t),
				Lon: utils.Lerp(a.Lon, b.Lon, t),
			}, false
		}

		remaining -= segLen - c.offset
		c.offset = 0
		c.segment++
	}

	return c.geometry[len(c.geometry)-1], true
}

func distanceBetween(a, b domain.Point) float64 {
	return utils.HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
}
