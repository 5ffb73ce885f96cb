package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/pkg/utils"
	"github.com/navigation-bridge/internal/pkg/validator"
	"github.com/navigation-bridge/internal/usecase"
	"github.com/navigation-bridge/internal/usecase/dto"
	"go.uber.org/zap"
)

// NavigationHandler - обработчик команд навигационного моста
type NavigationHandler struct {
	navUC  *usecase.NavigationUseCase
	logger *zap.Logger
}

// NewNavigationHandler - создание нового NavigationHandler
func NewNavigationHandler(navUC *usecase.NavigationUseCase, logger *zap.Logger) *NavigationHandler {
	return &NavigationHandler{
		navUC:  navUC,
		logger: logger,
	}
}

// BuildRoute godoc
// @Summary Построение маршрута
// @Description Строит маршрут через упорядоченный список точек во внешнем сервисе направлений. При isOptimized=false точки сортируются по полю order. При более чем трёх точках и неуказанном режиме профиль деградирует с driving-traffic до driving.
// @Tags Navigation
// @Accept json
// @Produce json
// @Param request body dto.BuildRouteRequest true "Точки и опции маршрута"
// @Success 200 {object} utils.SuccessResponse{data=dto.CommandResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/route [post]
func (h *NavigationHandler) BuildRoute(c *fiber.Ctx) error {
	var req dto.BuildRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	if err := h.navUC.BuildRoute(c.Context(), req); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.CommandResponse{Success: true}, nil)
}

// ClearRoute godoc
// @Summary Сброс маршрута
// @Description Убирает построенный маршрут и все связанные данные. Живая сессия при этом отменяется.
// @Tags Navigation
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CommandResponse}
// @Router /api/v1/route [delete]
func (h *NavigationHandler) ClearRoute(c *fiber.Ctx) error {
	if err := h.navUC.ClearRoute(); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.CommandResponse{Success: true}, nil)
}

// StartNavigation godoc
// @Summary Запуск сессии навигации
// @Description Запускает ведение по построенному маршруту. Требует успешного buildRoute.
// @Tags Navigation
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.SessionStateResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/navigation/start [post]
func (h *NavigationHandler) StartNavigation(c *fiber.Ctx) error {
	if err := h.navUC.StartNavigation(); err != nil {
		return utils.SendError(c, err)
	}

	state, sessionID := h.navUC.State()
	return utils.SendSuccess(c, dto.SessionStateResponse{
		State:     state,
		SessionID: sessionID,
	}, nil)
}

// UpdateNavigation godoc
// @Summary Перестроение маршрута живой сессии
// @Description Перестраивает маршрут без остановки сессии. При неудаче сессия остаётся на прежнем маршруте.
// @Tags Navigation
// @Accept json
// @Produce json
// @Param request body dto.UpdateNavigationRequest true "Новый список точек"
// @Success 200 {object} utils.SuccessResponse{data=dto.CommandResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/navigation [put]
func (h *NavigationHandler) UpdateNavigation(c *fiber.Ctx) error {
	var req dto.UpdateNavigationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	if err := h.navUC.UpdateNavigation(c.Context(), req); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.CommandResponse{Success: true}, nil)
}

// FinishNavigation godoc
// @Summary Завершение сессии навигации
// @Description Останавливает активную сессию ведения по маршруту.
// @Tags Navigation
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CommandResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/navigation [delete]
func (h *NavigationHandler) FinishNavigation(c *fiber.Ctx) error {
	if err := h.navUC.FinishNavigation(); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.CommandResponse{Success: true}, nil)
}

// GetDistanceRemaining godoc
// @Summary Оставшееся расстояние
// @Description Возвращает оставшееся расстояние до финальной точки в метрах.
// @Tags Navigation
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.DistanceRemainingResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/navigation/distance-remaining [get]
func (h *NavigationHandler) GetDistanceRemaining(c *fiber.Ctx) error {
	distance, err := h.navUC.DistanceRemaining()
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.DistanceRemainingResponse{DistanceRemaining: distance}, nil)
}

// GetDurationRemaining godoc
// @Summary Оставшееся время
// @Description Возвращает оставшееся время до финальной точки в секундах.
// @Tags Navigation
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.DurationRemainingResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/navigation/duration-remaining [get]
func (h *NavigationHandler) GetDurationRemaining(c *fiber.Ctx) error {
	duration, err := h.navUC.DurationRemaining()
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.DurationRemainingResponse{DurationRemaining: duration}, nil)
}

// UpdateLocation godoc
// @Summary Обновление позиции
// @Description Принимает обновление позиции от хоста и пересчитывает прогресс активной сессии.
// @Tags Navigation
// @Accept json
// @Produce json
// @Param request body dto.LocationUpdateRequest true "Координаты позиции"
// @Success 200 {object} utils.SuccessResponse{data=dto.CommandResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/navigation/location [post]
func (h *NavigationHandler) UpdateLocation(c *fiber.Ctx) error {
	var req dto.LocationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	loc := domain.Point{Lat: req.Latitude, Lon: req.Longitude}
	if err := h.navUC.OnLocationUpdate(loc); err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.CommandResponse{Success: true}, nil)
}
