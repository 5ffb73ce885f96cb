package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/navigation-bridge/internal/pkg/utils"
	"github.com/navigation-bridge/internal/usecase"
	"go.uber.org/zap"
)

// TripHandler - обработчик истории завершённых сессий
type TripHandler struct {
	tripUC *usecase.TripUseCase
	logger *zap.Logger
}

// NewTripHandler - создание нового TripHandler
func NewTripHandler(tripUC *usecase.TripUseCase, logger *zap.Logger) *TripHandler {
	return &TripHandler{
		tripUC: tripUC,
		logger: logger,
	}
}

// ListTrips godoc
// @Summary Последние завершённые сессии
// @Description Возвращает сводки последних завершённых навигационных сессий.
// @Tags Trips
// @Produce json
// @Param limit query int false "Максимальное количество результатов" default(20)
// @Success 200 {object} utils.SuccessResponse{data=dto.TripsResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/trips [get]
func (h *TripHandler) ListTrips(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	result, err := h.tripUC.ListRecent(c.Context(), limit)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
	})
}
