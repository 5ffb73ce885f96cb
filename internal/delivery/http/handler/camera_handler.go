package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/pkg/errors"
	"github.com/navigation-bridge/internal/pkg/utils"
	"github.com/navigation-bridge/internal/pkg/validator"
	"github.com/navigation-bridge/internal/usecase"
	"github.com/navigation-bridge/internal/usecase/dto"
	"go.uber.org/zap"
)

// CameraHandler - обработчик команд камеры карты
type CameraHandler struct {
	mapViewUC *usecase.MapViewUseCase
	logger    *zap.Logger
}

// NewCameraHandler - создание нового CameraHandler
func NewCameraHandler(mapViewUC *usecase.MapViewUseCase, logger *zap.Logger) *CameraHandler {
	return &CameraHandler{
		mapViewUC: mapViewUC,
		logger:    logger,
	}
}

// GetCamera godoc
// @Summary Текущее кадрирование карты
// @Description Возвращает режим камеры и параметры текущего кадра.
// @Tags Camera
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CameraResponse}
// @Router /api/v1/camera [get]
func (h *CameraHandler) GetCamera(c *fiber.Ctx) error {
	return utils.SendSuccess(c, dto.CameraResponse{
		Mode:  h.mapViewUC.Mode(),
		Frame: h.mapViewUC.CurrentFrame(),
	}, nil)
}

// SetCameraMode godoc
// @Summary Смена режима камеры
// @Description Переключает камеру между режимами following и overview. Незавершённый переход камеры отменяется.
// @Tags Camera
// @Accept json
// @Produce json
// @Param request body dto.CameraModeRequest true "Режим камеры"
// @Success 200 {object} utils.SuccessResponse{data=dto.CommandResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/camera/mode [put]
func (h *CameraHandler) SetCameraMode(c *fiber.Ctx) error {
	var req dto.CameraModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	mode, ok := domain.ParseCameraMode(req.Mode)
	if !ok {
		return utils.SendError(c, errors.ErrInvalidCameraMode)
	}

	h.mapViewUC.SetMode(mode)
	return utils.SendSuccess(c, dto.CommandResponse{Success: true}, nil)
}
