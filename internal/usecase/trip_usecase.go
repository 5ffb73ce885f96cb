package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/navigation-bridge/internal/domain/repository"
	"github.com/navigation-bridge/internal/pkg/errors"
	"github.com/navigation-bridge/internal/usecase/dto"
)

// TripUseCase - чтение истории завершённых сессий
type TripUseCase struct {
	tripRepo repository.TripRepository
	logger   *zap.Logger
}

// NewTripUseCase - создание нового TripUseCase
func NewTripUseCase(tripRepo repository.TripRepository, logger *zap.Logger) *TripUseCase {
	return &TripUseCase{
		tripRepo: tripRepo,
		logger:   logger,
	}
}

// ListRecent возвращает последние завершённые сессии
func (uc *TripUseCase) ListRecent(ctx context.Context, limit int) (*dto.TripsResponse, error) {
	if uc.tripRepo == nil {
		return nil, errors.ErrDatabaseError.WithDetails(map[string]interface{}{
			"reason": "trip log storage is not configured",
		})
	}

	if limit <= 0 {
		limit = 20
	}

	trips, err := uc.tripRepo.ListRecent(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to list trips", zap.Error(err))
		return nil, err
	}

	return &dto.TripsResponse{
		Trips: trips,
		Total: len(trips),
	}, nil
}
