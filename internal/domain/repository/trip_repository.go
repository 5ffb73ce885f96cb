package repository

import (
	"context"

	"github.com/navigation-bridge/internal/domain"
)

// TripRepository определяет методы для хранения сводок завершённых сессий
type TripRepository interface {
	// SaveTrip сохраняет сводку завершённой сессии
	SaveTrip(ctx context.Context, trip *domain.Trip) error

	// ListRecent возвращает последние завершённые сессии
	ListRecent(ctx context.Context, limit int) ([]domain.Trip, error)
}
