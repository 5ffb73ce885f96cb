package repository

import (
	"context"

	"github.com/navigation-bridge/internal/domain"
)

// DirectionsRepository определяет методы для работы с внешним сервисом
// построения маршрутов. Весь расчёт маршрутов делегируется ему.
type DirectionsRepository interface {
	// GetRoutes строит маршрут через упорядоченный список точек.
	// Возвращает кандидатов маршрута либо ошибку - ровно одно из двух.
	GetRoutes(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error)
}
