package postgres

import (
	"context"
	"fmt"

	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/domain/repository"
	"go.uber.org/zap"
)

type tripRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTripRepository создает новый экземпляр trip repository
func NewTripRepository(db *DB, logger *zap.Logger) repository.TripRepository {
	return &tripRepository{
		db:     db,
		logger: logger,
	}
}

// SaveTrip сохраняет сводку завершённой сессии
func (r *tripRepository) SaveTrip(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (session_id, outcome, started_at, ended_at, distance_covered, duration_seconds, waypoint_count)
		VALUES (:session_id, :outcome, :started_at, :ended_at, :distance_covered, :duration_seconds, :waypoint_count)
		ON CONFLICT (session_id) DO UPDATE
		SET outcome = EXCLUDED.outcome,
		    ended_at = EXCLUDED.ended_at,
		    distance_covered = EXCLUDED.distance_covered,
		    duration_seconds = EXCLUDED.duration_seconds
	`

	if _, err := r.db.NamedExecContext(ctx, query, trip); err != nil {
		r.logger.Error("failed to save trip",
			zap.String("session_id", trip.SessionID),
			zap.Error(err))
		return fmt.Errorf("save trip: %w", err)
	}

	r.logger.Debug("Trip saved",
		zap.String("session_id", trip.SessionID),
		zap.String("outcome", string(trip.Outcome)))
	return nil
}

// ListRecent возвращает последние завершённые сессии
func (r *tripRepository) ListRecent(ctx context.Context, limit int) ([]domain.Trip, error) {
	query := `
		SELECT session_id, outcome, started_at, ended_at, distance_covered, duration_seconds, waypoint_count
		FROM trips
		ORDER BY ended_at DESC
		LIMIT $1
	`

	trips := make([]domain.Trip, 0, limit)
	if err := r.db.SelectContext(ctx, &trips, query, limit); err != nil {
		r.logger.Error("failed to list trips", zap.Error(err))
		return nil, fmt.Errorf("list trips: %w", err)
	}

	return trips, nil
}
