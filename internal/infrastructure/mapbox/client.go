package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/navigation-bridge/internal/config"
	"github.com/navigation-bridge/internal/domain"
	"github.com/navigation-bridge/internal/domain/repository"
	"go.uber.org/zap"
)

type client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

// NewDirectionsClient создает новый клиент для Mapbox Directions API
func NewDirectionsClient(cfg *config.MapboxConfig, logger *zap.Logger) repository.DirectionsRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		baseURL:     cfg.BaseURL,
		accessToken: cfg.AccessToken,
		logger:      logger,
	}
}

// directionsResponse - формат ответа Directions API v5
type directionsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Directions API принимает не больше 25 точек на запрос
const maxWaypointsPerRequest = 25

// GetRoutes строит маршрут через упорядоченный список точек
func (c *client) GetRoutes(ctx context.Context, req domain.RouteRequest) (*domain.RouteResult, error) {
	if len(req.Waypoints) < 2 {
		return nil, fmt.Errorf("at least two waypoints are required")
	}
	if len(req.Waypoints) > maxWaypointsPerRequest {
		return nil, fmt.Errorf("waypoint count exceeds Mapbox limit of %d points", maxWaypointsPerRequest)
	}

	coordinates := make([]string, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		coordinates[i] = fmt.Sprintf("%f,%f", wp.Lon, wp.Lat)
	}

	query := url.Values{}
	query.Set("geometries", "geojson")
	query.Set("overview", "full")
	query.Set("access_token", c.accessToken)
	if req.Options.Language != "" {
		query.Set("language", req.Options.Language)
	}
	if req.Options.Alternatives {
		query.Set("alternatives", "true")
	}
	// continue_straight=true запрещает развороты на промежуточных точках
	query.Set("continue_straight", fmt.Sprintf("%t", !req.Options.AllowUTurns))

	reqURL := fmt.Sprintf("%s/directions/v5/mapbox/%s/%s?%s",
		c.baseURL,
		req.Options.Profile,
		strings.Join(coordinates, ";"),
		query.Encode(),
	)

	c.logger.Debug("Calling Mapbox Directions API",
		zap.String("profile", string(req.Options.Profile)),
		zap.Int("waypoints_count", len(req.Waypoints)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Mapbox API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("mapbox API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var directionsResp directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&directionsResp); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if directionsResp.Code != "Ok" {
		c.logger.Error("Mapbox API returned non-OK code",
			zap.String("code", directionsResp.Code),
			zap.String("message", directionsResp.Message))
		return nil, fmt.Errorf("mapbox API returned code: %s", directionsResp.Code)
	}

	if len(directionsResp.Routes) == 0 {
		return nil, fmt.Errorf("mapbox API returned no routes")
	}

	result := &domain.RouteResult{
		Routes:   make([]domain.Route, 0, len(directionsResp.Routes)),
		Selected: 0,
	}
	for _, r := range directionsResp.Routes {
		geometry := make([]domain.Point, 0, len(r.Geometry.Coordinates))
		for _, pair := range r.Geometry.Coordinates {
			if len(pair) < 2 {
				continue
			}
			geometry = append(geometry, domain.Point{Lon: pair[0], Lat: pair[1]})
		}
		result.Routes = append(result.Routes, domain.Route{
			Distance: r.Distance,
			Duration: r.Duration,
			Geometry: geometry,
		})
	}

	c.logger.Debug("Mapbox Directions API call successful",
		zap.Int("routes_count", len(result.Routes)),
		zap.Float64("distance", result.Routes[0].Distance),
		zap.Float64("duration", result.Routes[0].Duration))

	return result, nil
}
