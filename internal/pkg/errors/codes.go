package errors

import "net/http"

var (
	ErrMissingCoordinates = New(
		"MISSING_WAYPOINT_COORDINATES",
		"Waypoint is missing latitude or longitude",
		http.StatusBadRequest,
	)

	ErrNotEnoughWaypoints = New(
		"NOT_ENOUGH_WAYPOINTS",
		"At least two waypoints are required to build a route",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrRouteBuildFailed = New(
		"ROUTE_BUILD_FAILED",
		"External directions service failed to build a route",
		http.StatusBadGateway,
	)

	ErrNoActiveRoute = New(
		"NO_ACTIVE_ROUTE",
		"No route has been built yet",
		http.StatusConflict,
	)

	ErrNoActiveSession = New(
		"NO_ACTIVE_SESSION",
		"No navigation session is running",
		http.StatusConflict,
	)

	ErrInvalidCameraMode = New(
		"INVALID_CAMERA_MODE",
		"Camera mode must be 'following' or 'overview'",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
