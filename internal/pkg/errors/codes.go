package errors

import "net/http"

var (
	ErrInvalidArgument = New(
		"INVALID_ARGUMENT",
		"Invalid query parameters",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_ARGUMENT",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_ARGUMENT",
		"Radius must be a non-negative integer",
		http.StatusBadRequest,
	)

	ErrValidation = New(
		"VALIDATION_ERROR",
		"Request validation failed",
		http.StatusBadRequest,
	)

	ErrUsernameTaken = New(
		"VALIDATION_ERROR",
		"A user with that username already exists",
		http.StatusBadRequest,
	)

	ErrParkingNotFound = New(
		"NOT_FOUND",
		"Parking spot not found",
		http.StatusNotFound,
	)

	ErrUserNotFound = New(
		"NOT_FOUND",
		"User not found",
		http.StatusNotFound,
	)

	ErrAlreadyReserved = New(
		"ALREADY_RESERVED",
		"Parking spot already reserved",
		http.StatusConflict,
	)

	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"Authentication credentials were not provided or are invalid",
		http.StatusUnauthorized,
	)

	ErrInvalidCredentials = New(
		"INVALID_CREDENTIALS",
		"Unable to log in with provided credentials",
		http.StatusUnauthorized,
	)

	ErrForbidden = New(
		"FORBIDDEN",
		"You do not have permission to perform this action",
		http.StatusForbidden,
	)

	ErrMethodNotAllowed = New(
		"METHOD_NOT_ALLOWED",
		"Parking spots are read-only",
		http.StatusMethodNotAllowed,
	)

	ErrRateLimited = New(
		"RATE_LIMITED",
		"Too many requests",
		http.StatusTooManyRequests,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
