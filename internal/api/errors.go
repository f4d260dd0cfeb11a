// errors.go - Structured error responses for the measurement API
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/pkg/calibration"
	"github.com/philipparndt/gomeasure/pkg/geometry"
	"github.com/philipparndt/gomeasure/pkg/record"
	"github.com/philipparndt/gomeasure/pkg/regions"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// fromDomainError maps engine errors onto API errors
func fromDomainError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, regions.ErrRegionNotFound),
		errors.Is(err, record.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: err.Error()}

	case errors.Is(err, session.ErrUncalibrated):
		return &APIError{Status: http.StatusBadRequest, Code: "UNCALIBRATED", Message: err.Error()}

	case errors.Is(err, measurement.ErrNoActiveTool),
		errors.Is(err, measurement.ErrInputPending),
		errors.Is(err, measurement.ErrNoPendingInput):
		return NewConflictError("tool state does not allow this action", err)

	case errors.Is(err, geometry.ErrInsufficientPoints),
		errors.Is(err, geometry.ErrInvalidDimension),
		errors.Is(err, geometry.ErrCollinear),
		errors.Is(err, calibration.ErrInvalidCalibration),
		errors.Is(err, units.ErrInvalidUnit),
		errors.Is(err, regions.ErrInvalidRegion),
		errors.Is(err, record.ErrInvalidRecord),
		errors.Is(err, record.ErrInvalidType),
		errors.Is(err, measurement.ErrUnknownTool),
		errors.Is(err, measurement.ErrInvalidInput),
		errors.Is(err, session.ErrUndefined),
		errors.Is(err, session.ErrTooManyPoints),
		errors.Is(err, session.ErrInvalidScript):
		return NewBadRequestError("invalid measurement input", err)
	}
	return NewInternalError("An unexpected error occurred", err)
}

// ErrorHandler is the Echo error handler
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = fromDomainError(err)
	}

	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		c.Logger().Error(err)
	}
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
