package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	labformdomain "github.com/smallbiznis/labform/internal/labform/domain"
)

var (
	ErrRouteNotFound    = errors.New("route_not_found")
	ErrMethodNotAllowed = errors.New("method_not_allowed")
)

// HTTPError carries the exact status and body a handler has committed to.
// The wrapped error is kept for logging only and never reaches the client.
type HTTPError struct {
	Status int
	Body   any
	Err    error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error string `json:"error"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func newHTTPError(status int, body any, err error) error {
	return &HTTPError{Status: status, Body: body, Err: err}
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, payload)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, any) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, httpErr.Body
	}

	switch {
	case errors.Is(err, labformdomain.ErrMalformedBody):
		return http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"}
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound, errorResponse{Error: "Not found"}
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error"}
	}
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "internal_error", "internal_error"
	case errors.Is(err, labformdomain.ErrMalformedBody):
		return "validation_error", "invalid_json"
	case errors.Is(err, labformdomain.ErrCast):
		return "validation_error", "cast_error"
	case errors.Is(err, labformdomain.ErrInvalidID):
		return "validation_error", "invalid_id"
	case errors.Is(err, labformdomain.ErrNotFound):
		return "not_found", "not_found"
	case errors.Is(err, ErrRouteNotFound):
		return "not_found", "route_not_found"
	case errors.Is(err, ErrMethodNotAllowed):
		return "invalid_request", "method_not_allowed"
	default:
		return "internal_error", "internal_error"
	}
}
