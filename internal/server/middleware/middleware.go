// Package middleware holds the echo middlewares and HTTP plumbing shared by
// every route: access logging, request IDs, metrics, auth, and the error
// handler that maps grpc status codes to HTTP responses.
package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// Skipper decides whether a middleware should pass a request through untouched.
type Skipper func(c echo.Context) bool

var DefaultSkipper Skipper = func(c echo.Context) bool {
	return false
}

// Logger is the sugared subset the middlewares need, satisfied by ct-go logger.
type Logger interface {
	Debugw(template string, args ...any)
	Infow(template string, args ...any)
	Warnw(template string, args ...any)
	Errorw(template string, args ...any)
}

// ResponseError is the JSON error envelope written by ErrorHandler. Handlers
// may return it directly to control the status code and error payload.
type ResponseError struct {
	Status       int    `json:"-"`
	Err          error  `json:"-"`
	Success      bool   `json:"success"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ErrorData    any    `json:"error_data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status: %d, code: %s; message: %+v", e.Status, e.ErrorCode, e.Err)
}
