package middleware

import (
	"context"

	httpclient "github.com/carousell/ct-go/pkg/httpclient"
	"github.com/labstack/echo/v4"
)

const (
	XRequestID     = "x-request-id"
	XCorrelationID = "x-correlation-id"
)

// RequestID makes sure every request carries an id: it reuses the incoming
// x-request-id or x-correlation-id header, generates one otherwise, and echoes
// it back in the response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := GetRequestID(c)
			if reqID == "" {
				reqID = httpclient.GenerateCorrelationID()
			}
			InjectRequestID(c, reqID)
			c.Response().Header().Set(XRequestID, reqID)
			return next(c)
		}
	}
}

// GetRequestID looks the id up in the echo context, the request context, and
// finally the request headers.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(XRequestID).(string); ok && id != "" {
		return id
	}
	if id := GetRequestIDFromContext(c.Request().Context()); id != "" {
		return id
	}
	h := c.Request().Header
	if id := h.Get(XRequestID); id != "" {
		return id
	}
	return h.Get(XCorrelationID)
}

// GetRequestIDFromContext reads the id injected by InjectRequestID. Handy for
// code that only has a context.Context, such as the kafka consumer.
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(XCorrelationID).(string); ok {
		return id
	}
	if id, ok := ctx.Value(XRequestID).(string); ok {
		return id
	}
	return ""
}

// InjectRequestID stores the id under both header keys so downstream code and
// the ct-go http client pick it up as a correlation id.
func InjectRequestID(c echo.Context, reqID string) {
	ctx := c.Request().Context()
	//lint:ignore SA1029 the string keys are part of the wire contract
	ctx = context.WithValue(ctx, XRequestID, reqID)
	//lint:ignore SA1029 the string keys are part of the wire contract
	ctx = context.WithValue(ctx, XCorrelationID, reqID)

	c.SetRequest(c.Request().WithContext(ctx))
	c.Set(XRequestID, reqID)
	c.Set(XCorrelationID, reqID)
}
