package middleware

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
)

// CORS allows cross-origin requests from origins matching pattern. Preflight
// requests from an allowed origin are answered directly with 200.
func CORS(pattern *regexp.Regexp) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set("Vary", "Origin")

			origin := c.Request().Header.Get("Origin")
			if origin == "" || !pattern.MatchString(origin) {
				return next(c)
			}

			header.Set("Access-Control-Allow-Origin", origin)
			if c.Request().Method == http.MethodOptions {
				// Safari 12 ignores `*` for the Authorization header.
				header.Set("Access-Control-Allow-Headers", "*, Authorization")
				header.Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, PATCH, DELETE, HEAD")
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}
