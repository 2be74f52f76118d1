package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRequestDuration(t *testing.T) {
	t.Helper()
	_, err := registerRequestDuration(DefaultMetricsConfig)
	if err == nil {
		return
	}
	var are prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &are)
	are.ExistingCollector.(*prometheus.HistogramVec).Reset()
}

func TestMetrics(t *testing.T) {
	resetRequestDuration(t)

	e := echo.New()
	e.Use(Metrics())
	e.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("boom")
	})

	get := func(path string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	for i := 0; i < 3; i++ {
		get("/ok")
	}
	get("/boom")
	get("/no/such/route")
	get("/another/miss")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `chat_timeline_request_duration_seconds_count{code="200",method="GET",path="/ok"} 3`)
	assert.Contains(t, body, `chat_timeline_request_duration_seconds_count{code="500",method="GET",path="/boom"} 1`)

	// Unmatched routes collapse into a single path label.
	assert.Contains(t, body, `chat_timeline_request_duration_seconds_count{code="404",method="GET",path="/not-found"} 2`)
	assert.NotContains(t, body, "/no/such/route")
}
