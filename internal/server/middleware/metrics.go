package middleware

import (
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the request duration histogram.
type MetricsConfig struct {
	Skipper   Skipper
	Namespace string
	Buckets   []float64
	// MetricsPath is where the prometheus handler is served. Empty disables it.
	MetricsPath string
	// NotFoundPath replaces the path label for unmatched routes so random
	// URLs cannot blow up label cardinality.
	NotFoundPath string
}

const requestDurationName = "request_duration_seconds"

// DefaultMetricsConfig tracks latencies from sub-millisecond cache hits up to
// the 30s ceiling of the slowest upstream call.
var DefaultMetricsConfig = MetricsConfig{
	Skipper:   DefaultSkipper,
	Namespace: "chat_timeline",
	Buckets: []float64{
		0.0005, 0.001, 0.002, 0.005,
		0.01, 0.02, 0.05,
		0.1, 0.2, 0.5,
		1.0, 2.0, 5.0,
		10.0, 15.0, 20.0, 30.0,
	},
	MetricsPath:  "/metrics",
	NotFoundPath: "/not-found",
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

// Metrics returns the instrumentation middleware with the default config.
func Metrics() echo.MiddlewareFunc {
	return MetricsWithConfig(DefaultMetricsConfig)
}

// MetricsWithConfig records a duration histogram per (code, method, path) and
// serves the prometheus exposition at config.MetricsPath.
func MetricsWithConfig(config MetricsConfig) echo.MiddlewareFunc {
	histogram, err := registerRequestDuration(config)
	if err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		histogram = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	var promHandler echo.HandlerFunc
	if config.MetricsPath != "" {
		promHandler = echo.WrapHandler(promhttp.Handler())
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if promHandler != nil && req.RequestURI == config.MetricsPath {
				return promHandler(c)
			}
			if config.Skipper(c) {
				return next(c)
			}

			path := c.Path()
			if isNotFoundHandler(c.Handler()) {
				path = config.NotFoundPath
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			histogram.WithLabelValues(status, req.Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func registerRequestDuration(config MetricsConfig) (*prometheus.HistogramVec, error) {
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      requestDurationName,
		Help:      "Time spent processing a route",
		Buckets:   config.Buckets,
	}, []string{"code", "method", "path"})
	return histogram, prometheus.Register(histogram)
}
