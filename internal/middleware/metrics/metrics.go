package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	authFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_auth_failures_total",
			Help: "Rejected authentication and authorization attempts by reason",
		},
		[]string{"reason"},
	)
)

// Middleware records request duration by route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := statusOf(c, err)
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			httpRequestDuration.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// statusOf is the code the client gets for err. Errors other than
// *echo.HTTPError end up as 500 in echo's error handler unless a response was
// already written.
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if c.Response().Committed {
		return c.Response().Status
	}
	return http.StatusInternalServerError
}

// RecordAuthFailure counts a rejected request. Reasons are a small fixed set
// such as "missing_token", "invalid_token", "forbidden", "invalid_credentials".
func RecordAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
