package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LogMetricsInitialization logs that metrics have been initialized
func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"http_requests_total":    "Counter for HTTP requests by method, endpoint, status",
			"cache_store_operations": "Counter for cache store calls by operation, result",
			"circuit_breaker_state":  "Gauge for the cache store circuit breaker",
			"metrics_endpoint":       "/metrics",
		}).Debug("Available Prometheus metrics")
	}
}

// metricsEndpoint serves the default Prometheus registry
func (s *Server) metricsEndpoint(c echo.Context) error {
	promhttp.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
