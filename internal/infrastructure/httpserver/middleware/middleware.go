package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/blog-platform/internal/core/ports"
)

// MiddlewareCollection holds all middleware instances
type MiddlewareCollection struct {
	EditorAuth *EditorAuthMiddleware
	Visitor    *VisitorMiddleware
	Logging    *LoggingMiddleware
	RateLimit  *RateLimitMiddleware
	Metrics    *MetricsMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware
func NewMiddlewareCollection(
	tokens ports.EditorTokenService,
	rateLimiterService ports.RateLimiterService,
	logger *logrus.Logger,
	visitorSalt string,
	requestsTotal *prometheus.CounterVec,
	requestDuration *prometheus.HistogramVec,
) *MiddlewareCollection {
	return &MiddlewareCollection{
		EditorAuth: NewEditorAuthMiddleware(tokens, logger),
		Visitor:    NewVisitorMiddleware(visitorSalt),
		Logging:    NewLoggingMiddleware(logger),
		RateLimit:  NewRateLimitMiddleware(rateLimiterService, logger),
		Metrics:    NewMetricsMiddleware(requestsTotal, requestDuration),
	}
}
