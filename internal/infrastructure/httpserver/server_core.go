package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/blog-platform/internal/core/ports"
	customMiddleware "github.com/avatarctic/blog-platform/internal/infrastructure/httpserver/middleware"
	"github.com/avatarctic/blog-platform/internal/infrastructure/metrics"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	VisitorSalt  string
}

type ServerDeps struct {
	StatsService        ports.StatsService
	PopularityService   ports.PopularityService
	RelatedService      ports.RelatedService
	InvalidationService ports.InvalidationService
	RateLimiterService  ports.RateLimiterService
	EditorTokens        ports.EditorTokenService
	Articles            ports.ArticleRepository
	HealthCheckers      []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	statsSvc       ports.StatsService
	popularitySvc  ports.PopularityService
	relatedSvc     ports.RelatedService
	invalidation   ports.InvalidationService
	articles       ports.ArticleRepository
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		statsSvc:       deps.StatsService,
		popularitySvc:  deps.PopularityService,
		relatedSvc:     deps.RelatedService,
		invalidation:   deps.InvalidationService,
		articles:       deps.Articles,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.EditorTokens,
			deps.RateLimiterService,
			logger,
			serverConfig.VisitorSalt,
			metrics.HTTPRequestsTotal,
			metrics.HTTPRequestDuration,
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
