// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"identity/config"
	"identity/internal/delivery/http/middleware"
	"identity/internal/delivery/http/router/handler"
	"identity/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const defaultMetricsPath = "/metrics"

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	HealthHandler  *handler.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics `optional:"true"`
	Config         *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	healthHandler  *handler.HealthHandler
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
	config         *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		healthHandler:  params.HealthHandler,
		authMiddleware: params.AuthMiddleware,
		metrics:        params.Metrics,
		config:         params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// The auth resolver runs once per request ahead of every identity route.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.HealthCheck)
	r.registerMetrics(e)

	api := e.Group("", r.authMiddleware.Resolve)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", r.accountHandler.Signup)
		authGroup.POST("/login", r.accountHandler.Login)
	}

	userGroup := api.Group("/users")
	{
		userGroup.GET("", r.accountHandler.ListUsers)
		userGroup.GET("/me", r.accountHandler.Me)
		userGroup.PATCH("/me", r.accountHandler.UpdateMe)
		userGroup.DELETE("/me", r.accountHandler.DeleteMe)
		userGroup.GET("/:id", r.accountHandler.GetUser)
	}
}

func (r *router) registerMetrics(e *echo.Echo) {
	if r.metrics == nil || r.config.Metrics == nil || !r.config.Metrics.Enabled {
		return
	}

	path := r.config.Metrics.Path
	if path == "" {
		path = defaultMetricsPath
	}
	e.GET(path, echo.WrapHandler(r.metrics.Handler()))
}
