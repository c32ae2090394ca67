package handler

import (
	"net/http"

	"identity/config"
	"identity/internal/delivery/http/response"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports process liveness.
type HealthHandler struct {
	serviceName string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{serviceName: cfg.Env.ServiceName}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.serviceName,
	}, "Service is healthy")
}
