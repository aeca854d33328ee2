package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	xhttp "github.com/uranium24/Fresh-Price/pkg/http"
)

// HealthCheck pings one backing service.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	source  string
	checks  []HealthCheck
	timeout time.Duration
}

func NewHealthHandler(source string, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{source: source, checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

// Health reports ok, or 503 with the failing checks.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	failed := map[string]string{}
	for _, chk := range h.checks {
		if err := chk.Check(ctx); err != nil {
			failed[chk.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"source": h.source,
			"failed": failed,
		})
	}
	return xhttp.SuccessResponse(c, xhttp.HealthStatus{Status: "ok", Source: h.source})
}
