package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightclass/aigateway/internal/auth"
	"github.com/brightclass/aigateway/internal/usage"
)

// UsageHandler exposes the per-tenant token accounting report.
type UsageHandler struct {
	service *usage.Service
	logger  *slog.Logger
}

// NewUsageHandler creates a UsageHandler.
func NewUsageHandler(log *slog.Logger, service *usage.Service) *UsageHandler {
	return &UsageHandler{
		service: service,
		logger:  log.With(slog.String("handler", "usage")),
	}
}

func (h *UsageHandler) Register(e *echo.Echo) {
	e.GET("/api/usage", h.List)
}

// List returns the caller's usage rows, newest first.
func (h *UsageHandler) List(c echo.Context) error {
	tenantID, err := auth.TenantIDFromContext(c)
	if err != nil {
		return err
	}
	rows, err := h.service.List(c.Request().Context(), tenantID)
	if err != nil {
		h.logger.Error("list usage failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list usage")
	}
	return c.JSON(http.StatusOK, rows)
}
