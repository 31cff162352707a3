// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	index   ChunkIndex
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, index ChunkIndex) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		index:   index,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	chunks, err := h.index.Count(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "degraded",
			"version": h.version,
			"detail":  err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
		"chunks":  chunks,
	})
}
