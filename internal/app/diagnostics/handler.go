package diagnostics

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes health + debug endpoints.
type Handler struct {
	buffer *LogBuffer
}

// NewHandler returns handler.
func NewHandler(buffer *LogBuffer) *Handler {
	return &Handler{buffer: buffer}
}

// HealthPaths are the liveness probe routes.
var HealthPaths = []string{"/health", "/health/"}

// RegisterPublic attaches the liveness probe.
func (h *Handler) RegisterPublic(rg gin.IRoutes) {
	for _, p := range HealthPaths {
		rg.GET(p, h.health)
	}
}

// RegisterProtected attaches debug endpoints; callers add the guard.
func (h *Handler) RegisterProtected(rg gin.IRoutes) {
	rg.GET("/debug/logs", h.logs)
}

func (h *Handler) health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *Handler) logs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"logs": h.buffer.Snapshot()})
}
