package handlers

import (
	"net/http"

	"markdown-viewer-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) Health(c *gin.Context) {
	stats, err := h.viewerSvc.Stats(c.Request.Context())
	if err != nil {
		log.WithError(err).Warn("health check degraded")
		c.JSON(http.StatusServiceUnavailable, dto.ToHealthResponse(stats, false))
		return
	}
	c.JSON(http.StatusOK, dto.ToHealthResponse(stats, true))
}
