package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qbitmaster/qbitmaster-api/internal/service"
	"github.com/qbitmaster/qbitmaster-api/pkg/response"
)

// HealthHandler reports dependency health.
type HealthHandler struct {
	service *service.HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc *service.HealthService) *HealthHandler {
	return &HealthHandler{service: svc}
}

// Check godoc
// @Summary Health check
// @Description Status of the API, database, Redis, qBittorrent and Jackett
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Check(c.Request.Context()), nil)
}
