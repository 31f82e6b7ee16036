package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
	"github.com/qbitmaster/qbitmaster-api/internal/service"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
	"github.com/qbitmaster/qbitmaster-api/pkg/response"
)

// DownloadSettingsHandler exposes the signed download link configuration.
// All routes are admin-only.
type DownloadSettingsHandler struct {
	service *service.DownloadSettingsService
}

// NewDownloadSettingsHandler creates a new settings handler.
func NewDownloadSettingsHandler(svc *service.DownloadSettingsService) *DownloadSettingsHandler {
	return &DownloadSettingsHandler{service: svc}
}

// Get godoc
// @Summary Get download settings
// @Description Current signing configuration with the secret masked
// @Tags Downloads
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/downloads/settings [get]
func (h *DownloadSettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update download settings
// @Description Replace the signing configuration and return the rendered proxy config
// @Tags Downloads
// @Accept json
// @Produce json
// @Param payload body dto.UpdateDownloadSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/downloads/settings [put]
func (h *DownloadSettingsHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateDownloadSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}

	proxy, err := h.service.Update(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, proxy, nil)
}

// ProxyConfig godoc
// @Summary Rendered proxy config
// @Description Reverse-proxy snippet that enforces the signing contract
// @Tags Downloads
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/downloads/proxy-config [get]
func (h *DownloadSettingsHandler) ProxyConfig(c *gin.Context) {
	proxy, err := h.service.ProxyConfig(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, proxy, nil)
}
