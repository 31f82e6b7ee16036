package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qbitmaster/qbitmaster-api/internal/service"
	"github.com/qbitmaster/qbitmaster-api/pkg/response"
)

// JackettHandler exposes torrent search endpoints.
type JackettHandler struct {
	service *service.JackettService
}

// NewJackettHandler creates a new jackett handler.
func NewJackettHandler(svc *service.JackettService) *JackettHandler {
	return &JackettHandler{service: svc}
}

// Search godoc
// @Summary Search indexers
// @Description Search all configured Jackett indexers
// @Tags Jackett
// @Produce json
// @Param query query string true "Search term"
// @Param category query string false "Torznab category"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /jackett/search [get]
func (h *JackettHandler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Query("query"), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, results, nil)
}

// Indexers godoc
// @Summary List indexers
// @Description List indexers known to Jackett
// @Tags Jackett
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /jackett/indexers [get]
func (h *JackettHandler) Indexers(c *gin.Context) {
	indexers, err := h.service.Indexers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, indexers, nil)
}
