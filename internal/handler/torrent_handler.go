package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
	"github.com/qbitmaster/qbitmaster-api/internal/models"
	"github.com/qbitmaster/qbitmaster-api/internal/service"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
	"github.com/qbitmaster/qbitmaster-api/pkg/response"
)

// maxTorrentFileSize bounds uploaded .torrent files.
const maxTorrentFileSize = 10 << 20

// TorrentHandler wires HTTP endpoints to the torrent service.
type TorrentHandler struct {
	service *service.TorrentService
	users   *service.UserService
}

// NewTorrentHandler creates a new torrent handler.
func NewTorrentHandler(svc *service.TorrentService, users *service.UserService) *TorrentHandler {
	return &TorrentHandler{service: svc, users: users}
}

// AddMagnet godoc
// @Summary Add torrent from magnet
// @Description Submit a magnet URI for download
// @Tags Torrents
// @Accept json
// @Produce json
// @Param payload body dto.AddMagnetRequest true "Magnet payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /torrents/magnet [post]
func (h *TorrentHandler) AddMagnet(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AddMagnetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid magnet payload"))
		return
	}

	torrent, err := h.service.AddMagnet(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, torrent)
}

// AddFile godoc
// @Summary Add torrent from file
// @Description Upload a .torrent file for download
// @Tags Torrents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Torrent file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /torrents/file [post]
func (h *TorrentHandler) AddFile(c *gin.Context) {
	user, err := h.currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "torrent file is required"))
		return
	}
	if fileHeader.Size > maxTorrentFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "torrent file too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read torrent file"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxTorrentFileSize))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read torrent file"))
		return
	}

	torrent, err := h.service.AddFile(c.Request.Context(), user, fileHeader.Filename, content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, torrent)
}

// List godoc
// @Summary List torrents
// @Description List torrents with live transfer state. Admins see all torrents.
// @Tags Torrents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /torrents [get]
func (h *TorrentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.service.List(c.Request.Context(), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// Stats godoc
// @Summary Torrent statistics
// @Description Per-user totals plus live global counts and speeds
// @Tags Torrents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /torrents/stats [get]
func (h *TorrentHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// Delete godoc
// @Summary Delete torrent
// @Description Remove a torrent from qBittorrent and the database
// @Tags Torrents
// @Produce json
// @Param id path string true "Torrent ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /torrents/{id} [delete]
func (h *TorrentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Pause godoc
// @Summary Pause torrent
// @Tags Torrents
// @Produce json
// @Param id path string true "Torrent ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /torrents/{id}/pause [post]
func (h *TorrentHandler) Pause(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Pause(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Resume godoc
// @Summary Resume torrent
// @Tags Torrents
// @Produce json
// @Param id path string true "Torrent ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /torrents/{id}/resume [post]
func (h *TorrentHandler) Resume(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Resume(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Files godoc
// @Summary List torrent files
// @Tags Torrents
// @Produce json
// @Param id path string true "Torrent ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /torrents/{id}/files [get]
func (h *TorrentHandler) Files(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	files, err := h.service.Files(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, files, nil)
}

// DownloadLink godoc
// @Summary Issue signed download link
// @Description Issue a signed, expiring URL for one completed file
// @Tags Torrents
// @Accept json
// @Produce json
// @Param id path string true "Torrent ID"
// @Param payload body dto.DownloadLinkRequest true "File path"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /torrents/{id}/download-link [post]
func (h *TorrentHandler) DownloadLink(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.DownloadLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid download link payload"))
		return
	}

	link, err := h.service.DownloadLink(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, link, nil)
}

func (h *TorrentHandler) currentUser(c *gin.Context) (*models.User, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return h.users.Get(c.Request.Context(), claims.UserID)
}
