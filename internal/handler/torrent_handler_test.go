package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
	"github.com/qbitmaster/qbitmaster-api/internal/middleware"
	"github.com/qbitmaster/qbitmaster-api/internal/models"
	"github.com/qbitmaster/qbitmaster-api/internal/qbit"
	"github.com/qbitmaster/qbitmaster-api/internal/service"
	"github.com/qbitmaster/qbitmaster-api/pkg/signedurl"
)

type torrentRepoMock struct {
	torrent *models.Torrent
}

func (m *torrentRepoMock) Create(ctx context.Context, torrent *models.Torrent) error { return nil }

func (m *torrentRepoMock) FindByID(ctx context.Context, id string) (*models.Torrent, error) {
	if m.torrent == nil || m.torrent.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.torrent, nil
}

func (m *torrentRepoMock) FindOwned(ctx context.Context, id, userID string) (*models.Torrent, error) {
	if m.torrent == nil || m.torrent.ID != id || m.torrent.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return m.torrent, nil
}

func (m *torrentRepoMock) ListByUser(ctx context.Context, userID string) ([]models.Torrent, error) {
	return nil, nil
}

func (m *torrentRepoMock) ListAll(ctx context.Context) ([]models.Torrent, error) { return nil, nil }

func (m *torrentRepoMock) CountByUser(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (m *torrentRepoMock) Delete(ctx context.Context, id string) error { return nil }

type torrentClientMock struct {
	files []qbit.FileInfo
}

func (m *torrentClientMock) Torrents(ctx context.Context) ([]qbit.TorrentSnapshot, error) {
	return nil, nil
}

func (m *torrentClientMock) AddMagnet(ctx context.Context, magnet string) error { return nil }

func (m *torrentClientMock) AddFile(ctx context.Context, content []byte) error { return nil }

func (m *torrentClientMock) Delete(ctx context.Context, hash string, deleteFiles bool) error {
	return nil
}

func (m *torrentClientMock) Pause(ctx context.Context, hash string) error { return nil }

func (m *torrentClientMock) Resume(ctx context.Context, hash string) error { return nil }

func (m *torrentClientMock) TransferInfo(ctx context.Context) (qbit.TransferSnapshot, error) {
	return qbit.TransferSnapshot{}, nil
}

func (m *torrentClientMock) Files(ctx context.Context, hash string) ([]qbit.FileInfo, error) {
	return m.files, nil
}

type linkSettingsMock struct{}

func (m *linkSettingsMock) SigningConfig(ctx context.Context) (signedurl.Config, error) {
	return signedurl.Config{
		BaseURL:         "https://files.example.com",
		SecretKey:       "0123456789abcdef",
		DownloadPath:    "/downloads",
		LinkExpiryHours: 6,
	}, nil
}

func newTorrentHandler(repo *torrentRepoMock, client *torrentClientMock) *TorrentHandler {
	svc := service.NewTorrentService(repo, nil, &auditRepoMock{}, client, &linkSettingsMock{}, nil, nil)
	return NewTorrentHandler(svc, nil)
}

func TestTorrentHandlerListUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTorrentHandler(&torrentRepoMock{}, &torrentClientMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/torrents", nil)

	handler.List(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTorrentHandlerDownloadLinkInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTorrentHandler(&torrentRepoMock{}, &torrentClientMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/torrents/t-1/download-link", bytes.NewReader([]byte(`invalid`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleUser})

	handler.DownloadLink(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTorrentHandlerDownloadLinkSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &torrentRepoMock{torrent: &models.Torrent{ID: "t-1", UserID: "u-1", Hash: "abc123"}}
	client := &torrentClientMock{files: []qbit.FileInfo{{Name: "movie/movie.mkv", Size: 1024, Progress: 1}}}
	handler := newTorrentHandler(repo, client)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.DownloadLinkRequest{FilePath: "movie/movie.mkv"})
	c.Request, _ = http.NewRequest(http.MethodPost, "/torrents/t-1/download-link", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleUser})

	handler.DownloadLink(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://files.example.com/movie/movie.mkv")
	assert.Contains(t, w.Body.String(), "expires=")
	assert.Contains(t, w.Body.String(), "signature=")
}

func TestTorrentHandlerDownloadLinkIncompleteFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &torrentRepoMock{torrent: &models.Torrent{ID: "t-1", UserID: "u-1", Hash: "abc123"}}
	client := &torrentClientMock{files: []qbit.FileInfo{{Name: "movie/movie.mkv", Size: 1024, Progress: 0.4}}}
	handler := newTorrentHandler(repo, client)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.DownloadLinkRequest{FilePath: "movie/movie.mkv"})
	c.Request, _ = http.NewRequest(http.MethodPost, "/torrents/t-1/download-link", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleUser})

	handler.DownloadLink(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTorrentHandlerDownloadLinkForeignTorrent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &torrentRepoMock{torrent: &models.Torrent{ID: "t-1", UserID: "owner-1", Hash: "abc123"}}
	handler := newTorrentHandler(repo, &torrentClientMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.DownloadLinkRequest{FilePath: "movie/movie.mkv"})
	c.Request, _ = http.NewRequest(http.MethodPost, "/torrents/t-1/download-link", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-1", Role: models.RoleUser})

	handler.DownloadLink(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
