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
	"github.com/qbitmaster/qbitmaster-api/internal/service"
	"github.com/qbitmaster/qbitmaster-api/pkg/signedurl"
)

type signingRepoMock struct {
	record *models.SigningConfigRecord
}

func (m *signingRepoMock) Get(ctx context.Context) (*models.SigningConfigRecord, error) {
	if m.record == nil {
		return nil, sql.ErrNoRows
	}
	return m.record, nil
}

func (m *signingRepoMock) Upsert(ctx context.Context, record *models.SigningConfigRecord) error {
	m.record = record
	return nil
}

type auditRepoMock struct{}

func (m *auditRepoMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func newSettingsHandler(repo *signingRepoMock) *DownloadSettingsHandler {
	svc := service.NewDownloadSettingsService(repo, &auditRepoMock{}, nil, nil)
	return NewDownloadSettingsHandler(svc)
}

func TestDownloadSettingsHandlerGetUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(&signingRepoMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/admin/downloads/settings", nil)

	handler.Get(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestDownloadSettingsHandlerGetMasksSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(&signingRepoMock{record: &models.SigningConfigRecord{
		ID: models.SigningConfigID,
		Config: signedurl.Config{
			BaseURL:         "https://files.example.com",
			SecretKey:       "0123456789abcdef",
			DownloadPath:    "/downloads",
			LinkExpiryHours: 6,
		},
	}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/admin/downloads/settings", nil)

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "****cdef")
	assert.NotContains(t, w.Body.String(), "0123456789abcdef")
}

func TestDownloadSettingsHandlerUpdateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(&signingRepoMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/admin/downloads/settings", bytes.NewReader([]byte(`invalid`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadSettingsHandlerUpdateReturnsProxyConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &signingRepoMock{}
	handler := newSettingsHandler(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.UpdateDownloadSettingsRequest{
		BaseURL:         "https://files.example.com/downloads",
		SecretKey:       "0123456789abcdef",
		DownloadPath:    "/downloads",
		LinkExpiryHours: 6,
	})
	c.Request, _ = http.NewRequest(http.MethodPut, "/admin/downloads/settings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "location /downloads")
	require.NotNil(t, repo.record)
	assert.Equal(t, "admin-1", *repo.record.UpdatedBy)
}

func TestDownloadSettingsHandlerUpdateMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSettingsHandler(&signingRepoMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/admin/downloads/settings", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Update(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
