package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
	"github.com/qbitmaster/qbitmaster-api/internal/models"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
)

type signingConfigRepoStub struct {
	record *models.SigningConfigRecord
	err    error
}

func (s *signingConfigRepoStub) Get(ctx context.Context) (*models.SigningConfigRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.record == nil {
		return nil, sql.ErrNoRows
	}
	return s.record, nil
}

func (s *signingConfigRepoStub) Upsert(ctx context.Context, record *models.SigningConfigRecord) error {
	if s.err != nil {
		return s.err
	}
	s.record = record
	return nil
}

type auditRepoStub struct {
	logs []models.AuditLog
}

func (s *auditRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, *log)
	return nil
}

func validSettingsRequest() dto.UpdateDownloadSettingsRequest {
	return dto.UpdateDownloadSettingsRequest{
		BaseURL:         "https://files.example.com/downloads",
		SecretKey:       "0123456789abcdef",
		DownloadPath:    "/srv/downloads",
		LinkExpiryHours: 6,
	}
}

func TestDownloadSettingsGetUnconfigured(t *testing.T) {
	svc := NewDownloadSettingsService(&signingConfigRepoStub{}, &auditRepoStub{}, nil, nil)

	_, err := svc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotConfigured.Code, appErrors.FromError(err).Code)
}

func TestDownloadSettingsUpdateAndGetMasksSecret(t *testing.T) {
	repo := &signingConfigRepoStub{}
	audit := &auditRepoStub{}
	svc := NewDownloadSettingsService(repo, audit, nil, nil)

	proxy, err := svc.Update(context.Background(), validSettingsRequest(), "admin-1")
	require.NoError(t, err)
	assert.Contains(t, proxy.Config, "/srv/downloads")

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.SecretKeySet)
	assert.Equal(t, "****cdef", settings.SecretKeyHint)
	assert.NotContains(t, settings.SecretKeyHint, "0123456789ab")
	assert.Equal(t, 6, settings.LinkExpiryHours)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSettingsUpdate, audit.logs[0].Action)
	assert.NotContains(t, string(audit.logs[0].NewValues), "0123456789abcdef")
}

func TestDownloadSettingsUpdateSecretLengthBoundary(t *testing.T) {
	svc := NewDownloadSettingsService(&signingConfigRepoStub{}, &auditRepoStub{}, nil, nil)

	req := validSettingsRequest()
	req.SecretKey = strings.Repeat("a", 15)
	_, err := svc.Update(context.Background(), req, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req.SecretKey = strings.Repeat("a", 16)
	_, err = svc.Update(context.Background(), req, "admin-1")
	assert.NoError(t, err)
}

func TestDownloadSettingsUpdateExpiryBoundary(t *testing.T) {
	svc := NewDownloadSettingsService(&signingConfigRepoStub{}, &auditRepoStub{}, nil, nil)

	for _, hours := range []int{0, 25} {
		req := validSettingsRequest()
		req.LinkExpiryHours = hours
		_, err := svc.Update(context.Background(), req, "admin-1")
		assert.Error(t, err, "expiry %d should be rejected", hours)
	}

	for _, hours := range []int{1, 24} {
		req := validSettingsRequest()
		req.LinkExpiryHours = hours
		_, err := svc.Update(context.Background(), req, "admin-1")
		assert.NoError(t, err, "expiry %d should be accepted", hours)
	}
}

func TestDownloadSettingsProxyConfig(t *testing.T) {
	repo := &signingConfigRepoStub{}
	svc := NewDownloadSettingsService(repo, &auditRepoStub{}, nil, nil)

	_, err := svc.ProxyConfig(context.Background())
	require.Error(t, err)

	_, err = svc.Update(context.Background(), validSettingsRequest(), "admin-1")
	require.NoError(t, err)

	proxy, err := svc.ProxyConfig(context.Background())
	require.NoError(t, err)
	assert.Contains(t, proxy.Config, "location /downloads")
	assert.Contains(t, proxy.Config, "0123456789abcdef")
}
