package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
	"github.com/qbitmaster/qbitmaster-api/internal/models"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
	"github.com/qbitmaster/qbitmaster-api/pkg/signedurl"
)

type signingConfigRepository interface {
	Get(ctx context.Context) (*models.SigningConfigRecord, error)
	Upsert(ctx context.Context, record *models.SigningConfigRecord) error
}

type settingsAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// DownloadSettingsService manages the signed download link configuration.
// There is exactly one configuration row; updates overwrite it and the
// system moves from unconfigured to configured once, never back.
type DownloadSettingsService struct {
	repo      signingConfigRepository
	auditRepo settingsAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDownloadSettingsService constructs a DownloadSettingsService.
func NewDownloadSettingsService(repo signingConfigRepository, auditRepo settingsAuditRepository, validate *validator.Validate, logger *zap.Logger) *DownloadSettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DownloadSettingsService{repo: repo, auditRepo: auditRepo, validator: validate, logger: logger}
}

// Get returns the current settings with the secret masked. The plaintext
// secret is never part of any read response; only its presence and the
// last four characters are exposed.
func (s *DownloadSettingsService) Get(ctx context.Context) (*dto.DownloadSettings, error) {
	record, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DownloadSettings{
		BaseURL:         record.BaseURL,
		SecretKeySet:    record.SecretKey != "",
		SecretKeyHint:   secretHint(record.SecretKey),
		DownloadPath:    record.DownloadPath,
		LinkExpiryHours: record.LinkExpiryHours,
		UpdatedAt:       record.UpdatedAt,
	}, nil
}

// Update validates and persists a new configuration, records an audit log
// entry against the acting admin, and returns the re-rendered proxy config.
func (s *DownloadSettingsService) Update(ctx context.Context, req dto.UpdateDownloadSettingsRequest, actorID string) (*dto.ProxyConfigResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download settings payload")
	}

	record := &models.SigningConfigRecord{
		ID: models.SigningConfigID,
		Config: signedurl.Config{
			BaseURL:         req.BaseURL,
			SecretKey:       req.SecretKey,
			DownloadPath:    req.DownloadPath,
			LinkExpiryHours: req.LinkExpiryHours,
		},
		UpdatedBy: &actorID,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist download settings")
	}

	// Audit payload carries the masked form only.
	if err := s.auditRepo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionSettingsUpdate,
		Resource:   "download_settings",
		ResourceID: ptr(models.SigningConfigID),
		NewValues: []byte(fmt.Sprintf(`{"base_url":%q,"download_path":%q,"link_expiry_hours":%d,"secret_key_hint":%q}`,
			req.BaseURL, req.DownloadPath, req.LinkExpiryHours, secretHint(req.SecretKey))),
	}); err != nil {
		s.logger.Warn("failed to record settings audit log", zap.Error(err))
	}

	s.logger.Info("download settings updated",
		zap.String("actor_id", actorID),
		zap.String("base_url", req.BaseURL),
		zap.Int("link_expiry_hours", req.LinkExpiryHours))

	return &dto.ProxyConfigResponse{Config: signedurl.RenderProxyConfig(record.Config)}, nil
}

// ProxyConfig renders the reverse-proxy snippet from the persisted config.
func (s *DownloadSettingsService) ProxyConfig(ctx context.Context) (*dto.ProxyConfigResponse, error) {
	record, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ProxyConfigResponse{Config: signedurl.RenderProxyConfig(record.Config)}, nil
}

// SigningConfig exposes the raw persisted config to sibling services that
// sign links. It is not reachable from any HTTP read path.
func (s *DownloadSettingsService) SigningConfig(ctx context.Context) (signedurl.Config, error) {
	record, err := s.current(ctx)
	if err != nil {
		return signedurl.Config{}, err
	}
	return record.Config, nil
}

func (s *DownloadSettingsService) current(ctx context.Context) (*models.SigningConfigRecord, error) {
	record, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotConfigured, "download settings have not been configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load download settings")
	}
	return record, nil
}

func secretHint(secret string) string {
	if len(secret) < 4 {
		return ""
	}
	return "****" + secret[len(secret)-4:]
}

func ptr(s string) *string { return &s }
