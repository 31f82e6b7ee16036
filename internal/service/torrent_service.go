package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/internal/dto"
	"github.com/qbitmaster/qbitmaster-api/internal/models"
	"github.com/qbitmaster/qbitmaster-api/internal/qbit"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
	"github.com/qbitmaster/qbitmaster-api/pkg/signedurl"
)

type torrentRepository interface {
	Create(ctx context.Context, torrent *models.Torrent) error
	FindByID(ctx context.Context, id string) (*models.Torrent, error)
	FindOwned(ctx context.Context, id, userID string) (*models.Torrent, error)
	ListByUser(ctx context.Context, userID string) ([]models.Torrent, error)
	ListAll(ctx context.Context) ([]models.Torrent, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type torrentGroupRepository interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

type torrentAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type torrentClient interface {
	Torrents(ctx context.Context) ([]qbit.TorrentSnapshot, error)
	AddMagnet(ctx context.Context, magnet string) error
	AddFile(ctx context.Context, content []byte) error
	Delete(ctx context.Context, hash string, deleteFiles bool) error
	Pause(ctx context.Context, hash string) error
	Resume(ctx context.Context, hash string) error
	TransferInfo(ctx context.Context) (qbit.TransferSnapshot, error)
	Files(ctx context.Context, hash string) ([]qbit.FileInfo, error)
}

type linkSettings interface {
	SigningConfig(ctx context.Context) (signedurl.Config, error)
}

// TorrentService manages torrent lifecycle and signed download links.
type TorrentService struct {
	repo      torrentRepository
	groupRepo torrentGroupRepository
	auditRepo torrentAuditRepository
	client    torrentClient
	settings  linkSettings
	signer    *signedurl.Signer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTorrentService constructs a TorrentService.
func NewTorrentService(repo torrentRepository, groupRepo torrentGroupRepository, auditRepo torrentAuditRepository, client torrentClient, settings linkSettings, validate *validator.Validate, logger *zap.Logger) *TorrentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TorrentService{
		repo:      repo,
		groupRepo: groupRepo,
		auditRepo: auditRepo,
		client:    client,
		settings:  settings,
		signer:    signedurl.NewSigner(),
		validator: validate,
		logger:    logger,
	}
}

var magnetHashPattern = regexp.MustCompile(`(?i)urn:btih:([a-f0-9]{40}|[a-z2-7]{32})`)

// ExtractMagnetHash pulls the info hash out of a magnet URI.
func ExtractMagnetHash(magnet string) (string, error) {
	match := magnetHashPattern.FindStringSubmatch(magnet)
	if match == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "magnet URI has no valid info hash")
	}
	return strings.ToLower(match[1]), nil
}

// AddMagnet submits a magnet URI to qBittorrent and records ownership.
func (s *TorrentService) AddMagnet(ctx context.Context, user *models.User, req dto.AddMagnetRequest) (*models.Torrent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid magnet payload")
	}

	hash, err := ExtractMagnetHash(req.Magnet)
	if err != nil {
		return nil, err
	}

	if err := s.checkQuota(ctx, user); err != nil {
		return nil, err
	}

	if err := s.client.AddMagnet(ctx, req.Magnet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "qbittorrent rejected the magnet")
	}

	torrent := &models.Torrent{
		UserID:   user.ID,
		Username: user.Username,
		Name:     req.Name,
		Magnet:   req.Magnet,
		Hash:     hash,
	}
	if err := s.repo.Create(ctx, torrent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record torrent")
	}

	s.audit(ctx, user.ID, models.AuditActionTorrentAdd, torrent.ID, fmt.Sprintf(`{"name":%q,"hash":%q}`, torrent.Name, torrent.Hash))
	return torrent, nil
}

// AddFile submits raw .torrent file content to qBittorrent. The info hash
// is not parsed from the file; it is reconciled from the live list on the
// next poll, so the persisted record carries an empty hash until then.
func (s *TorrentService) AddFile(ctx context.Context, user *models.User, name string, content []byte) (*models.Torrent, error) {
	if len(content) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty torrent file")
	}

	if err := s.checkQuota(ctx, user); err != nil {
		return nil, err
	}

	if err := s.client.AddFile(ctx, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "qbittorrent rejected the torrent file")
	}

	torrent := &models.Torrent{
		UserID:   user.ID,
		Username: user.Username,
		Name:     name,
	}
	if err := s.repo.Create(ctx, torrent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record torrent")
	}

	s.audit(ctx, user.ID, models.AuditActionTorrentAdd, torrent.ID, fmt.Sprintf(`{"name":%q,"source":"file"}`, torrent.Name))
	return torrent, nil
}

// List returns the caller's torrents (or all of them for admins) merged
// with live transfer state. Listing never fails because qBittorrent is
// unreachable; live fields are zero in that case.
func (s *TorrentService) List(ctx context.Context, userID string, role models.UserRole) ([]dto.TorrentItem, error) {
	var (
		torrents []models.Torrent
		err      error
	)
	if role == models.RoleAdmin {
		torrents, err = s.repo.ListAll(ctx)
	} else {
		torrents, err = s.repo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list torrents")
	}

	live := s.liveByHash(ctx)

	items := make([]dto.TorrentItem, 0, len(torrents))
	for _, t := range torrents {
		item := dto.TorrentItem{
			ID:        t.ID,
			UserID:    t.UserID,
			Username:  t.Username,
			Name:      t.Name,
			Magnet:    t.Magnet,
			Hash:      t.Hash,
			Status:    "unknown",
			CreatedAt: t.CreatedAt,
		}
		if snap, ok := live[t.Hash]; ok {
			item.Status = snap.State
			item.Progress = snap.Progress
			item.DownloadSpeed = float64(snap.DownloadSpeed)
			item.UploadSpeed = float64(snap.UploadSpeed)
			item.Size = snap.Size
			item.Downloaded = snap.Downloaded
			item.ETA = snap.ETA
		}
		items = append(items, item)
	}
	return items, nil
}

// Delete removes an owned torrent from qBittorrent (with its files) and
// from the database. Admins may delete any torrent.
func (s *TorrentService) Delete(ctx context.Context, id, userID string, role models.UserRole) error {
	torrent, err := s.findForCaller(ctx, id, userID, role)
	if err != nil {
		return err
	}

	if torrent.Hash != "" {
		if err := s.client.Delete(ctx, torrent.Hash, true); err != nil {
			s.logger.Warn("failed to remove torrent from qbittorrent", zap.String("hash", torrent.Hash), zap.Error(err))
		}
	}

	if err := s.repo.Delete(ctx, torrent.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete torrent")
	}

	s.audit(ctx, userID, models.AuditActionTorrentDelete, torrent.ID, fmt.Sprintf(`{"name":%q,"hash":%q}`, torrent.Name, torrent.Hash))
	return nil
}

// Pause stops transfers for an owned torrent.
func (s *TorrentService) Pause(ctx context.Context, id, userID string, role models.UserRole) error {
	torrent, err := s.findForCaller(ctx, id, userID, role)
	if err != nil {
		return err
	}
	if err := s.client.Pause(ctx, torrent.Hash); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "failed to pause torrent")
	}
	return nil
}

// Resume restarts transfers for an owned torrent.
func (s *TorrentService) Resume(ctx context.Context, id, userID string, role models.UserRole) error {
	torrent, err := s.findForCaller(ctx, id, userID, role)
	if err != nil {
		return err
	}
	if err := s.client.Resume(ctx, torrent.Hash); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "failed to resume torrent")
	}
	return nil
}

// Stats aggregates per-user totals with global live counts and speeds.
// Live values are zero when qBittorrent is unreachable.
func (s *TorrentService) Stats(ctx context.Context, userID string) (*models.TorrentStats, error) {
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count torrents")
	}

	stats := &models.TorrentStats{TotalTorrents: total}

	snapshots, err := s.client.Torrents(ctx)
	if err != nil {
		s.logger.Warn("stats without live data, qbittorrent unreachable", zap.Error(err))
		return stats, nil
	}
	for _, snap := range snapshots {
		if snap.Progress >= 1 {
			stats.CompletedTorrents++
		} else {
			stats.ActiveTorrents++
		}
	}

	if transfer, err := s.client.TransferInfo(ctx); err == nil {
		stats.TotalDownloadSpeed = float64(transfer.DownloadSpeed)
		stats.TotalUploadSpeed = float64(transfer.UploadSpeed)
	} else {
		s.logger.Warn("failed to fetch transfer info", zap.Error(err))
	}

	return stats, nil
}

// Files lists the files inside an owned torrent.
func (s *TorrentService) Files(ctx context.Context, id, userID string, role models.UserRole) ([]dto.TorrentFileItem, error) {
	torrent, err := s.findForCaller(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	files, err := s.client.Files(ctx, torrent.Hash)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "failed to list torrent files")
	}

	items := make([]dto.TorrentFileItem, 0, len(files))
	for _, f := range files {
		items = append(items, dto.TorrentFileItem{Path: f.Name, Size: f.Size, Progress: f.Progress})
	}
	return items, nil
}

// DownloadLink issues a signed, expiring URL for one file of the caller's
// completed torrent. The file must be fully downloaded and belong to the
// torrent.
func (s *TorrentService) DownloadLink(ctx context.Context, id, userID string, role models.UserRole, req dto.DownloadLinkRequest) (*signedurl.SignedLink, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid download link payload")
	}

	torrent, err := s.findForCaller(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}

	cfg, err := s.settings.SigningConfig(ctx)
	if err != nil {
		return nil, err
	}

	files, err := s.client.Files(ctx, torrent.Hash)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamDown.Code, appErrors.ErrUpstreamDown.Status, "failed to verify torrent files")
	}

	var found *qbit.FileInfo
	for i := range files {
		if files[i].Name == req.FilePath {
			found = &files[i]
			break
		}
	}
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file does not belong to this torrent")
	}
	if found.Progress < 1 {
		return nil, appErrors.Clone(appErrors.ErrConflict, "file is not fully downloaded yet")
	}

	link, err := s.signer.SignPath(req.FilePath, cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Info("issued download link",
		zap.String("user_id", userID),
		zap.String("torrent_id", torrent.ID),
		zap.String("file_path", req.FilePath),
		zap.Int64("expires_at", link.ExpiresAtEpoch))
	return &link, nil
}

func (s *TorrentService) findForCaller(ctx context.Context, id, userID string, role models.UserRole) (*models.Torrent, error) {
	var (
		torrent *models.Torrent
		err     error
	)
	if role == models.RoleAdmin {
		torrent, err = s.repo.FindByID(ctx, id)
	} else {
		torrent, err = s.repo.FindOwned(ctx, id, userID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "torrent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load torrent")
	}
	return torrent, nil
}

func (s *TorrentService) checkQuota(ctx context.Context, user *models.User) error {
	if user.GroupID == nil {
		return nil
	}
	group, err := s.groupRepo.FindByID(ctx, *user.GroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.MaxTorrents <= 0 {
		return nil
	}
	count, err := s.repo.CountByUser(ctx, user.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count torrents")
	}
	if count >= group.MaxTorrents {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("group limit of %d torrents reached", group.MaxTorrents))
	}
	return nil
}

func (s *TorrentService) liveByHash(ctx context.Context) map[string]qbit.TorrentSnapshot {
	snapshots, err := s.client.Torrents(ctx)
	if err != nil {
		s.logger.Warn("listing without live data, qbittorrent unreachable", zap.Error(err))
		return nil
	}
	live := make(map[string]qbit.TorrentSnapshot, len(snapshots))
	for _, snap := range snapshots {
		live[snap.Hash] = snap
	}
	return live
}

func (s *TorrentService) audit(ctx context.Context, userID, action, resourceID, payload string) {
	if err := s.auditRepo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "torrent",
		ResourceID: &resourceID,
		NewValues:  []byte(payload),
	}); err != nil {
		s.logger.Warn("failed to record torrent audit log", zap.Error(err))
	}
}
