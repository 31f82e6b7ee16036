package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ExistsForTorrent(ctx context.Context, torrentID, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationService delivers completion notifications.
type NotificationService struct {
	repo   notificationRepository
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(repo notificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// NotifyCompleted records a completion notification unless one already
// exists for this torrent and user. Returns true when a new notification
// was written.
func (s *NotificationService) NotifyCompleted(ctx context.Context, torrent *models.Torrent) (bool, error) {
	exists, err := s.repo.ExistsForTorrent(ctx, torrent.ID, torrent.UserID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check notification")
	}
	if exists {
		return false, nil
	}

	notification := &models.Notification{
		UserID:      torrent.UserID,
		TorrentID:   torrent.ID,
		TorrentName: torrent.Name,
		Message:     fmt.Sprintf("Download complete: %s", torrent.Name),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}

	s.logger.Info("completion notification created",
		zap.String("user_id", torrent.UserID),
		zap.String("torrent_id", torrent.ID))
	return true, nil
}

// List returns the newest notifications for a user.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	matched, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification")
	}
	if !matched {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead marks every notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications")
	}
	return nil
}
