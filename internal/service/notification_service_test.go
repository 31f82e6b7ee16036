package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
)

type notificationRepoStub struct {
	notifications []models.Notification
	unread        int
	matched       bool
	err           error
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *notificationRepoStub) ExistsForTorrent(ctx context.Context, torrentID, userID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, n := range s.notifications {
		if n.TorrentID == torrentID && n.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *notificationRepoStub) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.notifications, nil
}

func (s *notificationRepoStub) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.unread, s.err
}

func (s *notificationRepoStub) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	return s.matched, s.err
}

func (s *notificationRepoStub) MarkAllRead(ctx context.Context, userID string) error {
	return s.err
}

func TestNotifyCompletedDeduplicates(t *testing.T) {
	repo := &notificationRepoStub{}
	svc := NewNotificationService(repo, nil)

	torrent := &models.Torrent{ID: "t1", UserID: "u1", Name: "Ubuntu ISO"}

	created, err := svc.NotifyCompleted(context.Background(), torrent)
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, repo.notifications, 1)
	assert.Contains(t, repo.notifications[0].Message, "Ubuntu ISO")

	created, err = svc.NotifyCompleted(context.Background(), torrent)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, repo.notifications, 1)
}

func TestMarkReadNotFound(t *testing.T) {
	svc := NewNotificationService(&notificationRepoStub{matched: false}, nil)

	err := svc.MarkRead(context.Background(), "n1", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUnreadCount(t *testing.T) {
	svc := NewNotificationService(&notificationRepoStub{unread: 4}, nil)

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
