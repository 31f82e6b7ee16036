package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
)

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "user-1", "torrent-1", "Ubuntu ISO", "Download of 'Ubuntu ISO' finished", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.Notification{
		UserID:      "user-1",
		TorrentID:   "torrent-1",
		TorrentName: "Ubuntu ISO",
		Message:     "Download of 'Ubuntu ISO' finished",
	}
	require.NoError(t, repo.Create(context.Background(), n))
	assert.NotEmpty(t, n.ID)
}

func TestNotificationRepositoryExistsForTorrent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM notifications WHERE torrent_id = \\$1 AND user_id = \\$2").
		WithArgs("torrent-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsForTorrent(context.Background(), "torrent-1", "user-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNotificationRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "torrent_id", "torrent_name", "message", "read", "created_at"}).
		AddRow("n-1", "user-1", "torrent-1", "Ubuntu ISO", "done", false, time.Now())
	mock.ExpectQuery("SELECT id, user_id, torrent_id, torrent_name, message, read, created_at FROM notifications WHERE user_id = \\$1 ORDER BY created_at DESC LIMIT 50").
		WithArgs("user-1").
		WillReturnRows(rows)

	notifications, err := repo.ListByUser(context.Background(), "user-1", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
}

func TestNotificationRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec("UPDATE notifications SET read = TRUE WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("n-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	matched, err := repo.MarkRead(context.Background(), "n-1", "user-1")
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestNotificationRepositoryMarkReadNoMatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewNotificationRepository(db)
	mock.ExpectExec("UPDATE notifications SET read = TRUE").
		WithArgs("n-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	matched, err := repo.MarkRead(context.Background(), "n-1", "user-2")
	require.NoError(t, err)
	assert.False(t, matched)
}
