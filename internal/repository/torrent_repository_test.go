package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestTorrentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTorrentRepository(db)
	mock.ExpectExec("INSERT INTO torrents").
		WithArgs(sqlmock.AnyArg(), "user-1", "alice", "Ubuntu ISO", "magnet:?xt=urn:btih:abc", "abc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	torrent := &models.Torrent{
		UserID:   "user-1",
		Username: "alice",
		Name:     "Ubuntu ISO",
		Magnet:   "magnet:?xt=urn:btih:abc",
		Hash:     "abc",
	}
	require.NoError(t, repo.Create(context.Background(), torrent))
	assert.NotEmpty(t, torrent.ID)
}

func TestTorrentRepositoryFindOwned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTorrentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "username", "name", "magnet", "hash", "created_at"}).
		AddRow("torrent-1", "user-1", "alice", "Ubuntu ISO", "magnet:?xt=urn:btih:abc", "abc", time.Now())
	mock.ExpectQuery("SELECT id, user_id, username, name, magnet, hash, created_at FROM torrents WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("torrent-1", "user-1").
		WillReturnRows(rows)

	torrent, err := repo.FindOwned(context.Background(), "torrent-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", torrent.Hash)
}

func TestTorrentRepositoryFindOwnedNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTorrentRepository(db)
	mock.ExpectQuery("SELECT id, user_id, username").
		WithArgs("torrent-1", "user-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindOwned(context.Background(), "torrent-1", "user-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTorrentRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTorrentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "username", "name", "magnet", "hash", "created_at"}).
		AddRow("torrent-1", "user-1", "alice", "Ubuntu ISO", "", "abc", time.Now()).
		AddRow("torrent-2", "user-1", "alice", "Debian ISO", "", "def", time.Now())
	mock.ExpectQuery("SELECT id, user_id, username, name, magnet, hash, created_at FROM torrents WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("user-1").
		WillReturnRows(rows)

	torrents, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, torrents, 2)
	assert.Equal(t, "Debian ISO", torrents[1].Name)
}

func TestTorrentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTorrentRepository(db)
	mock.ExpectExec("DELETE FROM torrents WHERE id = \\$1").
		WithArgs("torrent-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "torrent-1"))
}

func TestTorrentRepositoryCountByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTorrentRepository(db)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM torrents WHERE user_id = \\$1").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := repo.CountByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}
