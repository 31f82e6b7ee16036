package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
)

func TestFindByUsername(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "group_id", "active", "last_login", "created_at", "updated_at"}).
		AddRow("1", "alice", "alice@example.com", "hash", string(models.RoleAdmin), nil, true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role, group_id, active, last_login, created_at, updated_at FROM users WHERE username = $1 LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRefreshToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{ID: "1", UserID: "u1", Token: "token", ExpiresAt: time.Now(), CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "group_id", "active", "last_login", "created_at", "updated_at"}).
		AddRow("1", "alice", "alice@example.com", "hash", string(models.RoleAdmin), nil, true, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role, group_id, active, last_login, created_at, updated_at FROM users WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1")).WillReturnRows(countRows)

	users, total, err := repo.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersByGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "group_id", "active", "last_login", "created_at", "updated_at"}).
		AddRow("1", "bob", "bob@example.com", "hash", string(models.RoleUser), "g1", true, now, now, now)
	mock.ExpectQuery("SELECT .+ FROM users WHERE 1=1 AND group_id").
		WithArgs("g1").
		WillReturnRows(listRows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	groupID := "g1"
	users, total, err := repo.List(context.Background(), models.UserFilter{GroupID: &groupID})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, users[0].GroupID)
	assert.Equal(t, "g1", *users[0].GroupID)
}
