package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
	"github.com/qbitmaster/qbitmaster-api/pkg/signedurl"
)

func TestSigningConfigRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSigningConfigRepository(db)
	rows := sqlmock.NewRows([]string{"id", "base_url", "secret_key", "download_path", "link_expiry_hours", "updated_by", "updated_at"}).
		AddRow("default", "https://files.example.com", "0123456789abcdef", "/downloads", 6, "admin", time.Now())
	mock.ExpectQuery("SELECT id, base_url, secret_key").
		WithArgs("default").
		WillReturnRows(rows)

	record, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com", record.BaseURL)
	assert.Equal(t, 6, record.LinkExpiryHours)
}

func TestSigningConfigRepositoryGetNotConfigured(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSigningConfigRepository(db)
	mock.ExpectQuery("SELECT id, base_url, secret_key").
		WithArgs("default").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSigningConfigRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSigningConfigRepository(db)
	mock.ExpectExec("INSERT INTO signing_configs").
		WithArgs("default", "https://files.example.com", "0123456789abcdef", "/downloads", 6, "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	updatedBy := "admin"
	record := &models.SigningConfigRecord{
		Config: signedurl.Config{
			BaseURL:         "https://files.example.com",
			SecretKey:       "0123456789abcdef",
			DownloadPath:    "/downloads",
			LinkExpiryHours: 6,
		},
		UpdatedBy: &updatedBy,
	}
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.Equal(t, models.SigningConfigID, record.ID)
}
