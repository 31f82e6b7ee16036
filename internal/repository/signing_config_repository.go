package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
)

// SigningConfigRepository persists the single download signing
// configuration row.
type SigningConfigRepository struct {
	db *sqlx.DB
}

// NewSigningConfigRepository constructs the repository.
func NewSigningConfigRepository(db *sqlx.DB) *SigningConfigRepository {
	return &SigningConfigRepository{db: db}
}

// Get fetches the active configuration. sql.ErrNoRows means the system has
// never been configured.
func (r *SigningConfigRepository) Get(ctx context.Context) (*models.SigningConfigRecord, error) {
	const query = `SELECT id, base_url, secret_key, download_path, link_expiry_hours, updated_by, updated_at FROM signing_configs WHERE id = $1`
	var record models.SigningConfigRecord
	if err := r.db.GetContext(ctx, &record, query, models.SigningConfigID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get signing config: %w", err)
	}
	return &record, nil
}

// Upsert inserts or overwrites the configuration row.
func (r *SigningConfigRepository) Upsert(ctx context.Context, record *models.SigningConfigRecord) error {
	if record.ID == "" {
		record.ID = models.SigningConfigID
	}
	record.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO signing_configs (id, base_url, secret_key, download_path, link_expiry_hours, updated_by, updated_at)
VALUES (:id, :base_url, :secret_key, :download_path, :link_expiry_hours, :updated_by, :updated_at)
ON CONFLICT (id)
DO UPDATE SET base_url = EXCLUDED.base_url, secret_key = EXCLUDED.secret_key,
              download_path = EXCLUDED.download_path, link_expiry_hours = EXCLUDED.link_expiry_hours,
              updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert signing config: %w", err)
	}
	return nil
}
