package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
)

// TorrentRepository persists torrent ownership records.
type TorrentRepository struct {
	db *sqlx.DB
}

// NewTorrentRepository constructs the repository.
func NewTorrentRepository(db *sqlx.DB) *TorrentRepository {
	return &TorrentRepository{db: db}
}

const torrentColumns = `id, user_id, username, name, magnet, hash, created_at`

// Create inserts a torrent record.
func (r *TorrentRepository) Create(ctx context.Context, torrent *models.Torrent) error {
	if torrent.ID == "" {
		torrent.ID = uuid.NewString()
	}
	if torrent.CreatedAt.IsZero() {
		torrent.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO torrents (id, user_id, username, name, magnet, hash, created_at) VALUES (:id, :user_id, :username, :name, :magnet, :hash, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, torrent); err != nil {
		return fmt.Errorf("create torrent: %w", err)
	}
	return nil
}

// FindByID returns a torrent by identifier.
func (r *TorrentRepository) FindByID(ctx context.Context, id string) (*models.Torrent, error) {
	query := fmt.Sprintf(`SELECT %s FROM torrents WHERE id = $1 LIMIT 1`, torrentColumns)
	var torrent models.Torrent
	if err := r.db.GetContext(ctx, &torrent, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find torrent by id: %w", err)
	}
	return &torrent, nil
}

// FindOwned returns a torrent only when it belongs to the given user.
func (r *TorrentRepository) FindOwned(ctx context.Context, id, userID string) (*models.Torrent, error) {
	query := fmt.Sprintf(`SELECT %s FROM torrents WHERE id = $1 AND user_id = $2 LIMIT 1`, torrentColumns)
	var torrent models.Torrent
	if err := r.db.GetContext(ctx, &torrent, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find owned torrent: %w", err)
	}
	return &torrent, nil
}

// ListByUser returns the torrents added by one user, newest first.
func (r *TorrentRepository) ListByUser(ctx context.Context, userID string) ([]models.Torrent, error) {
	query := fmt.Sprintf(`SELECT %s FROM torrents WHERE user_id = $1 ORDER BY created_at DESC`, torrentColumns)
	var torrents []models.Torrent
	if err := r.db.SelectContext(ctx, &torrents, query, userID); err != nil {
		return nil, fmt.Errorf("list torrents by user: %w", err)
	}
	return torrents, nil
}

// ListAll returns every tracked torrent, newest first.
func (r *TorrentRepository) ListAll(ctx context.Context) ([]models.Torrent, error) {
	query := fmt.Sprintf(`SELECT %s FROM torrents ORDER BY created_at DESC`, torrentColumns)
	var torrents []models.Torrent
	if err := r.db.SelectContext(ctx, &torrents, query); err != nil {
		return nil, fmt.Errorf("list all torrents: %w", err)
	}
	return torrents, nil
}

// CountByUser counts the torrents a user has added.
func (r *TorrentRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM torrents WHERE user_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, userID); err != nil {
		return 0, fmt.Errorf("count torrents by user: %w", err)
	}
	return total, nil
}

// Delete removes a torrent record.
func (r *TorrentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM torrents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete torrent: %w", err)
	}
	return nil
}
