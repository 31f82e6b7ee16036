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

// GroupRepository provides database access for user groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupColumns = `id, name, description, max_torrents, created_at, updated_at`

// List returns all groups ordered by name.
func (r *GroupRepository) List(ctx context.Context) ([]models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups ORDER BY name ASC`, groupColumns)
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// FindByID returns a group by identifier.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups WHERE id = $1 LIMIT 1`, groupColumns)
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group by id: %w", err)
	}
	return &group, nil
}

// FindByName returns a group by its unique name.
func (r *GroupRepository) FindByName(ctx context.Context, name string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM groups WHERE name = $1 LIMIT 1`, groupColumns)
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find group by name: %w", err)
	}
	return &group, nil
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	const query = `INSERT INTO groups (id, name, description, max_torrents, created_at, updated_at) VALUES (:id, :name, :description, :max_torrents, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// Update updates mutable fields of a group.
func (r *GroupRepository) Update(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE groups SET name = :name, description = :description, max_torrents = :max_torrents, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes a group and detaches its members.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete group tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET group_id = NULL, updated_at = $2 WHERE group_id = $1`, id, time.Now().UTC()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("detach group members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete group: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete group tx: %w", err)
	}
	return nil
}
