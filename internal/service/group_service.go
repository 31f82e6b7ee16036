package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/internal/models"
	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
)

type groupRepository interface {
	List(ctx context.Context) ([]models.Group, error)
	FindByID(ctx context.Context, id string) (*models.Group, error)
	FindByName(ctx context.Context, name string) (*models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
}

type groupAuditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// GroupRequest is the payload for creating or updating a group.
type GroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description"`
	MaxTorrents int    `json:"max_torrents" validate:"gte=0"`
}

// GroupService manages user groups and their torrent quotas.
type GroupService struct {
	repo      groupRepository
	auditRepo groupAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService creates a GroupService instance.
func NewGroupService(repo groupRepository, auditRepo groupAuditRepository, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GroupService{repo: repo, auditRepo: auditRepo, validator: validate, logger: logger}
}

// List returns all groups.
func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}

// Get returns a group by ID.
func (s *GroupService) Get(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Create adds a new group.
func (s *GroupService) Create(ctx context.Context, req GroupRequest, actorID string) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "group name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check group name")
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		MaxTorrents: req.MaxTorrents,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}

	s.auditGroup(ctx, actorID, models.AuditActionGroupCreate, group)
	return group, nil
}

// Update modifies a group.
func (s *GroupService) Update(ctx context.Context, id string, req GroupRequest, actorID string) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}

	group, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	group.Name = req.Name
	group.Description = req.Description
	group.MaxTorrents = req.MaxTorrents

	if err := s.repo.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}

	s.auditGroup(ctx, actorID, models.AuditActionGroupUpdate, group)
	return group, nil
}

// Delete removes a group. Members are detached, not deleted.
func (s *GroupService) Delete(ctx context.Context, id string, actorID string) error {
	group, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}

	s.auditGroup(ctx, actorID, models.AuditActionGroupDelete, group)
	return nil
}

func (s *GroupService) auditGroup(ctx context.Context, actorID, action string, group *models.Group) {
	payload, _ := json.Marshal(map[string]interface{}{"name": group.Name, "max_torrents": group.MaxTorrents})
	if err := s.auditRepo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "groups",
		ResourceID: &group.ID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record group audit log", zap.Error(err))
	}
}
