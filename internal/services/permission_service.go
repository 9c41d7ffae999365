package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/models"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/permissions"
	apperrors "github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/metrics"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/validator"
)

// itemActions are the actions answered per record.
var itemActions = []permissions.Action{
	permissions.ActionUpdate,
	permissions.ActionDelete,
	permissions.ActionShare,
}

// PermissionService answers item level permission questions from the role and permission tables.
type PermissionService struct {
	db *gorm.DB
}

// NewPermissionService constructs a PermissionService using the provided database handle.
func NewPermissionService(db *gorm.DB) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	return &PermissionService{db: db}, nil
}

// ItemPermissions resolves which item actions userID may perform on the record identified by
// collection and key. A new record (no key) is checked against the collection grants only.
func (s *PermissionService) ItemPermissions(ctx context.Context, userID, collection string, key permissions.PrimaryKey) (permissions.ItemPermissions, error) {
	ctx = ensureContext(ctx)
	result := permissions.DefaultItemPermissions()

	if !validator.IsCollectionName(collection) {
		return result, apperrors.NewBadRequest("invalid collection name")
	}
	if userID == "" {
		return result, apperrors.ErrUnauthorized
	}

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role").Take(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result, apperrors.ErrUnauthorized
	}
	if err != nil {
		return result, fmt.Errorf("permission service: load user: %w", err)
	}

	switch {
	case user.Role == nil:
	case user.Role.AdminAccess:
		result = permissions.OptimisticItemPermissions()
	default:
		granted, err := s.grantedActions(ctx, user.Role.ID, collection, key)
		if err != nil {
			return permissions.DefaultItemPermissions(), err
		}
		result.Update.Access = granted[permissions.ActionUpdate]
		result.Delete.Access = granted[permissions.ActionDelete]
		result.Share.Access = granted[permissions.ActionShare]
	}

	for _, action := range itemActions {
		metrics.ItemDecisions.WithLabelValues(string(action), metrics.Outcome(result.Allowed(action))).Inc()
	}
	return result, nil
}

func (s *PermissionService) grantedActions(ctx context.Context, roleID, collection string, key permissions.PrimaryKey) (map[permissions.Action]bool, error) {
	actions := make([]string, 0, len(itemActions))
	for _, action := range itemActions {
		actions = append(actions, string(action))
	}

	var rows []models.Permission
	if err := s.db.WithContext(ctx).
		Where("role_id = ? AND collection = ? AND action IN ?", roleID, collection, actions).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("permission service: load permissions: %w", err)
	}

	granted := make(map[permissions.Action]bool, len(itemActions))
	for _, row := range rows {
		action := permissions.Action(row.Action)
		if granted[action] {
			continue
		}
		ok, err := coversItem(row, key)
		if err != nil {
			return nil, err
		}
		granted[action] = ok
	}
	return granted, nil
}

// coversItem reports whether a permission row applies to the record identified by key.
func coversItem(row models.Permission, key permissions.PrimaryKey) (bool, error) {
	items, err := row.ItemKeys()
	if err != nil {
		return false, fmt.Errorf("permission service: %w", err)
	}
	value, ok := key.Value()
	if items == nil || !ok {
		return true, nil
	}
	return containsString(items, value), nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
