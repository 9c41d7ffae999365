package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/middleware"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/permissions"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/services"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/response"
)

type PermissionHandler struct {
	svc *services.PermissionService
}

func NewPermissionHandler(db *gorm.DB) (*PermissionHandler, error) {
	svc, err := services.NewPermissionService(db)
	if err != nil {
		return nil, err
	}
	return &PermissionHandler{svc: svc}, nil
}

// GET /permissions/me/:collection
// GET /permissions/me/:collection/:pk
func (h *PermissionHandler) ItemPermissions(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	key := permissions.NoPrimaryKey
	if pk, ok := c.Params.Get("pk"); ok {
		key = permissions.Key(pk)
	}

	perms, err := h.svc.ItemPermissions(requestContext(c), userID, c.Param("collection"), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, perms)
}
