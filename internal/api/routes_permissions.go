package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/handlers"
)

func registerPermissionRoutes(r gin.IRouter, handler *handlers.PermissionHandler, requireAuth gin.HandlerFunc) {
	perms := r.Group("/permissions/me")
	perms.Use(requireAuth)
	{
		perms.GET("/:collection", handler.ItemPermissions)
		perms.GET("/:collection/:pk", handler.ItemPermissions)
	}
}
