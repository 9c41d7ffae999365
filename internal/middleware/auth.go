package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	iauth "github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/auth"
	appErrors "github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxRoleIDKey = "roleID"
)

// Auth enforces bearer token authentication using the supplied JWT service.
func Auth(svc *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := svc.ValidateAccessToken(strings.TrimSpace(authz[7:]))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Error(c, appErrors.ErrTokenExpired)
			} else {
				response.Error(c, appErrors.ErrUnauthorized)
			}
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		if claims.RoleID != "" {
			c.Set(CtxRoleIDKey, claims.RoleID)
		}

		c.Next()
	}
}
