package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/response"
)

// Health returns a status payload useful for readiness checks. When db is set the
// connection is pinged and a failure reported as 503.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				response.Error(c, errors.ErrServiceUnavailable.WithInternal(err))
				return
			}
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
