package database

import (
	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/models"
)

// AdminRoleID identifies the seeded administrator role.
const AdminRoleID = "administrator"

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Permission{},
	)
}

// SeedData ensures the administrator role exists.
func SeedData(db *gorm.DB) error {
	admin := models.Role{
		BaseModel:   models.BaseModel{ID: AdminRoleID},
		Name:        "Administrator",
		Description: "Full access to every collection",
		AdminAccess: true,
	}
	return db.Where(models.Role{BaseModel: models.BaseModel{ID: admin.ID}}).Attrs(admin).FirstOrCreate(&models.Role{}).Error
}
