package models

// Role groups permissions. Admin roles bypass permission rows entirely.
type Role struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	AdminAccess bool   `gorm:"default:false" json:"admin_access"`

	Permissions []Permission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}
