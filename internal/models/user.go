package models

// User is an authenticated principal. A user without a role has no permissions.
type User struct {
	BaseModel

	Email  string  `gorm:"uniqueIndex;not null" json:"email"`
	RoleID *string `gorm:"type:varchar(36);index" json:"role_id"`
	Role   *Role   `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}
