package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// Permission grants a role one action on a collection.
//
// Fields lists the visible fields; a NULL value means no field list was declared.
// Items restricts the grant to specific primary keys; NULL means every item.
type Permission struct {
	BaseModel

	RoleID     string         `gorm:"type:varchar(36);not null;index:idx_permission_lookup,priority:1" json:"role_id"`
	Collection string         `gorm:"type:varchar(64);not null;index:idx_permission_lookup,priority:2" json:"collection"`
	Action     string         `gorm:"type:varchar(16);not null;index:idx_permission_lookup,priority:3" json:"action"`
	Fields     datatypes.JSON `json:"fields"`
	Items      datatypes.JSON `json:"items"`
}

// TableName overrides the default table name for GORM.
func (Permission) TableName() string {
	return "permissions"
}

// FieldList decodes Fields. A nil slice means no field list was declared.
func (p Permission) FieldList() ([]string, error) {
	return decodeStrings(p.Fields, "fields")
}

// ItemKeys decodes Items. A nil slice means the grant is not restricted to specific items.
func (p Permission) ItemKeys() ([]string, error) {
	return decodeStrings(p.Items, "items")
}

// EncodeStrings converts a string list into a JSON column value. Nil stays NULL.
func EncodeStrings(values []string) datatypes.JSON {
	if values == nil {
		return nil
	}
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}

func decodeStrings(raw datatypes.JSON, column string) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	values := []string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("permission: decode %s: %w", column, err)
	}
	return values, nil
}
