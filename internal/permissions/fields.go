package permissions

// FieldWildcard grants visibility on every field.
const FieldWildcard = "*"

// IsFieldAllowed reports whether field is covered by the permission's field list.
// A missing permission or field list denies. Matching is exact.
func IsFieldAllowed(perm *Permission, field string) bool {
	if perm == nil || perm.Fields == nil {
		return false
	}

	for _, allowed := range perm.Fields {
		if allowed == FieldWildcard || allowed == field {
			return true
		}
	}
	return false
}
