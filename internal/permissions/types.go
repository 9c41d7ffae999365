package permissions

// Action names an operation a user may perform on a collection or item.
type Action string

// Standard actions understood by the permissions service.
const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionShare  Action = "share"
)

// RevisionsCollection is the system collection guarding revision history.
const RevisionsCollection = "directus_revisions"

// AccessDecision is the per-action grant flag returned by the permissions service.
type AccessDecision struct {
	Access bool `json:"access"`
}

// ItemPermissions holds the current user's decisions for a single record.
type ItemPermissions struct {
	Update AccessDecision `json:"update"`
	Delete AccessDecision `json:"delete"`
	Share  AccessDecision `json:"share"`
}

// DefaultItemPermissions denies every action. It is the value exposed before the first fetch lands.
func DefaultItemPermissions() ItemPermissions {
	return ItemPermissions{}
}

// OptimisticItemPermissions grants every action. It replaces the fetched value when the
// permissions service cannot be reached so editing is not blocked; writes are still
// enforced server side.
func OptimisticItemPermissions() ItemPermissions {
	return ItemPermissions{
		Update: AccessDecision{Access: true},
		Delete: AccessDecision{Access: true},
		Share:  AccessDecision{Access: true},
	}
}

// Allowed reports the decision for the given action. Actions outside update/delete/share are denied.
func (p ItemPermissions) Allowed(action Action) bool {
	switch action {
	case ActionUpdate:
		return p.Update.Access
	case ActionDelete:
		return p.Delete.Access
	case ActionShare:
		return p.Share.Access
	default:
		return false
	}
}

// Permission is a collection level permission record as cached by the Store.
// A nil Fields slice means no field list was declared.
type Permission struct {
	Collection string   `json:"collection"`
	Action     Action   `json:"action"`
	Fields     []string `json:"fields"`
}

// PrimaryKey identifies a record. The zero value represents a new, unsaved record.
type PrimaryKey struct {
	value string
	set   bool
}

// NoPrimaryKey is the key of a record that has not been saved yet.
var NoPrimaryKey = PrimaryKey{}

// Key builds a present primary key.
func Key(value string) PrimaryKey {
	return PrimaryKey{value: value, set: true}
}

// Value returns the key and whether one is present.
func (k PrimaryKey) Value() (string, bool) {
	return k.value, k.set
}

// IsNew reports whether the key refers to an unsaved record.
func (k PrimaryKey) IsNew() bool {
	return !k.set
}

func (k PrimaryKey) String() string {
	if !k.set {
		return "+"
	}
	return k.value
}
