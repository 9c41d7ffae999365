package permissions

import (
	"strings"
	"sync"
)

// Store answers collection level permission questions from locally cached state.
// Implementations must be safe for concurrent use and must not perform I/O.
type Store interface {
	HasPermission(collection string, action Action) bool
}

type storeKey struct {
	collection string
	action     Action
}

// MemoryStore is an in-memory permission set keyed by collection and action.
type MemoryStore struct {
	mu          sync.RWMutex
	admin       bool
	permissions map[storeKey]*Permission
}

var defaultStore = NewMemoryStore()

// DefaultStore returns the process wide permission store.
func DefaultStore() *MemoryStore {
	return defaultStore
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		permissions: make(map[storeKey]*Permission),
	}
}

// HasPermission reports whether a permission exists for the collection and action.
// Admin stores grant everything.
func (s *MemoryStore) HasPermission(collection string, action Action) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.admin {
		return true
	}
	_, ok := s.permissions[storeKey{collection: collection, action: action}]
	return ok
}

// Permission returns a copy of the cached record for the collection and action.
func (s *MemoryStore) Permission(collection string, action Action) (*Permission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perm, ok := s.permissions[storeKey{collection: collection, action: action}]
	if !ok {
		return nil, false
	}
	return clonePermission(perm), true
}

// SetAdmin toggles the admin bypass.
func (s *MemoryStore) SetAdmin(admin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.admin = admin
}

// Replace swaps the cached permission set wholesale. Records with an empty collection are skipped.
func (s *MemoryStore) Replace(perms []Permission) {
	next := make(map[storeKey]*Permission, len(perms))
	for i := range perms {
		perm := clonePermission(&perms[i])
		perm.Collection = strings.TrimSpace(perm.Collection)
		if perm.Collection == "" {
			continue
		}
		next[storeKey{collection: perm.Collection, action: perm.Action}] = perm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.permissions = next
}

// Len returns the number of cached permission records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.permissions)
}

func clonePermission(perm *Permission) *Permission {
	if perm == nil {
		return nil
	}

	cp := *perm
	if perm.Fields != nil {
		cp.Fields = append([]string{}, perm.Fields...)
	}
	return &cp
}
