package permissions

import "github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/metrics"

// IsActionAllowed reports whether the cached store grants action on collection.
// An empty collection is always denied.
func IsActionAllowed(store Store, collection string, action Action) bool {
	if store == nil || collection == "" {
		metrics.PermissionChecks.WithLabelValues("collection", metrics.Outcome(false)).Inc()
		return false
	}

	allowed := store.HasPermission(collection, action)
	metrics.PermissionChecks.WithLabelValues("collection", metrics.Outcome(allowed)).Inc()
	return allowed
}

// ActionPredicate is a collection scoped decision derived from a Store. It holds no state of
// its own: every call to Allowed reads the current collection and consults the store again.
type ActionPredicate struct {
	store      Store
	collection Source[string]
	action     Action
}

// NewActionPredicate binds a store, a collection source and an action.
func NewActionPredicate(store Store, collection Source[string], action Action) *ActionPredicate {
	return &ActionPredicate{
		store:      store,
		collection: collection,
		action:     action,
	}
}

// Allowed evaluates the predicate against the current collection value.
func (p *ActionPredicate) Allowed() bool {
	if p == nil || p.collection == nil {
		return false
	}
	return IsActionAllowed(p.store, p.collection.Get(), p.action)
}

// Action returns the action the predicate checks.
func (p *ActionPredicate) Action() Action {
	return p.action
}

// RevisionsAllowed reports whether the current user may read revision history.
// Revisions are a global capability, not scoped per collection.
func RevisionsAllowed(store Store) bool {
	if store == nil {
		metrics.PermissionChecks.WithLabelValues("revisions", metrics.Outcome(false)).Inc()
		return false
	}

	allowed := store.HasPermission(RevisionsCollection, ActionRead)
	metrics.PermissionChecks.WithLabelValues("revisions", metrics.Outcome(allowed)).Inc()
	return allowed
}

// RevisionsPredicate is the derived form of RevisionsAllowed.
type RevisionsPredicate struct {
	store Store
}

// NewRevisionsPredicate binds the predicate to a store.
func NewRevisionsPredicate(store Store) *RevisionsPredicate {
	return &RevisionsPredicate{store: store}
}

// Allowed evaluates the predicate against the store's current state.
func (p *RevisionsPredicate) Allowed() bool {
	if p == nil {
		return false
	}
	return RevisionsAllowed(p.store)
}
