package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReplace(t *testing.T) {
	store := NewMemoryStore()
	store.Replace([]Permission{
		{Collection: "articles", Action: ActionRead, Fields: []string{"title", "body"}},
		{Collection: "articles", Action: ActionUpdate, Fields: []string{"*"}},
		{Collection: "  ", Action: ActionRead},
	})

	require.Equal(t, 2, store.Len())
	require.True(t, store.HasPermission("articles", ActionRead))
	require.True(t, store.HasPermission("articles", ActionUpdate))
	require.False(t, store.HasPermission("articles", ActionDelete))

	store.Replace(nil)
	require.Zero(t, store.Len())
	require.False(t, store.HasPermission("articles", ActionRead))
}

func TestMemoryStorePermissionReturnsCopy(t *testing.T) {
	fields := []string{"title"}
	store := NewMemoryStore()
	store.Replace([]Permission{{Collection: "articles", Action: ActionRead, Fields: fields}})

	fields[0] = "mutated"
	perm, ok := store.Permission("articles", ActionRead)
	require.True(t, ok)
	require.Equal(t, []string{"title"}, perm.Fields)
	require.True(t, IsFieldAllowed(perm, "title"))

	perm.Fields[0] = "changed"
	again, _ := store.Permission("articles", ActionRead)
	require.Equal(t, []string{"title"}, again.Fields)

	_, ok = store.Permission("articles", ActionDelete)
	require.False(t, ok)
}

func TestMemoryStorePreservesMissingFieldList(t *testing.T) {
	store := NewMemoryStore()
	store.Replace([]Permission{{Collection: "articles", Action: ActionRead}})

	perm, ok := store.Permission("articles", ActionRead)
	require.True(t, ok)
	require.Nil(t, perm.Fields)
	require.False(t, IsFieldAllowed(perm, "title"))
}

func TestMemoryStoreAdminBypass(t *testing.T) {
	store := NewMemoryStore()
	require.False(t, store.HasPermission("articles", ActionDelete))

	store.SetAdmin(true)
	require.True(t, store.HasPermission("articles", ActionDelete))
	require.True(t, RevisionsAllowed(store))

	store.SetAdmin(false)
	require.False(t, store.HasPermission("articles", ActionDelete))
}

func TestDefaultStoreIsShared(t *testing.T) {
	require.Same(t, DefaultStore(), DefaultStore())
}

func TestRefNotifiesOnlyOnChange(t *testing.T) {
	ref := NewRef("articles")
	calls := 0
	cancel := ref.Subscribe(func() {
		calls++
		require.Equal(t, "authors", ref.Get())
	})

	ref.Set("articles")
	require.Zero(t, calls)

	ref.Set("authors")
	require.Equal(t, 1, calls)

	cancel()
	ref.Set("pages")
	require.Equal(t, 1, calls)
}

func TestPrimaryKey(t *testing.T) {
	require.True(t, NoPrimaryKey.IsNew())
	require.Equal(t, "+", NoPrimaryKey.String())

	key := Key("42")
	value, ok := key.Value()
	require.True(t, ok)
	require.Equal(t, "42", value)
	require.False(t, key.IsNew())
	require.Equal(t, "42", key.String())
}

func TestItemPermissionsAllowed(t *testing.T) {
	perms := ItemPermissions{
		Update: AccessDecision{Access: true},
		Share:  AccessDecision{Access: true},
	}
	require.True(t, perms.Allowed(ActionUpdate))
	require.False(t, perms.Allowed(ActionDelete))
	require.True(t, perms.Allowed(ActionShare))
	require.False(t, perms.Allowed(ActionCreate))

	require.Equal(t, ItemPermissions{}, DefaultItemPermissions())
	optimistic := OptimisticItemPermissions()
	require.True(t, optimistic.Update.Access && optimistic.Delete.Access && optimistic.Share.Access)
}
