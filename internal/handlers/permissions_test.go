package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/handlers/testutil"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/permissions"
)

func TestItemPermissionsRequiresToken(t *testing.T) {
	env := testutil.NewEnv(t)

	w := env.Request(http.MethodGet, "/permissions/me/articles/1", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", testutil.DecodeErrorCode(t, w))
}

func TestItemPermissionsForRestrictedRole(t *testing.T) {
	env := testutil.NewEnv(t)
	role := env.CreateRole(false)
	env.Grant(role, "articles", "update", nil)
	env.Grant(role, "articles", "delete", []string{"a/b"})
	token := env.Token(env.CreateUser(role))

	w := env.Request(http.MethodGet, "/permissions/me/articles/a%2Fb", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var perms permissions.ItemPermissions
	testutil.DecodeData(t, w, &perms)
	require.True(t, perms.Update.Access)
	require.True(t, perms.Delete.Access)
	require.False(t, perms.Share.Access)

	w = env.Request(http.MethodGet, "/permissions/me/articles/other", token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeData(t, w, &perms)
	require.True(t, perms.Update.Access)
	require.False(t, perms.Delete.Access)
}

func TestItemPermissionsForNewRecord(t *testing.T) {
	env := testutil.NewEnv(t)
	role := env.CreateRole(false)
	env.Grant(role, "articles", "delete", []string{"7"})
	token := env.Token(env.CreateUser(role))

	w := env.Request(http.MethodGet, "/permissions/me/articles", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var perms permissions.ItemPermissions
	testutil.DecodeData(t, w, &perms)
	require.True(t, perms.Delete.Access)
}

func TestItemPermissionsForAdmin(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(env.CreateUser(env.CreateRole(true)))

	w := env.Request(http.MethodGet, "/permissions/me/anything/1", token)
	require.Equal(t, http.StatusOK, w.Code)

	var perms permissions.ItemPermissions
	testutil.DecodeData(t, w, &perms)
	require.Equal(t, permissions.OptimisticItemPermissions(), perms)
}

func TestItemPermissionsRejectsInvalidCollection(t *testing.T) {
	env := testutil.NewEnv(t)
	token := env.Token(env.CreateUser(nil))

	w := env.Request(http.MethodGet, "/permissions/me/bad%20name/1", token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_QUERY", testutil.DecodeErrorCode(t, w))
}

func TestItemPermissionsForDeletedUser(t *testing.T) {
	env := testutil.NewEnv(t)
	user := env.CreateUser(nil)
	token := env.Token(user)
	require.NoError(t, env.DB.Delete(user).Error)

	w := env.Request(http.MethodGet, "/permissions/me/articles/1", token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
