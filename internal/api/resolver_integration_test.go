package api_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/apiclient"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/handlers/testutil"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/permissions"
	appErrors "github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
)

func TestItemResolverAgainstPermissionsService(t *testing.T) {
	env := testutil.NewEnv(t)
	role := env.CreateRole(false)
	env.Grant(role, "articles", "update", nil)
	env.Grant(role, "articles", "share", []string{"42"})

	srv := httptest.NewServer(env.Router)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Token: env.Token(env.CreateUser(role))})
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		reported []error
	)
	key := permissions.NewRef(permissions.Key("42"))
	resolver, err := permissions.NewItemResolver(
		permissions.StaticSource("articles"),
		key,
		client,
		permissions.WithReporter(permissions.ReporterFunc(func(err error, _ string) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, err)
		})),
	)
	require.NoError(t, err)
	t.Cleanup(resolver.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	perms, err := resolver.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, permissions.ItemPermissions{
		Update: permissions.AccessDecision{Access: true},
		Share:  permissions.AccessDecision{Access: true},
	}, perms)

	key.Set(permissions.Key("43"))
	perms, err = resolver.Resolve(ctx)
	require.NoError(t, err)
	require.True(t, perms.Update.Access)
	require.False(t, perms.Share.Access)

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, reported)
}

func TestItemResolverFallsBackOnRejectedToken(t *testing.T) {
	env := testutil.NewEnv(t)

	srv := httptest.NewServer(env.Router)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Token: "forged"})
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		reported []error
	)
	resolver, err := permissions.NewItemResolver(
		permissions.StaticSource("articles"),
		permissions.StaticSource(permissions.Key("1")),
		client,
		permissions.WithReporter(permissions.ReporterFunc(func(err error, _ string) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, err)
		})),
	)
	require.NoError(t, err)
	t.Cleanup(resolver.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	perms, err := resolver.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, permissions.OptimisticItemPermissions(), perms)
	require.Equal(t, permissions.PhaseFallback, resolver.Snapshot().Phase)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 1)
}

func TestEmptyPrimaryKeyIsNotAnsweredAsNewRecord(t *testing.T) {
	env := testutil.NewEnv(t)
	role := env.CreateRole(false)
	env.Grant(role, "articles", "update", []string{"42"})

	srv := httptest.NewServer(env.Router)
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Token: env.Token(env.CreateUser(role))})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	perms, err := client.FetchItemPermissions(ctx, "articles", permissions.NoPrimaryKey)
	require.NoError(t, err)
	require.True(t, perms.Update.Access)

	_, err = client.FetchItemPermissions(ctx, "articles", permissions.Key(""))
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	var (
		mu       sync.Mutex
		reported []error
	)
	resolver, err := permissions.NewItemResolver(
		permissions.StaticSource("articles"),
		permissions.StaticSource(permissions.Key("")),
		client,
		permissions.WithReporter(permissions.ReporterFunc(func(err error, _ string) {
			mu.Lock()
			defer mu.Unlock()
			reported = append(reported, err)
		})),
	)
	require.NoError(t, err)
	t.Cleanup(resolver.Close)

	_, err = resolver.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, permissions.PhaseFallback, resolver.Snapshot().Phase)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 1)
	require.ErrorIs(t, reported[0], appErrors.ErrNotFound)
}
