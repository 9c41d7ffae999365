package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/api"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/app"
	iauth "github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/auth"
	sharedtestutil "github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/database/testutil"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/models"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	cfg := &app.Config{
		Server: app.ServerConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Server.JWTServiceConfig())
	require.NoError(t, err)

	router, err := api.NewRouter(db, jwtSvc, cfg)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
	}
}

// CreateRole inserts a role with a random name and returns the record.
func (e *Env) CreateRole(admin bool) *models.Role {
	e.T.Helper()

	role := &models.Role{Name: "role-" + uuid.NewString(), AdminAccess: admin}
	require.NoError(e.T, e.DB.Create(role).Error)
	return role
}

// CreateUser inserts a user bound to role (nil for none) and returns the record.
func (e *Env) CreateUser(role *models.Role) *models.User {
	e.T.Helper()

	roleID := ""
	if role != nil {
		roleID = role.ID
	}
	return sharedtestutil.MustCreateUser(e.T, e.DB, "user-"+uuid.NewString()+"@example.com", roleID)
}

// Grant allows role to perform action on collection, optionally restricted to item keys.
func (e *Env) Grant(role *models.Role, collection, action string, items []string) {
	e.T.Helper()
	sharedtestutil.MustGrant(e.T, e.DB, role.ID, collection, action, []string{"*"}, items)
}

// Token issues an access token for user.
func (e *Env) Token(user *models.User) string {
	e.T.Helper()

	input := iauth.TokenInput{UserID: user.ID}
	if user.RoleID != nil {
		input.RoleID = *user.RoleID
	}
	token, err := e.JWT.GenerateAccessToken(input)
	require.NoError(e.T, err)
	return token
}

// Request executes a request against the test router, adding the bearer token when set.
func (e *Env) Request(method, path, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(method, path, nil)
	require.NoError(e.T, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// DecodeData unmarshals the data envelope of a success response into dest.
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.NotEmpty(t, envelope.Data, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

// DecodeErrorCode returns the code of the first entry of an error envelope.
func DecodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var payload response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	require.NotEmpty(t, payload.Errors, w.Body.String())
	return payload.Errors[0].Extensions.Code
}
