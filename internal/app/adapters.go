package app

import (
	"strings"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/apiclient"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/auth"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/database"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/notifications"
)

// JWTServiceConfig converts the JWT settings into the parameters expected by the JWT service.
func (c ServerConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}
	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// Connection converts the database section into a database.Config.
func (c DatabaseConfig) Connection() database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	var host DBAuthConfig
	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
		return dbCfg
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		host = c.Postgres
	case "mysql":
		host = c.MySQL
	default:
		return dbCfg
	}

	dbCfg.Host = strings.TrimSpace(host.Host)
	dbCfg.Port = host.Port
	dbCfg.Name = strings.TrimSpace(host.Database)
	dbCfg.User = strings.TrimSpace(host.Username)
	dbCfg.Password = host.Password
	dbCfg.Options = host.Options
	return dbCfg
}

// APIClientConfig converts the client section into an apiclient.Config.
func (c ClientConfig) APIClientConfig() apiclient.Config {
	return apiclient.Config{
		BaseURL:   c.BaseURL,
		Token:     c.Token,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
	}
}

// StoreOptions converts the notifications section into store options.
func (c NotificationConfig) StoreOptions() notifications.Options {
	return notifications.Options{
		MaxHistory: c.MaxHistory,
		Buffer:     c.Buffer,
	}
}
