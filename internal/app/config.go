package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/validator"
)

// EnvPrefix namespaces environment overrides, e.g. INLINEFORM_CLIENT_BASE_URL.
const EnvPrefix = "INLINEFORM"

// Config represents the runtime configuration shared by the server and the CLI.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Client        ClientConfig       `mapstructure:"client"`
	I18n          I18nConfig         `mapstructure:"i18n"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Monitoring    MonitoringConfig   `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port      int         `mapstructure:"port" validate:"min=0,max=65535"`
	LogLevel  string      `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string      `mapstructure:"log_format" validate:"oneof=json console"`
	JWT       JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl" validate:"min=0"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver" validate:"oneof=sqlite postgres postgresql mysql"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port" validate:"min=0,max=65535"`
	Database string            `mapstructure:"database"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
}

// ClientConfig points the permissions client at a running permissions service.
type ClientConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"omitempty,url"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

// I18nConfig selects the locale used for user facing messages.
type I18nConfig struct {
	Locale string `mapstructure:"locale"`
}

// NotificationConfig sizes the in-memory notification store.
type NotificationConfig struct {
	Buffer     int `mapstructure:"buffer" validate:"min=0"`
	MaxHistory int `mapstructure:"max_history" validate:"min=0"`
}

// MonitoringConfig enables metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,startswith=/"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Each path is searched for a config.yaml; ./config is always searched first.
func LoadConfig(paths ...string) (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	return load(v, true)
}

// LoadConfigFrom loads configuration from a directory or a single file. An empty path
// falls back to LoadConfig.
func LoadConfigFrom(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return LoadConfig()
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
	if info.IsDir() {
		return LoadConfig(path)
	}

	v := newViper()
	v.SetConfigFile(path)
	return load(v, false)
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper, optional bool) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !optional || !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	config.normalise()

	if err := validator.ValidateStruct(&config); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &config, nil
}

func (c *Config) normalise() {
	c.Server.LogLevel = strings.ToLower(strings.TrimSpace(c.Server.LogLevel))
	c.Server.LogFormat = strings.ToLower(strings.TrimSpace(c.Server.LogFormat))
	c.Server.JWT.Secret = strings.TrimSpace(c.Server.JWT.Secret)
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Client.BaseURL = strings.TrimSpace(c.Client.BaseURL)
	c.Client.Token = strings.TrimSpace(c.Client.Token)
	c.I18n.Locale = strings.TrimSpace(c.I18n.Locale)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8055)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.jwt.issuer", "inline-form")
	v.SetDefault("server.jwt.access_token_ttl", "15m")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/permissions.sqlite")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.mysql.port", 3306)

	v.SetDefault("client.base_url", "http://localhost:8055")
	v.SetDefault("client.timeout", "10s")
	v.SetDefault("client.user_agent", "inline-form-permissions")

	v.SetDefault("i18n.locale", "en-US")

	v.SetDefault("notifications.buffer", 16)
	v.SetDefault("notifications.max_history", 100)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
