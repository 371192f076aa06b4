package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Events   EventsConfig   `mapstructure:"events" validate:"required"`
	GitHub   GitHubConfig   `mapstructure:"github"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// ShutdownTimeoutSeconds bounds graceful shutdown, including session teardown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
	// AllowedOrigins lists browser origins accepted on WebSocket upgrade.
	// Empty accepts same-host origins only.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
	// MaxOpenConns caps the connection pool. Zero means unlimited.
	MaxOpenConns int `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// CacheConfig sizes the in-process task cache.
type CacheConfig struct {
	TTLMs int `mapstructure:"ttl_ms" validate:"gt=0"`
	// MaxEntries of zero disables caching.
	MaxEntries int `mapstructure:"max_entries" validate:"gte=0"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMs) * time.Millisecond
}

// EventsConfig sizes the project update broker.
type EventsConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}

// GitHubConfig contains the GitHub OAuth app and API settings.
// The integration is disabled when ClientID is empty.
type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret" validate:"required_with=ClientID"`
	RedirectURL  string `mapstructure:"redirect_url" validate:"omitempty,url"`
	APIURL       string `mapstructure:"api_url" validate:"required,url"`
	// ConnectedRedirect is where the OAuth callback sends the browser.
	ConnectedRedirect string `mapstructure:"connected_redirect"`
}

// Enabled reports whether GitHub OAuth is configured.
func (c GitHubConfig) Enabled() bool {
	return c.ClientID != ""
}
