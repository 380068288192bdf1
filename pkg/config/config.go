package config

import "fmt"

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"AUTHSAFE_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"AUTHSAFE_PG_PORT" env-default:"5432"`
	Database string `env:"AUTHSAFE_PG_DATABASE" env-default:"authsafe_db"`
	User     string `env:"AUTHSAFE_PG_USER" env-default:"authsafe"`
	Password string `env:"AUTHSAFE_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"AUTHSAFE_PG_SCHEMA" env-default:"public"`
}

// ToDatabaseURL converts the config to a PostgreSQL connection URL
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// RedisConfig holds the shared cache/lock backend configuration
type RedisConfig struct {
	Addr     string `env:"AUTHSAFE_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"AUTHSAFE_REDIS_PASSWORD" env-default:""`
	DB       int    `env:"AUTHSAFE_REDIS_DB" env-default:"0"`
}

// OAuth2Config holds authorization-code flow settings
type OAuth2Config struct {
	// Issuer is the iss claim of issued tokens, typically the public base URL
	Issuer string `env:"AUTHSAFE_ISSUER" env-default:"http://localhost:4000"`

	// CodeExpiry bounds how long an issued authorization code stays valid
	CodeExpiry string `env:"AUTHSAFE_CODE_EXPIRY" env-default:"10m"`

	// TokenExpiry is the shared ID/access token lifetime
	TokenExpiry string `env:"AUTHSAFE_TOKEN_EXPIRY" env-default:"1h"`

	// LockTTL bounds worst-case exchange latency if a holder crashes
	LockTTL string `env:"AUTHSAFE_LOCK_TTL" env-default:"30s"`

	// LockTries bounds lock acquisition retries before reporting contention
	LockTries int `env:"AUTHSAFE_LOCK_TRIES" env-default:"10"`

	// BootstrapOrg, when set, provisions a signing key for that organization
	// at startup if it has none. Development convenience only.
	BootstrapOrg string `env:"AUTHSAFE_BOOTSTRAP_ORG" env-default:""`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	Host string `env:"AUTHSAFE_HOST" env-default:"localhost"`
	Port uint16 `env:"AUTHSAFE_PORT" env-default:"4000"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Config aggregates all server configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OAuth2   OAuth2Config
}
