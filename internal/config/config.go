package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "CATALOG"

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Public base URL, used to build redirect targets
	ServerURL string

	// Enable debug logging
	Debug bool

	// Bearer token signing configuration
	JWT JWTConfig

	// Federated login (OIDC relying party) configuration
	OIDC OIDCConfig

	// Federated session cookie keys
	Session SessionConfig
}

// JWTConfig configures the locally issued bearer tokens.
type JWTConfig struct {
	// Secret is the HMAC signing key. It must be at least 32 bytes long.
	Secret string
	// TTL is the validity window of an issued token.
	TTL time.Duration
}

// OIDCConfig holds configuration for the upstream identity provider used for
// patron logins. Federated login is disabled when ClientID is empty.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// Enabled reports whether federated login is configured.
func (c OIDCConfig) Enabled() bool {
	return c.ClientID != ""
}

// SessionConfig holds the keys of the signed federated session cookie.
// Empty keys are replaced by random ones at startup, which invalidates
// sessions on restart.
type SessionConfig struct {
	HashKey  string
	BlockKey string
}

func init() {
	SetDefaults(viper.GetViper())
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "file:catalog.db")
	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("debug", false)
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("oidc.issuer", "https://accounts.google.com")
	v.SetDefault("oidc.scopes", []string{"openid", "profile", "email"})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// JWT_SECRET_KEY is accepted for compatibility with existing deployments.
	_ = v.BindEnv("jwt.secret", EnvPrefix+"_JWT_SECRET", "JWT_SECRET_KEY")
}

// Load reads configuration from the global viper instance (flags, config file,
// CATALOG_ environment variables) with fallback defaults.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL: v.GetString("database_url"),
		ServerAddr:  v.GetString("server_addr"),
		ServerURL:   strings.TrimRight(v.GetString("server_url"), "/"),
		Debug:       v.GetBool("debug"),
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		OIDC: OIDCConfig{
			Issuer:       v.GetString("oidc.issuer"),
			ClientID:     v.GetString("oidc.client_id"),
			ClientSecret: v.GetString("oidc.client_secret"),
			RedirectURI:  v.GetString("oidc.redirect_uri"),
			Scopes:       v.GetStringSlice("oidc.scopes"),
		},
		Session: SessionConfig{
			HashKey:  v.GetString("session.hash_key"),
			BlockKey: v.GetString("session.block_key"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required")
	}
	if cfg.JWT.TTL <= 0 {
		return nil, fmt.Errorf("jwt.ttl must be positive, got %s", cfg.JWT.TTL)
	}

	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, fmt.Errorf("session.block_key must be 16, 24 or 32 bytes, got %d", len(cfg.Session.BlockKey))
	}

	if cfg.OIDC.Enabled() {
		if cfg.OIDC.Issuer == "" {
			return nil, fmt.Errorf("oidc.issuer is required when oidc.client_id is set")
		}
		if cfg.OIDC.ClientSecret == "" {
			return nil, fmt.Errorf("oidc.client_secret is required when oidc.client_id is set")
		}
		if cfg.OIDC.RedirectURI == "" {
			cfg.OIDC.RedirectURI = cfg.ServerURL + "/login/oauth2/code/google"
		}
	}

	return cfg, nil
}
