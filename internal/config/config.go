package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDirectoryBaseURL = "https://reqres.in"
	defaultDirectoryAPIKey  = "reqres-free-v1"
	defaultVaultKVMount     = "secret"
	defaultSessionLifetime  = 24 * time.Hour

	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

type Config struct {
	HTTPAddr                 string
	MetricsAddr              string
	DirectoryBaseURL         string
	DirectoryAPIKey          string
	DirectoryAPIKeyVaultPath string
	DirectoryTimeout         time.Duration
	VaultAddr                string
	VaultToken               string
	VaultNamespace           string
	VaultKVMount             string
	SessionStore             string
	DatabaseURL              string
	SessionLifetime          time.Duration
	AuthCookieSecure         bool
	OTelEndpoint             string
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadForMigrations loads the configuration and insists on DATABASE_URL.
func LoadForMigrations() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		HTTPAddr:                 getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:              strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		DirectoryBaseURL:         strings.TrimRight(getenvDefault("DIRECTORY_BASE_URL", defaultDirectoryBaseURL), "/"),
		DirectoryAPIKey:          getenvDefault("DIRECTORY_API_KEY", defaultDirectoryAPIKey),
		DirectoryAPIKeyVaultPath: strings.TrimSpace(os.Getenv("DIRECTORY_API_KEY_VAULT_PATH")),
		VaultAddr:                strings.TrimSpace(os.Getenv("VAULT_ADDR")),
		VaultToken:               strings.TrimSpace(os.Getenv("VAULT_TOKEN")),
		VaultNamespace:           strings.TrimSpace(os.Getenv("VAULT_NAMESPACE")),
		VaultKVMount:             getenvDefault("VAULT_KV_MOUNT", defaultVaultKVMount),
		SessionStore:             strings.ToLower(strings.TrimSpace(getenvDefault("SESSION_STORE", SessionStoreMemory))),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		SessionLifetime:          defaultSessionLifetime,
		AuthCookieSecure:         getenvBoolDefault("AUTH_COOKIE_SECURE", false),
		OTelEndpoint:             strings.TrimSpace(os.Getenv("OTEL_ENDPOINT")),
	}

	if v := os.Getenv("DIRECTORY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.DirectoryTimeout = d
		}
	}
	if v := os.Getenv("SESSION_LIFETIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionLifetime = d
		}
	}

	switch cfg.SessionStore {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required when SESSION_STORE=postgres")
		}
	default:
		return cfg, fmt.Errorf("SESSION_STORE must be one of: %s, %s", SessionStoreMemory, SessionStorePostgres)
	}

	if cfg.DirectoryAPIKeyVaultPath != "" && cfg.VaultAddr == "" {
		return cfg, errors.New("VAULT_ADDR is required when DIRECTORY_API_KEY_VAULT_PATH is set")
	}

	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
