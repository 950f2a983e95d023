package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR",
		"METRICS_ADDR",
		"DIRECTORY_BASE_URL",
		"DIRECTORY_API_KEY",
		"DIRECTORY_API_KEY_VAULT_PATH",
		"DIRECTORY_TIMEOUT",
		"VAULT_ADDR",
		"VAULT_KV_MOUNT",
		"SESSION_STORE",
		"DATABASE_URL",
		"SESSION_LIFETIME",
		"AUTH_COOKIE_SECURE",
		"OTEL_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != defaultHTTPAddr {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, defaultHTTPAddr)
	}
	if cfg.DirectoryBaseURL != defaultDirectoryBaseURL {
		t.Fatalf("DirectoryBaseURL = %q, want %q", cfg.DirectoryBaseURL, defaultDirectoryBaseURL)
	}
	if cfg.DirectoryAPIKey != defaultDirectoryAPIKey {
		t.Fatalf("DirectoryAPIKey = %q, want %q", cfg.DirectoryAPIKey, defaultDirectoryAPIKey)
	}
	if cfg.SessionStore != SessionStoreMemory {
		t.Fatalf("SessionStore = %q, want %q", cfg.SessionStore, SessionStoreMemory)
	}
	if cfg.SessionLifetime != defaultSessionLifetime {
		t.Fatalf("SessionLifetime = %s, want %s", cfg.SessionLifetime, defaultSessionLifetime)
	}
	if cfg.DirectoryTimeout != 0 {
		t.Fatalf("DirectoryTimeout = %s, want 0", cfg.DirectoryTimeout)
	}
	if cfg.VaultKVMount != defaultVaultKVMount {
		t.Fatalf("VaultKVMount = %q, want %q", cfg.VaultKVMount, defaultVaultKVMount)
	}
}

func TestLoad_ParsesDurationsAndTrimsBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DIRECTORY_BASE_URL", "https://directory.example.test/")
	t.Setenv("DIRECTORY_TIMEOUT", "15s")
	t.Setenv("SESSION_LIFETIME", "2h")
	t.Setenv("AUTH_COOKIE_SECURE", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DirectoryBaseURL != "https://directory.example.test" {
		t.Fatalf("DirectoryBaseURL = %q", cfg.DirectoryBaseURL)
	}
	if cfg.DirectoryTimeout != 15*time.Second {
		t.Fatalf("DirectoryTimeout = %s, want 15s", cfg.DirectoryTimeout)
	}
	if cfg.SessionLifetime != 2*time.Hour {
		t.Fatalf("SessionLifetime = %s, want 2h", cfg.SessionLifetime)
	}
	if !cfg.AuthCookieSecure {
		t.Fatal("AuthCookieSecure = false, want true")
	}
}

func TestLoad_InvalidDurationsFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_LIFETIME", "forever")
	t.Setenv("DIRECTORY_TIMEOUT", "-5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionLifetime != defaultSessionLifetime {
		t.Fatalf("SessionLifetime = %s, want default", cfg.SessionLifetime)
	}
	if cfg.DirectoryTimeout != 0 {
		t.Fatalf("DirectoryTimeout = %s, want 0", cfg.DirectoryTimeout)
	}
}

func TestLoad_SessionStoreValidation(t *testing.T) {
	tests := []struct {
		name        string
		store       string
		databaseURL string
		wantErr     bool
	}{
		{name: "memory", store: "memory"},
		{name: "memory upper case", store: "MEMORY"},
		{name: "postgres with url", store: "postgres", databaseURL: "postgres://localhost/userdesk"},
		{name: "postgres without url", store: "postgres", wantErr: true},
		{name: "unknown", store: "redis", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SESSION_STORE", tc.store)
			t.Setenv("DATABASE_URL", tc.databaseURL)

			_, err := Load()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Load() error = %v", err)
			}
		})
	}
}

func TestLoad_VaultPathRequiresAddress(t *testing.T) {
	clearEnv(t)
	t.Setenv("DIRECTORY_API_KEY_VAULT_PATH", "userdesk/directory")

	if _, err := Load(); err == nil {
		t.Fatal("expected VAULT_ADDR error")
	}

	t.Setenv("VAULT_ADDR", "https://vault.example.test")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadForMigrations_RequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	if _, err := LoadForMigrations(); err == nil {
		t.Fatal("expected DATABASE_URL error")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/userdesk")
	cfg, err := LoadForMigrations()
	if err != nil {
		t.Fatalf("LoadForMigrations() error = %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/userdesk" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}
