// Package secrets resolves credentials that may be kept outside the environment.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
)

// APIKeyField is the KV field that holds the directory API key.
const APIKeyField = "api_key"

type VaultOptions struct {
	Address   string
	Token     string
	Namespace string
	Mount     string
	Path      string
}

// DirectoryAPIKey returns fallback unless opts names a Vault KV v2 secret,
// in which case the api_key field of that secret is returned.
func DirectoryAPIKey(ctx context.Context, opts VaultOptions, fallback string) (string, error) {
	path := strings.Trim(strings.TrimSpace(opts.Path), "/")
	if path == "" {
		return fallback, nil
	}
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		return "", errors.New("vault address is required")
	}
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return "", errors.New("vault token is required")
	}
	mount := strings.Trim(strings.TrimSpace(opts.Mount), "/")
	if mount == "" {
		mount = "secret"
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address
	cfg.HttpClient = &http.Client{Timeout: 30 * time.Second}
	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return "", fmt.Errorf("vault client setup: %w", err)
	}
	client.SetToken(token)
	if ns := strings.TrimSpace(opts.Namespace); ns != "" {
		client.SetNamespace(ns)
	}

	secret, err := client.KVv2(mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault read %s/%s: %w", mount, path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s/%s has no data", mount, path)
	}
	value, _ := secret.Data[APIKeyField].(string)
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("vault secret %s/%s has no %s field", mount, path, APIKeyField)
	}
	return value, nil
}
