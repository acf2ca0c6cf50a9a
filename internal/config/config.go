// Package config handles loading and validation of storefront
// configuration. Supports both development (env vars) and production
// (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// DefaultStock is the stock assumed for catalog records that omit the
// field. See catalog.NewClient.
const DefaultStock = 10

// Config holds all storefront configuration. Environment determines
// whether service settings load from env vars (development) or Secret
// Manager (production).
type Config struct {
	// Server settings (daemon only)
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	StoreID    string // Secret Manager secret name holding StoreConfig

	// Store-specific configuration (loaded from secrets in production)
	Store StoreConfig
}

// StoreConfig contains per-store settings: the remote service
// endpoints and the hosted sign-in pages. In production this is loaded
// from Secret Manager as JSON.
type StoreConfig struct {
	CatalogURL string `json:"catalog_url"`
	CartURL    string `json:"cart_url"`
	OrderURL   string `json:"order_url"`

	// Hosted sign-in pages (implicit grant).
	AuthDomain  string `json:"auth_domain"`
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
	LogoutURI   string `json:"logout_uri"`

	// DefaultStock overrides the assumed stock for catalog records
	// that omit the field. 0 treats absent stock as out of stock.
	DefaultStock *int `json:"default_stock,omitempty"`

	// RequestTimeoutSeconds bounds each remote call. Defaults to 15.
	RequestTimeoutSeconds int `json:"request_timeout_seconds,omitempty"`

	// TokenDir is where the identity token file lives. Defaults to the
	// user config dir.
	TokenDir string `json:"token_dir,omitempty"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set), then env vars / Secret Manager.
// Validates all required fields and returns an error if any are
// missing.
func Load(ctx context.Context) (*Config, error) {
	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		StoreID:     os.Getenv("STORE_ID"),
	}

	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if cfg.StoreID == "" {
			return nil, fmt.Errorf("STORE_ID required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple env vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port        string      `json:"port"`
		Environment string      `json:"environment"`
		LogLevel    string      `json:"log_level"`
		Store       StoreConfig `json:"store"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:        withDefault(fileConfig.Port, "8080"),
		Environment: withDefault(fileConfig.Environment, "development"),
		LogLevel:    withDefault(fileConfig.LogLevel, "info"),
		Store:       fileConfig.Store,
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromSecretManager fetches store config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{store_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.StoreID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Store); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads store config from individual environment
// variables. Used in development mode for local testing.
func (c *Config) loadFromEnv() error {
	c.Store = StoreConfig{
		CatalogURL:  os.Getenv("CATALOG_URL"),
		CartURL:     os.Getenv("CART_URL"),
		OrderURL:    os.Getenv("ORDER_URL"),
		AuthDomain:  os.Getenv("AUTH_DOMAIN"),
		ClientID:    os.Getenv("AUTH_CLIENT_ID"),
		RedirectURI: os.Getenv("AUTH_REDIRECT_URI"),
		LogoutURI:   os.Getenv("AUTH_LOGOUT_URI"),
		TokenDir:    os.Getenv("TOKEN_DIR"),
	}

	if v := os.Getenv("DEFAULT_STOCK"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing DEFAULT_STOCK: %w", err)
		}
		c.Store.DefaultStock = &n
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing REQUEST_TIMEOUT_SECONDS: %w", err)
		}
		c.Store.RequestTimeoutSeconds = n
	}

	return nil
}

// applyDefaults fills unset optional fields.
func (c *Config) applyDefaults() {
	if c.Store.RequestTimeoutSeconds <= 0 {
		c.Store.RequestTimeoutSeconds = 15
	}
	if c.Store.TokenDir == "" {
		c.Store.TokenDir = defaultTokenDir()
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	for name, u := range map[string]string{
		"catalog_url": c.Store.CatalogURL,
		"cart_url":    c.Store.CartURL,
		"order_url":   c.Store.OrderURL,
	} {
		if u == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.Parse(u); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	// Sign-in config is optional: without it, the storefront can still
	// browse and shop with a previously saved token, but login/logout
	// URLs are unavailable.
	if c.Store.AuthDomain != "" && c.Store.ClientID == "" {
		return fmt.Errorf("client_id is required when auth_domain is set")
	}

	if c.Store.DefaultStock != nil && *c.Store.DefaultStock < 0 {
		return fmt.Errorf("default_stock must not be negative")
	}

	return nil
}

// EffectiveDefaultStock returns the configured default stock, falling
// back to DefaultStock.
func (c *Config) EffectiveDefaultStock() int {
	if c.Store.DefaultStock != nil {
		return *c.Store.DefaultStock
	}
	return DefaultStock
}

// RequestTimeout returns the per-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Store.RequestTimeoutSeconds) * time.Second
}

// defaultTokenDir places the token file under the user config dir,
// falling back to the working directory when the home dir is unknown.
func defaultTokenDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(dir, "storefront")
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default
// if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
