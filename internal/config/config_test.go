package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets every config-related variable so tests start clean.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "ENVIRONMENT", "LOG_LEVEL",
		"GCP_PROJECT", "STORE_ID",
		"CATALOG_URL", "CART_URL", "ORDER_URL",
		"AUTH_DOMAIN", "AUTH_CLIENT_ID", "AUTH_REDIRECT_URI", "AUTH_LOGOUT_URI",
		"TOKEN_DIR", "DEFAULT_STOCK", "REQUEST_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CATALOG_URL", "https://api.example.com/products")
	t.Setenv("CART_URL", "https://api.example.com/cart")
	t.Setenv("ORDER_URL", "https://api.example.com/orders")
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv("AUTH_DOMAIN", "https://auth.example.com")
	t.Setenv("AUTH_CLIENT_ID", "client-1")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Store.CatalogURL != "https://api.example.com/products" {
		t.Errorf("CatalogURL = %q", cfg.Store.CatalogURL)
	}
	if cfg.Store.ClientID != "client-1" {
		t.Errorf("ClientID = %q, want client-1", cfg.Store.ClientID)
	}
}

func TestLoadMissingServiceURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_URL", "https://api.example.com/products")
	// cart_url and order_url missing

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want missing URL error")
	}
}

func TestLoadAuthDomainWithoutClientID(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)
	t.Setenv("AUTH_DOMAIN", "https://auth.example.com")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want client_id requirement")
	}
}

func TestLoadProductionRequiresProject(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_ID", "store-1")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want GCP_PROJECT requirement")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	configJSON := `{
		"port": "9090",
		"log_level": "debug",
		"store": {
			"catalog_url": "https://api.example.com/products",
			"cart_url": "https://api.example.com/cart",
			"order_url": "https://api.example.com/orders",
			"default_stock": 5,
			"request_timeout_seconds": 30
		}
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(configJSON), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if got := cfg.EffectiveDefaultStock(); got != 5 {
		t.Errorf("EffectiveDefaultStock() = %d, want 5", got)
	}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", got)
	}
}

func TestLoadFromFileZeroDefaultStock(t *testing.T) {
	clearEnv(t)

	// Explicit zero means absent stock renders out of stock; it must
	// not fall back to the package default.
	configJSON := `{
		"store": {
			"catalog_url": "https://api.example.com/products",
			"cart_url": "https://api.example.com/cart",
			"order_url": "https://api.example.com/orders",
			"default_stock": 0
		}
	}`

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(configJSON), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.EffectiveDefaultStock(); got != 0 {
		t.Errorf("EffectiveDefaultStock() = %d, want 0", got)
	}
}

func TestLoadFromFileMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", "/nonexistent/config.json")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load() error = nil, want read error")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	setRequiredEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.EffectiveDefaultStock(); got != DefaultStock {
		t.Errorf("EffectiveDefaultStock() = %d, want %d", got, DefaultStock)
	}
	if got := cfg.RequestTimeout(); got != 15*time.Second {
		t.Errorf("RequestTimeout() = %v, want 15s", got)
	}
	if cfg.Store.TokenDir == "" {
		t.Error("TokenDir not defaulted")
	}
}
