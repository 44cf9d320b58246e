// Package config handles loading and validation of service configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"golang.org/x/mod/semver"

	"storefront-proxy/internal/loader"
	"storefront-proxy/internal/session"
	"storefront-proxy/internal/transport"
	"storefront-proxy/internal/vtex"
)

// APIVersion is the Store-Context version this build serves.
const APIVersion = "v1.0.0"

// Config holds all service configuration.
// Environment determines whether store secrets load from env vars (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"
	APIVersion  string // Served Store-Context version

	// GCP settings (required in production)
	GCPProject string
	StoreID    string

	// Store-specific configuration (loaded from secrets)
	Store StoreConfig

	// Batching
	SkuBatchSize        int
	SimulationBatchSize int
	BatchWait           time.Duration

	// Upstream
	UpstreamTimeout time.Duration
	TLSFingerprint  transport.Fingerprint

	// Catalog cache; disabled when RedisAddr is empty
	RedisAddr       string
	CatalogCacheTTL time.Duration
}

// StoreConfig contains store-specific settings.
// In production, this is loaded from Secret Manager as JSON.
// In development, loaded from individual env vars or CONFIG_FILE.
type StoreConfig struct {
	Account     string `json:"account"`
	Environment string `json:"environment"` // vtexcommercestable or vtexcommercebeta
	Channel     string `json:"channel"`     // Default sales channel
	Locale      string `json:"locale"`
	AppKey      string `json:"app_key,omitempty"`
	AppToken    string `json:"app_token,omitempty"`
}

// Defaults applied when a setting is absent.
const (
	defaultStoreEnvironment = "vtexcommercestable"
	defaultChannel          = "1"
	defaultLocale           = "en-US"
	defaultCatalogCacheTTL  = 10 * time.Minute
	defaultUpstreamTimeout  = 30 * time.Second
)

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		APIVersion:  envOrDefault("API_VERSION", APIVersion),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		StoreID:     os.Getenv("STORE_ID"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
	}
	if err := cfg.loadTuningFromEnv(); err != nil {
		return nil, err
	}

	var err error
	if cfg.Environment == "production" {
		if cfg.StoreID == "" {
			return nil, fmt.Errorf("STORE_ID environment variable required in production")
		}
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		cfg.loadFromEnv()
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
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port                string      `json:"port"`
		Environment         string      `json:"environment"`
		LogLevel            string      `json:"log_level"`
		APIVersion          string      `json:"api_version"`
		StoreID             string      `json:"store_id"`
		Store               StoreConfig `json:"store"`
		SkuBatchSize        int         `json:"sku_batch_size"`
		SimulationBatchSize int         `json:"simulation_batch_size"`
		BatchWait           string      `json:"batch_wait"`
		UpstreamTimeout     string      `json:"upstream_timeout"`
		TLSFingerprint      string      `json:"tls_fingerprint"`
		RedisAddr           string      `json:"redis_addr"`
		CatalogCacheTTL     string      `json:"catalog_cache_ttl"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:                withDefault(fileConfig.Port, "8080"),
		Environment:         withDefault(fileConfig.Environment, "development"),
		LogLevel:            withDefault(fileConfig.LogLevel, "info"),
		APIVersion:          withDefault(fileConfig.APIVersion, APIVersion),
		StoreID:             fileConfig.StoreID,
		Store:               fileConfig.Store,
		SkuBatchSize:        fileConfig.SkuBatchSize,
		SimulationBatchSize: fileConfig.SimulationBatchSize,
		TLSFingerprint:      transport.Fingerprint(fileConfig.TLSFingerprint),
		RedisAddr:           fileConfig.RedisAddr,
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"batch_wait", fileConfig.BatchWait, &cfg.BatchWait},
		{"upstream_timeout", fileConfig.UpstreamTimeout, &cfg.UpstreamTimeout},
		{"catalog_cache_ttl", fileConfig.CatalogCacheTTL, &cfg.CatalogCacheTTL},
	}
	for _, d := range durations {
		if err := parseDuration(d.name, d.value, d.dst); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
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

// loadFromEnv reads store config from individual environment variables.
// Used in development mode for local testing.
func (c *Config) loadFromEnv() {
	c.Store = StoreConfig{
		Account:     os.Getenv("STORE_ACCOUNT"),
		Environment: os.Getenv("STORE_ENVIRONMENT"),
		Channel:     os.Getenv("STORE_CHANNEL"),
		Locale:      os.Getenv("STORE_LOCALE"),
		AppKey:      os.Getenv("STORE_APP_KEY"),
		AppToken:    os.Getenv("STORE_APP_TOKEN"),
	}
}

// loadTuningFromEnv reads batching, upstream and cache settings.
func (c *Config) loadTuningFromEnv() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"SKU_BATCH_SIZE", &c.SkuBatchSize},
		{"SIMULATION_BATCH_SIZE", &c.SimulationBatchSize},
	}
	for _, i := range ints {
		if v := os.Getenv(i.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", i.name, err)
			}
			*i.dst = n
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"BATCH_WAIT", &c.BatchWait},
		{"UPSTREAM_TIMEOUT", &c.UpstreamTimeout},
		{"CATALOG_CACHE_TTL", &c.CatalogCacheTTL},
	}
	for _, d := range durations {
		if err := parseDuration(d.name, os.Getenv(d.name), d.dst); err != nil {
			return err
		}
	}

	c.TLSFingerprint = transport.Fingerprint(os.Getenv("TLS_FINGERPRINT"))
	return nil
}

func parseDuration(name, value string, dst *time.Duration) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	*dst = d
	return nil
}

func (c *Config) applyDefaults() {
	c.Store.Environment = withDefault(c.Store.Environment, defaultStoreEnvironment)
	c.Store.Channel = withDefault(c.Store.Channel, defaultChannel)
	c.Store.Locale = withDefault(c.Store.Locale, defaultLocale)

	if c.SkuBatchSize == 0 {
		c.SkuBatchSize = loader.SkuBatchSize
	}
	if c.SimulationBatchSize == 0 {
		c.SimulationBatchSize = loader.SimulationBatchSize
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = defaultUpstreamTimeout
	}
	if c.CatalogCacheTTL == 0 {
		c.CatalogCacheTTL = defaultCatalogCacheTTL
	}
	if c.TLSFingerprint == "" {
		c.TLSFingerprint = transport.FingerprintChrome
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Store.Account == "" {
		return fmt.Errorf("store account is required")
	}
	switch c.Store.Environment {
	case "vtexcommercestable", "vtexcommercebeta":
	default:
		return fmt.Errorf("invalid store environment %q: want vtexcommercestable or vtexcommercebeta", c.Store.Environment)
	}
	if (c.Store.AppKey == "") != (c.Store.AppToken == "") {
		return fmt.Errorf("app_key and app_token must be set together")
	}

	if c.SkuBatchSize < 1 || c.SkuBatchSize > loader.SkuBatchSize {
		return fmt.Errorf("sku batch size must be between 1 and %d, got %d", loader.SkuBatchSize, c.SkuBatchSize)
	}
	if c.SimulationBatchSize < 1 || c.SimulationBatchSize > loader.SimulationBatchSize {
		return fmt.Errorf("simulation batch size must be between 1 and %d, got %d", loader.SimulationBatchSize, c.SimulationBatchSize)
	}
	if c.BatchWait < 0 {
		return fmt.Errorf("batch wait must not be negative")
	}

	switch c.TLSFingerprint {
	case transport.FingerprintChrome, transport.FingerprintGo:
	default:
		return fmt.Errorf("invalid TLS fingerprint %q: want chrome or go", c.TLSFingerprint)
	}

	if !semver.IsValid("v" + strings.TrimPrefix(c.APIVersion, "v")) {
		return fmt.Errorf("invalid API version %q", c.APIVersion)
	}

	return nil
}

// Session returns the storefront context applied to requests without a
// Store-Context header.
func (c *Config) Session() session.Session {
	return session.Session{
		Channel: c.Store.Channel,
		Locale:  c.Store.Locale,
		Version: c.APIVersion,
	}
}

// VTEX builds the upstream client settings.
func (c *Config) VTEX(rt http.RoundTripper, logger *slog.Logger) vtex.Config {
	return vtex.Config{
		Account:     c.Store.Account,
		Environment: c.Store.Environment,
		Channel:     c.Store.Channel,
		AppKey:      c.Store.AppKey,
		AppToken:    c.Store.AppToken,
		Timeout:     c.UpstreamTimeout,
		Transport:   rt,
		Logger:      logger,
	}
}

// Loaders builds the per-request batching settings.
func (c *Config) Loaders() loader.Config {
	return loader.Config{
		SkuBatchSize:        c.SkuBatchSize,
		SimulationBatchSize: c.SimulationBatchSize,
		Wait:                c.BatchWait,
	}
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
