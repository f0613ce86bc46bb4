package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/pricing"
	"github.com/five82/storefront/internal/recent"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config is the resolved storefront configuration.
type Config struct {
	Catalog        CatalogConfig
	Storage        StorageConfig
	Pricing        pricing.Config
	RecentlyViewed int
	Log            LogConfig
}

// CatalogConfig selects the product source. File wins over URL.
type CatalogConfig struct {
	URL          string
	File         string
	PollInterval time.Duration
}

// StorageConfig selects where shopper state is persisted.
type StorageConfig struct {
	Backend string
	Dir     string
	DSN     string
}

// LogConfig controls the diagnostic log. An empty File disables logging.
type LogConfig struct {
	Level  string
	File   string
	Format string
}

const (
	defaultConfigPath   = "~/.config/storefront/config.toml"
	defaultStateDir     = "~/.local/share/storefront/state"
	defaultLogFile      = "~/.local/share/storefront/storefront.log"
	defaultCatalogURL   = "127.0.0.1:8080"
	defaultPollInterval = 30 * time.Second
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

type rawConfig struct {
	Catalog struct {
		URL         string `toml:"url"`
		File        string `toml:"file"`
		PollSeconds int    `toml:"poll_seconds"`
	} `toml:"catalog"`
	Storage struct {
		Backend string `toml:"backend"`
		Dir     string `toml:"dir"`
		DSN     string `toml:"dsn"`
	} `toml:"storage"`
	Pricing struct {
		FreeShippingThreshold *float64 `toml:"free_shipping_threshold"`
		FlatShippingFee       *float64 `toml:"flat_shipping_fee"`
		TaxRate               *float64 `toml:"tax_rate"`
	} `toml:"pricing"`
	History struct {
		RecentlyViewed int `toml:"recently_viewed"`
	} `toml:"history"`
	Log struct {
		Level  string `toml:"level"`
		File   string `toml:"file"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{URL: defaultCatalogURL, PollInterval: defaultPollInterval},
		Storage: StorageConfig{Backend: BackendFile, Dir: mustExpand(defaultStateDir)},
		Pricing: pricing.DefaultConfig(),
		Log: LogConfig{
			Level:  defaultLogLevel,
			File:   mustExpand(defaultLogFile),
			Format: defaultLogFormat,
		},
		RecentlyViewed: recent.DefaultLimit,
	}
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file is missing, then applies STOREFRONT_* environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, errors.Wrap(err, "open config")
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, errors.Wrap(err, "parse config")
		}
		cfg.apply(raw)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) {
	if v := strings.TrimSpace(raw.Catalog.URL); v != "" {
		c.Catalog.URL = v
	}
	if v := strings.TrimSpace(raw.Catalog.File); v != "" {
		c.Catalog.File = mustExpand(v)
	}
	if raw.Catalog.PollSeconds != 0 {
		c.Catalog.PollInterval = time.Duration(raw.Catalog.PollSeconds) * time.Second
	}

	if v := strings.TrimSpace(raw.Storage.Backend); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Storage.Dir); v != "" {
		c.Storage.Dir = mustExpand(v)
	}
	c.Storage.DSN = strings.TrimSpace(raw.Storage.DSN)

	if v := raw.Pricing.FreeShippingThreshold; v != nil {
		c.Pricing.FreeShippingThreshold = decimal.NewFromFloat(*v)
	}
	if v := raw.Pricing.FlatShippingFee; v != nil {
		c.Pricing.FlatShippingFee = decimal.NewFromFloat(*v)
	}
	if v := raw.Pricing.TaxRate; v != nil {
		c.Pricing.TaxRate = decimal.NewFromFloat(*v)
	}

	if raw.History.RecentlyViewed != 0 {
		c.RecentlyViewed = raw.History.RecentlyViewed
	}

	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Log.File); v != "" {
		c.Log.File = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Format); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
}

func (c *Config) applyEnv() error {
	if v, ok := lookupEnv("STOREFRONT_CATALOG_URL"); ok {
		c.Catalog.URL = v
	}
	if v, ok := lookupEnv("STOREFRONT_CATALOG_FILE"); ok {
		c.Catalog.File = mustExpand(v)
	}
	if v, ok := lookupEnv("STOREFRONT_POLL_SECONDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "parse STOREFRONT_POLL_SECONDS")
		}
		c.Catalog.PollInterval = time.Duration(n) * time.Second
	}
	if v, ok := lookupEnv("STOREFRONT_STORAGE_BACKEND"); ok {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v, ok := lookupEnv("STOREFRONT_STORAGE_DIR"); ok {
		c.Storage.Dir = mustExpand(v)
	}
	if v, ok := lookupEnv("STOREFRONT_STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := lookupEnv("STOREFRONT_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookupEnv("STOREFRONT_LOG_FILE"); ok {
		c.Log.File = mustExpand(v)
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres backend")
		}
	default:
		return errors.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Catalog.PollInterval < time.Second {
		return errors.Errorf("catalog poll interval %s must be at least 1s", c.Catalog.PollInterval)
	}
	if err := c.Pricing.Validate(); err != nil {
		return errors.Wrap(err, "pricing")
	}
	if err := recent.ValidateLimit(c.RecentlyViewed); err != nil {
		return errors.Wrap(err, "history")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment without replacing variables that are already set. An empty path
// tries ./.env and ignores its absence.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := godotenv.Load(resolved); err != nil {
		return errors.Wrapf(err, "load env file %s", resolved)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
