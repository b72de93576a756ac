package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/reposcout/cache"
	"github.com/s0up4200/reposcout/github"
)

// EnvPrefix prefixes environment overrides, e.g. REPOSCOUT_CACHE_SEARCH_TTL
const EnvPrefix = "REPOSCOUT"

// Load loads the configuration from file, .env and environment. Without an
// explicit path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".reposcout"))
		}

		// Check /etc
		v.AddConfigPath("/etc/reposcout/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// GitHub defaults
	v.SetDefault("github.base_url", github.DefaultBaseURL)
	v.SetDefault("github.token", "")
	v.SetDefault("github.user_agent", github.DefaultUserAgent)
	v.SetDefault("github.timeout", github.DefaultTimeout)

	v.SetDefault("mode", string(github.ModeProduction))

	// Cache defaults
	v.SetDefault("cache.search_ttl", github.SearchTTL)
	v.SetDefault("cache.repository_ttl", github.RepositoryTTL)
	v.SetDefault("cache.retry_count", cache.DefaultRetryCount)
	v.SetDefault("cache.retry_interval", cache.DefaultRetryInterval)
	v.SetDefault("cache.size", cache.DefaultSize)
	v.SetDefault("cache.revalidate_on_reconnect", true)

	// Display defaults
	v.SetDefault("display.per_page", github.DefaultPerPage)
	v.SetDefault("display.sort", string(github.DefaultSort))
	v.SetDefault("display.order", string(github.DefaultOrder))

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.GitHub.BaseURL == "" {
		return fmt.Errorf("github.base_url is required")
	}
	if u, err := url.ParseRequestURI(cfg.GitHub.BaseURL); err != nil || u.Host == "" {
		return fmt.Errorf("invalid github.base_url: %s", cfg.GitHub.BaseURL)
	}
	if cfg.GitHub.Timeout <= 0 {
		return fmt.Errorf("github.timeout must be positive")
	}

	if cfg.Mode != string(github.ModeDevelopment) && cfg.Mode != string(github.ModeProduction) {
		return fmt.Errorf("invalid mode: %s (must be 'development' or 'production')", cfg.Mode)
	}

	if cfg.Cache.SearchTTL < 0 || cfg.Cache.RepositoryTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if cfg.Cache.RetryCount < 0 {
		return fmt.Errorf("cache.retry_count must not be negative")
	}
	if cfg.Cache.RetryInterval < 0 {
		return fmt.Errorf("cache.retry_interval must not be negative")
	}
	if cfg.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive")
	}

	if !slices.Contains(github.PerPageOptions, cfg.Display.PerPage) {
		return fmt.Errorf("invalid display.per_page: %d (must be one of %v)", cfg.Display.PerPage, github.PerPageOptions)
	}
	if !github.IsValidSortField(cfg.Display.Sort) {
		return fmt.Errorf("invalid display.sort: %s", cfg.Display.Sort)
	}
	if !github.IsValidSortDirection(cfg.Display.Order) {
		return fmt.Errorf("invalid display.order: %s", cfg.Display.Order)
	}

	for name, expression := range cfg.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter %q has an empty expression", name)
		}
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
