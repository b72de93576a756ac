package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"`
	Mode    string        `mapstructure:"mode"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Display DisplayConfig `mapstructure:"display"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`

	// File is the config file that was read, empty when running on defaults
	File string `mapstructure:"-"`
}

// GitHubConfig holds GitHub API connection details
type GitHubConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Token     string        `mapstructure:"token"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig controls request caching and retries
type CacheConfig struct {
	SearchTTL             time.Duration `mapstructure:"search_ttl"`
	RepositoryTTL         time.Duration `mapstructure:"repository_ttl"`
	RetryCount            int           `mapstructure:"retry_count"`
	RetryInterval         time.Duration `mapstructure:"retry_interval"`
	Size                  int           `mapstructure:"size"`
	RevalidateOnReconnect bool          `mapstructure:"revalidate_on_reconnect"`
}

// DisplayConfig holds the default search presentation
type DisplayConfig struct {
	PerPage int    `mapstructure:"per_page"`
	Sort    string `mapstructure:"sort"`
	Order   string `mapstructure:"order"`
}

// FilterConfig contains named filter expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
