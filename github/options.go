package github

import (
	"strings"
	"time"

	"github.com/s0up4200/reposcout/cache"
)

// Freshness windows for the cached read operations
const (
	SearchTTL     = 30 * time.Second
	RepositoryTTL = time.Minute
	// DefaultConcurrency bounds parallel repository lookups
	DefaultConcurrency = 5
)

// Option configures a Client
type Option func(*Client)

// WithBaseURL sets the API root used to build request keys
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithSearchCache appends options for the search cache
func WithSearchCache(opts ...cache.Option) Option {
	return func(c *Client) {
		c.searchOpts = append(c.searchOpts, opts...)
	}
}

// WithRepositoryCache appends options for the repository cache
func WithRepositoryCache(opts ...cache.Option) Option {
	return func(c *Client) {
		c.repoOpts = append(c.repoOpts, opts...)
	}
}

// WithCacheOptions appends options shared by both caches
func WithCacheOptions(opts ...cache.Option) Option {
	return func(c *Client) {
		c.searchOpts = append(c.searchOpts, opts...)
		c.repoOpts = append(c.repoOpts, opts...)
	}
}

// WithConcurrency sets how many repository lookups run at once
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}
