package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Cache
type Option func(*options)

type options struct {
	ttl                   time.Duration
	retryCount            int
	retryInterval         time.Duration
	size                  int
	revalidateOnReconnect bool
	isNetworkError        func(error) bool
	now                   func() time.Time
	logger                zerolog.Logger
}

func defaultOptions() options {
	return options{
		ttl:                   DefaultTTL,
		retryCount:            DefaultRetryCount,
		retryInterval:         DefaultRetryInterval,
		size:                  DefaultSize,
		revalidateOnReconnect: true,
		isNetworkError:        IsNetworkError,
		now:                   time.Now,
		logger:                zerolog.Nop(),
	}
}

// WithTTL sets the freshness window during which a loaded value is reused
// without a new fetch
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

// WithRetry sets how many times a failed fill is retried and the fixed delay
// between attempts
func WithRetry(count int, interval time.Duration) Option {
	return func(o *options) {
		if count >= 0 {
			o.retryCount = count
		}
		if interval >= 0 {
			o.retryInterval = interval
		}
	}
}

// WithSize bounds the number of entries
func WithSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithRevalidateOnReconnect controls whether entries go stale once a fill
// succeeds after a network failure
func WithRevalidateOnReconnect(enabled bool) Option {
	return func(o *options) {
		o.revalidateOnReconnect = enabled
	}
}

// WithNetworkErrorFunc overrides how transport failures are recognised
func WithNetworkErrorFunc(fn func(error) bool) Option {
	return func(o *options) {
		if fn != nil {
			o.isNetworkError = fn
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
