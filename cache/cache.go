// Package cache provides a keyed request cache with in-flight deduplication.
//
// A Cache resolves a key either from a live entry or by running the fetch
// function, sharing one outstanding fill between all concurrent callers of
// the same key. Fills are retried a fixed number of times with a fixed
// interval before the error is surfaced. The empty key is the idle sentinel:
// it never triggers a fetch.
package cache

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/sync/singleflight"
)

// Defaults for a new Cache
const (
	DefaultTTL           = 30 * time.Second
	DefaultRetryCount    = 3
	DefaultRetryInterval = 2 * time.Second
	DefaultSize          = 256
)

// FetchFunc resolves a key to a value
type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

// State describes what a Snapshot holds
type State int

const (
	// StateIdle is reported for the empty key
	StateIdle State = iota
	// StateMissing means the key was never loaded or was evicted
	StateMissing
	// StateLoading means a fill is in flight
	StateLoading
	// StateReady means the last fill succeeded
	StateReady
	// StateFailed means the last fill failed; Data may still hold an older value
	StateFailed
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMissing:
		return "missing"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is the state of one key at a point in time
type Snapshot[T any] struct {
	Key       string
	State     State
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

// Idle reports whether the snapshot is for the empty key
func (s Snapshot[T]) Idle() bool {
	return s.State == StateIdle
}

// Loading reports whether a fill is in flight
func (s Snapshot[T]) Loading() bool {
	return s.State == StateLoading
}

// Stats counts cache activity
type Stats struct {
	Hits    int64
	Fills   int64
	Fetches int64
	Errors  int64
}

type entry[T any] struct {
	value     T
	hasValue  bool
	err       error
	fetchedAt time.Time
	stale     bool
	loading   bool
}

func (e *entry[T]) snapshot(key string) Snapshot[T] {
	s := Snapshot[T]{
		Key:       key,
		Data:      e.value,
		HasData:   e.hasValue,
		Err:       e.err,
		UpdatedAt: e.fetchedAt,
	}
	switch {
	case e.loading:
		s.State = StateLoading
	case e.err != nil:
		s.State = StateFailed
	case e.hasValue:
		s.State = StateReady
	default:
		s.State = StateMissing
	}
	return s
}

// Cache maps keys to fetched values with a freshness window
type Cache[T any] struct {
	fetch   FetchFunc[T]
	opts    options
	mu      sync.Mutex
	entries *LRU[*entry[T]]
	group   singleflight.Group
	offline bool

	hits    atomic.Int64
	fills   atomic.Int64
	fetches atomic.Int64
	failed  atomic.Int64
}

// New creates a new Cache around fetch
func New[T any](fetch FetchFunc[T], opts ...Option) *Cache[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[T]{
		fetch:   fetch,
		opts:    o,
		entries: NewLRU[*entry[T]](o.size),
	}
}

// Load resolves key. A fresh entry is returned as is; otherwise a fill runs,
// shared with any concurrent Load of the same key. If ctx ends first, Load
// returns the current snapshot with ctx's error while the fill carries on and
// populates the cache.
func (c *Cache[T]) Load(ctx context.Context, key string) Snapshot[T] {
	if key == "" {
		return Snapshot[T]{State: StateIdle}
	}

	c.mu.Lock()
	if e, ok := c.entries.Get(key); ok && c.isFresh(e) {
		snap := e.snapshot(key)
		c.mu.Unlock()
		c.hits.Add(1)
		c.opts.logger.Trace().Str("key", key).Msg("Cache hit")
		return snap
	}
	c.mu.Unlock()

	fillCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fill(fillCtx, key), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Snapshot[T])
	case <-ctx.Done():
		snap := c.Peek(key)
		snap.Err = ctx.Err()
		return snap
	}
}

// Peek returns the state of key without fetching
func (c *Cache[T]) Peek(key string) Snapshot[T] {
	if key == "" {
		return Snapshot[T]{State: StateIdle}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key)
	if !ok {
		return Snapshot[T]{Key: key, State: StateMissing}
	}
	return e.snapshot(key)
}

// Invalidate marks key stale so the next Load fetches again
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries.Peek(key); ok {
		e.stale = true
	}
}

// Reset drops every entry
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Clear()
	c.offline = false
}

// Len returns the number of entries
func (c *Cache[T]) Len() int {
	return c.entries.Size()
}

// Stats returns activity counters
func (c *Cache[T]) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Fills:   c.fills.Load(),
		Fetches: c.fetches.Load(),
		Errors:  c.failed.Load(),
	}
}

func (c *Cache[T]) isFresh(e *entry[T]) bool {
	return e.hasValue && e.err == nil && !e.stale && !e.loading &&
		c.opts.now().Sub(e.fetchedAt) < c.opts.ttl
}

// entryFor returns the entry for key, creating it if needed. c.mu must be held.
func (c *Cache[T]) entryFor(key string) *entry[T] {
	e, ok := c.entries.Get(key)
	if !ok {
		e = &entry[T]{}
		c.entries.Put(key, e)
	}
	return e
}

// fill fetches key with retries and stores the outcome
func (c *Cache[T]) fill(ctx context.Context, key string) Snapshot[T] {
	c.mu.Lock()
	e := c.entryFor(key)
	// A flight that finished between Load's check and this one already refreshed the entry
	if c.isFresh(e) {
		snap := e.snapshot(key)
		c.mu.Unlock()
		c.hits.Add(1)
		return snap
	}
	e.loading = true
	c.mu.Unlock()

	c.fills.Add(1)

	var value T
	err := retry.Do(
		func() error {
			c.fetches.Add(1)
			v, err := c.fetch(ctx, key)
			if err != nil {
				return err
			}
			value = v
			return nil
		},
		retry.Attempts(uint(c.opts.retryCount)+1),
		retry.Delay(c.opts.retryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.opts.logger.Debug().
				Err(err).
				Str("key", key).
				Uint("attempt", n+1).
				Msg("Fetch failed, retrying")
		}),
	)

	c.mu.Lock()
	defer c.mu.Unlock()

	e = c.entryFor(key)
	e.loading = false

	if err != nil {
		c.failed.Add(1)
		e.err = err
		if c.opts.isNetworkError(err) {
			c.offline = true
		}
		c.opts.logger.Debug().Err(err).Str("key", key).Msg("Fetch failed")
		return e.snapshot(key)
	}

	reconnected := c.offline
	c.offline = false

	e.value = value
	e.hasValue = true
	e.err = nil
	e.stale = false
	e.fetchedAt = c.opts.now()

	if reconnected && c.opts.revalidateOnReconnect {
		c.entries.Range(func(k string, other *entry[T]) {
			if k != key {
				other.stale = true
			}
		})
		c.opts.logger.Debug().Msg("Connection restored, revalidating cached entries")
	}

	return e.snapshot(key)
}

// IsNetworkError reports whether err is a transport failure rather than an
// HTTP level error or a cancellation
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
