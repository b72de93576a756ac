package github

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/reposcout/cache"
)

// Client provides cached, read-only access to the search and repos endpoints
type Client struct {
	fetcher     *Fetcher
	baseURL     string
	concurrency int
	searchOpts  []cache.Option
	repoOpts    []cache.Option
	search      *cache.Cache[*SearchResultPage]
	repos       *cache.Cache[*Repository]
	logger      zerolog.Logger
}

// NewClient creates a new client on top of fetcher
func NewClient(fetcher *Fetcher, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		fetcher:     fetcher,
		baseURL:     DefaultBaseURL,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	searchOpts := append([]cache.Option{
		cache.WithTTL(SearchTTL),
		cache.WithLogger(logger.With().Str("cache", "search").Logger()),
	}, c.searchOpts...)
	repoOpts := append([]cache.Option{
		cache.WithTTL(RepositoryTTL),
		cache.WithLogger(logger.With().Str("cache", "repository").Logger()),
	}, c.repoOpts...)

	c.search = cache.New(func(ctx context.Context, key string) (*SearchResultPage, error) {
		return Request[*SearchResultPage](ctx, c.fetcher, key)
	}, searchOpts...)
	c.repos = cache.New(func(ctx context.Context, key string) (*Repository, error) {
		return Request[*Repository](ctx, c.fetcher, key)
	}, repoOpts...)

	return c
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchKey returns the cache key for q
func (c *Client) SearchKey(q SearchQuery) string {
	return SearchKey(c.baseURL, q)
}

// Search resolves q through the search cache. Blank text yields an idle
// snapshot without any request. The returned page is a copy whose items are
// re-sorted; the cached page is left untouched.
func (c *Client) Search(ctx context.Context, q SearchQuery) cache.Snapshot[*SearchResultPage] {
	q = q.normalized()
	key := c.SearchKey(q)
	if key == "" {
		return cache.Snapshot[*SearchResultPage]{State: cache.StateIdle}
	}

	if err := q.Validate(); err != nil {
		return cache.Snapshot[*SearchResultPage]{Key: key, State: cache.StateFailed, Err: err}
	}

	snap := c.search.Load(ctx, key)
	if snap.Data != nil {
		page := *snap.Data
		page.Items = Reorder(snap.Data.Items, q.Sort, q.Order)
		snap.Data = &page
	}

	return snap
}

// Repository resolves owner/repo through the repository cache. An empty
// owner or repo yields an idle snapshot.
func (c *Client) Repository(ctx context.Context, owner, repo string) cache.Snapshot[*Repository] {
	if owner == "" || repo == "" {
		return cache.Snapshot[*Repository]{State: cache.StateIdle}
	}
	return c.repos.Load(ctx, RepositoryKey(c.baseURL, owner, repo))
}

// Repositories looks up several repositories concurrently. Results are in
// the order of refs.
func (c *Client) Repositories(ctx context.Context, refs []RepoRef) []cache.Snapshot[*Repository] {
	results := make([]cache.Snapshot[*Repository], len(refs))
	if len(refs) == 0 {
		return results
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, ref := range refs {
		g.Go(func() error {
			results[i] = c.Repository(ctx, ref.Owner, ref.Name)
			if err := results[i].Err; err != nil {
				c.logger.Warn().
					Err(err).
					Str("repository", ref.String()).
					Msg("Failed to get repository")
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// SearchRepositories performs an uncached search. Blank text is rejected
// with a *ValidationError before any request.
func (c *Client) SearchRepositories(ctx context.Context, q SearchQuery) (*SearchResultPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return Request[*SearchResultPage](ctx, c.fetcher, c.SearchKey(q))
}

// GetRepository fetches a repository without the cache
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(repo) == "" {
		return nil, &ValidationError{Field: "repository", Reason: "owner and name are required"}
	}
	return Request[*Repository](ctx, c.fetcher, RepositoryKey(c.baseURL, owner, repo))
}

// InvalidateSearch forces the next Search for q to fetch again
func (c *Client) InvalidateSearch(q SearchQuery) {
	c.search.Invalidate(c.SearchKey(q))
}

// CacheStats returns the search and repository cache counters
func (c *Client) CacheStats() (search, repository cache.Stats) {
	return c.search.Stats(), c.repos.Stats()
}
