package github

import (
	"context"

	"github.com/s0up4200/reposcout/cache"
)

// API defines the cached read operations
type API interface {
	// Search returns one page of search results, re-sorted by the query's field and direction
	Search(ctx context.Context, q SearchQuery) cache.Snapshot[*SearchResultPage]

	// Repository returns a single repository
	Repository(ctx context.Context, owner, repo string) cache.Snapshot[*Repository]
}

var _ API = (*Client)(nil)
