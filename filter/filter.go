package filter

import (
	"github.com/s0up4200/reposcout/github"
)

// DefaultCacheSize bounds the number of compiled programs kept by CompileFilter
const DefaultCacheSize = 64

var defaultCompiler = NewExprCompiler(WithCache(DefaultCacheSize))

// CompileFilter compiles an expression with the shared caching compiler.
// Expressions written with search qualifiers are converted first.
func CompileFilter(expression string) (Filter, error) {
	if IsQualifierFilter(expression) {
		converted, err := ConvertQualifierFilter(expression)
		if err != nil {
			return nil, err
		}
		expression = converted
	}
	return defaultCompiler.Compile(expression)
}

// Apply returns the repositories matching f in their original order
func Apply(f Filter, repos []github.Repository) []github.Repository {
	matches := make([]github.Repository, 0, len(repos))
	for _, repo := range repos {
		if f.Match(repo) {
			matches = append(matches, repo)
		}
	}
	return matches
}

// ApplyPage returns a copy of page keeping only matching items. TotalCount
// still reports the server side total.
func ApplyPage(f Filter, page *github.SearchResultPage) *github.SearchResultPage {
	if page == nil {
		return nil
	}
	filtered := *page
	filtered.Items = Apply(f, page.Items)
	return &filtered
}
