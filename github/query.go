package github

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// SortField is a sort option supported by the search endpoint
type SortField string

const (
	SortStars   SortField = "stars"
	SortForks   SortField = "forks"
	SortUpdated SortField = "updated"
)

// SortDirection is the search result order
type SortDirection string

const (
	OrderAsc  SortDirection = "asc"
	OrderDesc SortDirection = "desc"
)

const (
	// MaxResults is the ceiling the search API puts on addressable results
	MaxResults = 1000
	// DefaultPerPage is the page size used when none is given
	DefaultPerPage = 10
	// DefaultSort and DefaultOrder are used when none is given
	DefaultSort  = SortStars
	DefaultOrder = OrderDesc
)

// PerPageOptions lists the allowed page sizes
var PerPageOptions = []int{10, 25, 50}

// SearchQuery is an immutable search request description
type SearchQuery struct {
	Text    string
	Sort    SortField
	Order   SortDirection
	Page    int
	PerPage int
}

// NewSearchQuery returns a query for text with default sort and paging
func NewSearchQuery(text string) SearchQuery {
	return SearchQuery{
		Text:    text,
		Sort:    DefaultSort,
		Order:   DefaultOrder,
		Page:    1,
		PerPage: DefaultPerPage,
	}
}

// normalized fills zero values with defaults
func (q SearchQuery) normalized() SearchQuery {
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	if q.Order == "" {
		q.Order = DefaultOrder
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	return q
}

// Validate checks the query invariants
func (q SearchQuery) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Field: "query", Reason: "search text is required"}
	}
	n := q.normalized()
	if !IsValidSortField(string(n.Sort)) {
		return &ValidationError{Field: "sort", Reason: fmt.Sprintf("unsupported sort field %q (must be stars, forks or updated)", n.Sort)}
	}
	if !IsValidSortDirection(string(n.Order)) {
		return &ValidationError{Field: "order", Reason: fmt.Sprintf("unsupported direction %q (must be asc or desc)", n.Order)}
	}
	if !slices.Contains(PerPageOptions, n.PerPage) {
		return &ValidationError{Field: "per_page", Reason: fmt.Sprintf("%d is not one of %v", n.PerPage, PerPageOptions)}
	}
	return nil
}

// WithText returns a query for new text, back on the first page
func (q SearchQuery) WithText(text string) SearchQuery {
	q = q.normalized()
	q.Text = text
	q.Page = 1
	return q
}

// WithPage returns the query moved to page, clamped to [1, MaxPage(totalCount)].
// A negative totalCount means the total is unknown and only the lower bound applies.
func (q SearchQuery) WithPage(page, totalCount int) SearchQuery {
	q = q.normalized()
	if totalCount >= 0 {
		page = min(page, MaxPage(totalCount, q.PerPage))
	}
	q.Page = max(page, 1)
	return q
}

// WithPerPage returns the query with a new page size, back on the first page.
// Sizes outside PerPageOptions are ignored.
func (q SearchQuery) WithPerPage(perPage int) SearchQuery {
	q = q.normalized()
	if !slices.Contains(PerPageOptions, perPage) {
		return q
	}
	q.PerPage = perPage
	q.Page = 1
	return q
}

// ToggleSort sorts by field: selecting the current field while descending flips
// to ascending, anything else sorts descending. The page resets to 1.
func (q SearchQuery) ToggleSort(field SortField) SearchQuery {
	q = q.normalized()
	if q.Sort == field && q.Order == OrderDesc {
		q.Order = OrderAsc
	} else {
		q.Order = OrderDesc
	}
	q.Sort = field
	q.Page = 1
	return q
}

// Values encodes the query as URL parameters
func (q SearchQuery) Values() url.Values {
	q = q.normalized()
	return url.Values{
		"q":        {strings.TrimSpace(q.Text)},
		"sort":     {string(q.Sort)},
		"order":    {string(q.Order)},
		"page":     {strconv.Itoa(q.Page)},
		"per_page": {strconv.Itoa(q.PerPage)},
	}
}

// ParseSearchQuery reads a query from URL parameters, falling back to defaults
// for anything missing or invalid
func ParseSearchQuery(values url.Values) SearchQuery {
	q := NewSearchQuery(values.Get("q"))

	if sort := values.Get("sort"); IsValidSortField(sort) {
		q.Sort = SortField(sort)
	}
	if order := values.Get("order"); IsValidSortDirection(order) {
		q.Order = SortDirection(order)
	}

	q.Page = ParsePositiveInt(values.Get("page"), 1)

	perPage := ParsePositiveInt(values.Get("per_page"), DefaultPerPage)
	if slices.Contains(PerPageOptions, perPage) {
		q.PerPage = perPage
	}

	return q
}

// IsValidSortField checks if value is a supported sort field
func IsValidSortField(value string) bool {
	switch SortField(value) {
	case SortStars, SortForks, SortUpdated:
		return true
	}
	return false
}

// IsValidSortDirection checks if value is asc or desc
func IsValidSortDirection(value string) bool {
	return value == string(OrderAsc) || value == string(OrderDesc)
}

// ParsePositiveInt parses value, returning fallback when it is empty or not a
// number and clamping anything below 1 to 1
func ParsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return max(1, n)
}

// MaxPage returns the last reachable page for totalCount results, honouring
// the MaxResults ceiling
func MaxPage(totalCount, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := min(max(totalCount, 0), MaxResults)
	return (total + perPage - 1) / perPage
}

// ParseRepoRef parses an "owner/name" string
func ParseRepoRef(s string) (RepoRef, error) {
	owner, name, ok := strings.Cut(strings.Trim(strings.TrimSpace(s), "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, &ValidationError{Field: "repository", Reason: fmt.Sprintf("%q is not in owner/name form", s)}
	}
	return RepoRef{Owner: owner, Name: name}, nil
}
