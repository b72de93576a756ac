package github

import (
	"time"
)

// Owner is the account owning a repository
type Owner struct {
	Login   string `json:"login"`
	ID      int64  `json:"id"`
	HTMLURL string `json:"html_url,omitempty"`
}

// License is the license detected for a repository
type License struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Repository is a repository snapshot as returned by the search and repos endpoints.
// Values are never mutated locally.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     *string   `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Owner           Owner     `json:"owner"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	UpdatedAt       time.Time `json:"updated_at"`
	License         *License  `json:"license"`
	Topics          []string  `json:"topics,omitempty"`
}

// GetLanguage returns the primary language or an empty string
func (r *Repository) GetLanguage() string {
	if r == nil || r.Language == nil {
		return ""
	}
	return *r.Language
}

// GetDescription returns the description or an empty string
func (r *Repository) GetDescription() string {
	if r == nil || r.Description == nil {
		return ""
	}
	return *r.Description
}

// SearchResultPage is one page of /search/repositories results.
// A page is replaced, never merged, by the next page's result.
type SearchResultPage struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}

// RepoRef identifies a repository by owner and name
type RepoRef struct {
	Owner string
	Name  string
}

// String returns owner/name
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}
