package github

import (
	"net/url"
	"strconv"
	"strings"
)

// SearchKey maps a query to its canonical request URL. The parameter order is
// fixed (q, sort, order, page, per_page) so equal queries always yield equal keys.
// It returns "" when the text is blank, meaning no request should be issued.
func SearchKey(baseURL string, q SearchQuery) string {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return ""
	}

	q = q.normalized()

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(baseURL, "/"))
	sb.WriteString("/search/repositories?q=")
	sb.WriteString(url.QueryEscape(text))
	sb.WriteString("&sort=")
	sb.WriteString(url.QueryEscape(string(q.Sort)))
	sb.WriteString("&order=")
	sb.WriteString(url.QueryEscape(string(q.Order)))
	sb.WriteString("&page=")
	sb.WriteString(strconv.Itoa(q.Page))
	sb.WriteString("&per_page=")
	sb.WriteString(strconv.Itoa(q.PerPage))

	return sb.String()
}

// RepositoryKey maps owner and repo to the canonical repository URL.
// Callers must not pass an empty owner or repo.
func RepositoryKey(baseURL, owner, repo string) string {
	return strings.TrimRight(baseURL, "/") + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
}
