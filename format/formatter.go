// Package format renders repositories and search results for the terminal.
package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/s0up4200/reposcout/github"
)

// MaxTopics is how many topics are listed before collapsing the rest into "+N"
const MaxTopics = 3

// ConsoleFormatter provides console output formatting for repositories
type ConsoleFormatter struct {
	now func() time.Time
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{now: time.Now}
}

// FormatResults formats one page of search results with a pagination footer
func (f *ConsoleFormatter) FormatResults(page *github.SearchResultPage, q github.SearchQuery) string {
	if page == nil || len(page.Items) == 0 {
		return "No repositories found. Try a different query."
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\nRepositories for %q (%s results):\n\n", q.Text, FormatNumber(page.TotalCount))

	for i, repo := range page.Items {
		isLast := i == len(page.Items)-1
		f.formatRow(&sb, repo, isLast)

		if !isLast {
			sb.WriteString("\u2502\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(FormatPagination(q, page.TotalCount))
	sb.WriteString("\n")

	if page.TotalCount > github.MaxResults {
		fmt.Fprintf(&sb, "Only the first %s results are available.\n", FormatNumber(github.MaxResults))
	}
	if page.IncompleteResults {
		sb.WriteString("The search timed out; results may be incomplete.\n")
	}

	return sb.String()
}

// FormatPagination formats the range, page and sort of a result page
func FormatPagination(q github.SearchQuery, totalCount int) string {
	total := min(max(totalCount, 0), github.MaxResults)
	if total == 0 {
		return "0 of 0"
	}

	start := (q.Page-1)*q.PerPage + 1
	end := min(q.Page*q.PerPage, total)

	return fmt.Sprintf("%d-%d of %s | Page %d of %d | Sorted by %s (%s) | %d per page",
		start, end, FormatNumber(total),
		q.Page, github.MaxPage(totalCount, q.PerPage),
		q.Sort, q.Order, q.PerPage)
}

// formatRow formats a single result entry
func (f *ConsoleFormatter) formatRow(sb *strings.Builder, repo github.Repository, isLast bool) {
	prefix := "\u251c"
	if isLast {
		prefix = "\u2570"
	}

	fmt.Fprintf(sb, "%s\u2500\u2500 %s ★ %s\n", prefix, repo.FullName, FormatNumber(repo.StargazersCount))

	indent := "\u2502   "
	if isLast {
		indent = "    "
	}

	var parts []string
	if lang := repo.GetLanguage(); lang != "" {
		parts = append(parts, lang)
	}
	parts = append(parts, fmt.Sprintf("Forks: %s", FormatNumber(repo.ForksCount)))
	if !repo.UpdatedAt.IsZero() {
		parts = append(parts, fmt.Sprintf("Updated: %s", FormatDate(repo.UpdatedAt)))
	}
	fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(parts, " | "))

	if desc := repo.GetDescription(); desc != "" {
		fmt.Fprintf(sb, "%s%s\n", indent, desc)
	}
}

// FormatRepository formats the detail panel of a repository
func (f *ConsoleFormatter) FormatRepository(repo *github.Repository) string {
	if repo == nil {
		return "Repository not found"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s ★ %s\n", repo.FullName, FormatNumber(repo.StargazersCount))

	var tags []string
	if lang := repo.GetLanguage(); lang != "" {
		tags = append(tags, lang)
	}
	tags = append(tags, TopicTags(repo.Topics)...)
	if len(tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(tags, ", "))
	}

	if desc := repo.GetDescription(); desc != "" {
		fmt.Fprintf(&sb, "%s\n", desc)
	}

	sb.WriteString(strings.Repeat("\u2500", 40))
	sb.WriteString("\n")

	if repo.License != nil && repo.License.Name != "" {
		fmt.Fprintf(&sb, "License: %s\n", repo.License.Name)
	}
	fmt.Fprintf(&sb, "Forks: %s\n", FormatNumber(repo.ForksCount))
	if !repo.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "Updated: %s (%s)\n", FormatDate(repo.UpdatedAt), f.FormatRelative(repo.UpdatedAt))
	}
	if repo.HTMLURL != "" {
		fmt.Fprintf(&sb, "URL: %s\n", repo.HTMLURL)
	}

	return sb.String()
}

// FormatRelative formats t relative to now, e.g. "3 days ago"
func (f *ConsoleFormatter) FormatRelative(t time.Time) string {
	return humanize.RelTime(t, f.now(), "ago", "from now")
}

// TopicTags returns the first MaxTopics topics followed by "+N" for the rest
func TopicTags(topics []string) []string {
	if len(topics) <= MaxTopics {
		return topics
	}
	tags := make([]string, 0, MaxTopics+1)
	tags = append(tags, topics[:MaxTopics]...)
	return append(tags, fmt.Sprintf("+%d", len(topics)-MaxTopics))
}

// FormatNumber formats n with thousands separators
func FormatNumber(n int) string {
	return humanize.Comma(int64(n))
}

// FormatDate formats t as dd.mm.yyyy
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatError renders an error for the user. Rate limit errors mention when
// the quota resets.
func FormatError(err error) string {
	var apiErr *github.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	if apiErr.IsRateLimit() {
		if rl := apiErr.Info.RateLimit; rl != nil && rl.Reset != nil {
			if secs, parseErr := strconv.ParseInt(*rl.Reset, 10, 64); parseErr == nil {
				return fmt.Sprintf("rate limit exceeded (resets at %s)", time.Unix(secs, 0).Format("15:04:05"))
			}
		}
		return "rate limit exceeded"
	}

	msg := fmt.Sprintf("request error: %d", apiErr.Status)
	if apiErr.Info.Message != "" && apiErr.Info.Message != apiErr.Message {
		msg += " (" + apiErr.Info.Message + ")"
	}
	return msg
}
