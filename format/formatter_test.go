package format

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/reposcout/github"
)

func strPtr(s string) *string { return &s }

func testFormatter(now time.Time) *ConsoleFormatter {
	f := NewConsoleFormatter()
	f.now = func() time.Time { return now }
	return f
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{38123, "38,123"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05.03.2024", FormatDate(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)))
}

func TestTopicTags(t *testing.T) {
	tests := []struct {
		name   string
		topics []string
		want   []string
	}{
		{name: "none", topics: nil, want: nil},
		{name: "three", topics: []string{"a", "b", "c"}, want: []string{"a", "b", "c"}},
		{name: "five", topics: []string{"a", "b", "c", "d", "e"}, want: []string{"a", "b", "c", "+2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopicTags(tt.topics))
		})
	}
}

func TestFormatPagination(t *testing.T) {
	tests := []struct {
		name  string
		q     github.SearchQuery
		total int
		want  string
	}{
		{
			name:  "first page capped",
			q:     github.NewSearchQuery("react"),
			total: 5000,
			want:  "1-10 of 1,000 | Page 1 of 100 | Sorted by stars (desc) | 10 per page",
		},
		{
			name:  "last partial page",
			q:     github.NewSearchQuery("tiny").WithPerPage(25).WithPage(2, 40),
			total: 40,
			want:  "26-40 of 40 | Page 2 of 2 | Sorted by stars (desc) | 25 per page",
		},
		{
			name:  "empty",
			q:     github.NewSearchQuery("nothing"),
			total: 0,
			want:  "0 of 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPagination(tt.q, tt.total))
		})
	}
}

func TestFormatResults(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := testFormatter(now)

	page := &github.SearchResultPage{
		TotalCount: 5000,
		Items: []github.Repository{
			{
				FullName:        "facebook/react",
				Language:        strPtr("JavaScript"),
				Description:     strPtr("The library for web and native user interfaces."),
				StargazersCount: 225000,
				ForksCount:      46000,
				UpdatedAt:       time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC),
			},
			{
				FullName:        "someone/react-thing",
				StargazersCount: 12,
			},
		},
	}

	out := f.FormatResults(page, github.NewSearchQuery("react"))

	assert.Contains(t, out, `Repositories for "react" (5,000 results)`)
	assert.Contains(t, out, "├── facebook/react ★ 225,000")
	assert.Contains(t, out, "JavaScript | Forks: 46,000 | Updated: 30.05.2024")
	assert.Contains(t, out, "The library for web and native user interfaces.")
	assert.Contains(t, out, "╰── someone/react-thing ★ 12")
	assert.Contains(t, out, "1-10 of 1,000 | Page 1 of 100")
	assert.Contains(t, out, "Only the first 1,000 results are available.")
	assert.NotContains(t, out, "incomplete")
}

func TestFormatResultsEmpty(t *testing.T) {
	f := NewConsoleFormatter()

	assert.Equal(t, "No repositories found. Try a different query.", f.FormatResults(nil, github.NewSearchQuery("x")))
	assert.Equal(t, "No repositories found. Try a different query.",
		f.FormatResults(&github.SearchResultPage{}, github.NewSearchQuery("x")))
}

func TestFormatRepository(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := testFormatter(now)

	repo := &github.Repository{
		FullName:        "spf13/cobra",
		HTMLURL:         "https://github.com/spf13/cobra",
		Language:        strPtr("Go"),
		StargazersCount: 38000,
		ForksCount:      2800,
		UpdatedAt:       now.AddDate(0, 0, -3),
		License:         &github.License{Key: "apache-2.0", Name: "Apache License 2.0"},
		Topics:          []string{"cli", "cli-app", "golang", "posix", "subcommands"},
	}

	out := f.FormatRepository(repo)

	assert.Contains(t, out, "spf13/cobra ★ 38,000")
	assert.Contains(t, out, "Tags: Go, cli, cli-app, golang, +2")
	assert.Contains(t, out, "License: Apache License 2.0")
	assert.Contains(t, out, "Forks: 2,800")
	assert.Contains(t, out, "Updated: 29.05.2024 (3 days ago)")
	assert.Contains(t, out, "URL: https://github.com/spf13/cobra")
	assert.NotContains(t, out, "posix")

	assert.Equal(t, "Repository not found", f.FormatRepository(nil))
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := testFormatter(now)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "same instant", t: now, want: "now"},
		{name: "hours", t: now.Add(-2 * time.Hour), want: "2 hours ago"},
		{name: "days", t: now.AddDate(0, 0, -3), want: "3 days ago"},
		{name: "future", t: now.AddDate(0, 0, 3), want: "3 days from now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatRelative(tt.t))
		})
	}
}

func TestFormatRepositoryWithoutOptionalFields(t *testing.T) {
	out := NewConsoleFormatter().FormatRepository(&github.Repository{FullName: "a/b"})

	assert.True(t, strings.HasPrefix(out, "\na/b ★ 0\n"))
	assert.NotContains(t, out, "Tags:")
	assert.NotContains(t, out, "License:")
	assert.NotContains(t, out, "Updated:")
}

func TestFormatError(t *testing.T) {
	reset := "1640995200"
	rateLimited := github.NewAPIError(github.KindRateLimit, github.MessageRateLimit, 403, github.ErrorInfo{
		RateLimit: &github.RateLimitInfo{Reset: &reset},
	})

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "rate limit with reset",
			err:  rateLimited,
			want: fmt.Sprintf("rate limit exceeded (resets at %s)", time.Unix(1640995200, 0).Format("15:04:05")),
		},
		{
			name: "rate limit without headers",
			err:  github.NewAPIError(github.KindRateLimit, github.MessageRateLimit, 403, github.ErrorInfo{}),
			want: "rate limit exceeded",
		},
		{
			name: "wrapped not found",
			err: fmt.Errorf("lookup: %w", github.NewAPIError(github.KindRequestFailed, github.RequestFailedMessage(404), 404,
				github.ErrorInfo{Message: "Not Found"})),
			want: "request error: 404 (Not Found)",
		},
		{
			name: "request failed without body",
			err:  github.NewAPIError(github.KindRequestFailed, github.RequestFailedMessage(500), 500, github.ErrorInfo{}),
			want: "request error: 500",
		},
		{
			name: "other error",
			err:  errors.New("dial tcp: connection refused"),
			want: "dial tcp: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.want, FormatError(tt.err))
		})
	}
}
