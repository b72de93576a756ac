package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/reposcout/filter"
	"github.com/s0up4200/reposcout/format"
	"github.com/s0up4200/reposcout/github"
)

var (
	sortField string
	sortOrder string
	page      int
	perPage   int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search repositories",
	Long: `Search GitHub repositories and print one page of results.

Results are sorted by the API and sorted again locally, so "updated" ordering
is exact within the page. Only the first 1000 results of a search can be
paged through.

Examples:
  reposcout search react
  reposcout search "language:go cli" --sort updated --order asc --per-page 25
  reposcout search kubernetes --filter 'hasTopic("operator") and Stars > 500'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&sortField, "sort", "s", "", "sort field: stars, forks or updated (default from config)")
	searchCmd.Flags().StringVarP(&sortOrder, "order", "o", "", "sort order: asc or desc (default from config)")
	searchCmd.Flags().IntVar(&page, "page", 1, "result page")
	searchCmd.Flags().IntVar(&perPage, "per-page", 0, "results per page: 10, 25 or 50 (default from config)")
	addFilterFlags(searchCmd)
}

// buildQuery combines the search text, flags and display defaults
func buildQuery(text string) (github.SearchQuery, error) {
	q := github.NewSearchQuery(text)
	q.Sort = github.SortField(cfg.Display.Sort)
	q.Order = github.SortDirection(cfg.Display.Order)
	q.PerPage = cfg.Display.PerPage

	if sortField != "" {
		q.Sort = github.SortField(sortField)
	}
	if sortOrder != "" {
		q.Order = github.SortDirection(sortOrder)
	}
	if perPage != 0 {
		q.PerPage = perPage
	}
	q.Page = max(page, 1)

	if err := q.Validate(); err != nil {
		return q, err
	}

	if last := github.MaxPage(github.MaxResults, q.PerPage); q.Page > last {
		return q, fmt.Errorf("page %d is out of range: only the first %d results are available (%d pages of %d)",
			q.Page, github.MaxResults, last, q.PerPage)
	}

	return q, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := buildQuery(strings.Join(args, " "))
	if err != nil {
		return err
	}

	f, err := getFilter()
	if err != nil {
		return err
	}

	logger.Debug().
		Str("query", q.Text).
		Str("sort", string(q.Sort)).
		Str("order", string(q.Order)).
		Int("page", q.Page).
		Int("per_page", q.PerPage).
		Msg("Searching repositories")

	snap := client.Search(cmd.Context(), q)
	if snap.Err != nil {
		return fmt.Errorf("search failed: %s", format.FormatError(snap.Err))
	}

	result := snap.Data
	if result == nil {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatResults(nil, q))
		return nil
	}

	if f != nil {
		result = filter.ApplyPage(f, result)
		logger.Debug().
			Str("filter", f.Expression()).
			Int("matched", len(result.Items)).
			Int("fetched", len(snap.Data.Items)).
			Msg("Applied filter")
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatResults(result, q))

	// A request past the last page of a small result set comes back empty
	if q.Page > 1 && len(snap.Data.Items) == 0 && snap.Data.TotalCount > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "The last page is %d.\n", github.MaxPage(snap.Data.TotalCount, q.PerPage))
	}

	return nil
}
