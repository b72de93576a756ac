package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/reposcout/cache"
	"github.com/s0up4200/reposcout/filter"
	"github.com/s0up4200/reposcout/format"
	"github.com/s0up4200/reposcout/github"
)

const browseHelp = `Commands:
  search <text>     start a new search
  next, prev        move between pages
  page <n>          jump to page n
  per <n>           results per page (10, 25 or 50)
  sort <field>      sort by stars, forks or updated; repeat to flip the order
  filter <expr>     filter fetched results, "filter off" to clear
  open <n|owner/name>
                    show repository details
  refresh           fetch the current page again
  stats             show cache statistics
  help              show this help
  quit              leave
`

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse [text]",
	Short: "Browse search results interactively",
	Long: `Browse search results interactively: page through results, change the
sort order and open repository details. Pages already seen are served from
the cache.

` + browseHelp,
	RunE: runBrowse,
}

func init() {
	addFilterFlags(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	f, err := getFilter()
	if err != nil {
		return err
	}

	q := github.NewSearchQuery(strings.Join(args, " "))
	q.Sort = github.SortField(cfg.Display.Sort)
	q.Order = github.SortDirection(cfg.Display.Order)
	q.PerPage = cfg.Display.PerPage

	b := newBrowser(client, cmd.OutOrStdout(), logger)
	b.query = q
	b.filter = f

	return b.run(cmd.Context(), cmd.InOrStdin())
}

// browser is an interactive result pager. Every navigation starts a new
// ticket; results that arrive for an older ticket are dropped.
type browser struct {
	client    *github.Client
	formatter *format.ConsoleFormatter
	logger    zerolog.Logger

	mu     sync.Mutex
	out    io.Writer
	query  github.SearchQuery
	total  int // -1 while unknown
	filter filter.Filter
	items  []github.Repository

	gen cache.Generation
	wg  sync.WaitGroup
}

func newBrowser(client *github.Client, out io.Writer, logger zerolog.Logger) *browser {
	return &browser{
		client:    client,
		formatter: formatter,
		logger:    logger.With().Str("component", "browse").Logger(),
		out:       out,
		total:     -1,
	}
}

// run reads commands from in until quit, EOF or ctx ends
func (b *browser) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	if strings.TrimSpace(b.query.Text) != "" {
		b.refresh(ctx)
	} else {
		b.printf("Type \"search <text>\" to start, \"help\" for commands.\n")
	}

	for {
		select {
		case <-ctx.Done():
			b.gen.Stop()
			b.wg.Wait()
			return nil

		case line, ok := <-lines:
			if !ok || b.handle(ctx, line) {
				// Let the latest request finish rendering before leaving
				b.wg.Wait()
				b.gen.Stop()
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
		}
	}
}

// handle executes one command line and reports whether to quit
func (b *browser) handle(ctx context.Context, line string) bool {
	command, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case "":
		return false

	case "q", "quit", "exit":
		return true

	case "h", "help", "?":
		b.printf("%s", browseHelp)

	case "s", "search":
		if arg == "" {
			b.printf("Usage: search <text>\n")
			return false
		}
		b.update(func(q github.SearchQuery, _ int) github.SearchQuery {
			return q.WithText(arg)
		})
		b.mu.Lock()
		b.total = -1
		b.mu.Unlock()
		b.refresh(ctx)

	case "n", "next":
		if b.atLastPage() {
			b.printf("Already on the last page.\n")
			return false
		}
		b.update(func(q github.SearchQuery, total int) github.SearchQuery {
			return q.WithPage(q.Page+1, total)
		})
		b.refresh(ctx)

	case "p", "prev":
		b.mu.Lock()
		first := b.query.Page <= 1
		b.mu.Unlock()
		if first {
			b.printf("Already on the first page.\n")
			return false
		}
		b.update(func(q github.SearchQuery, total int) github.SearchQuery {
			return q.WithPage(q.Page-1, total)
		})
		b.refresh(ctx)

	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			b.printf("Usage: page <n>\n")
			return false
		}
		b.update(func(q github.SearchQuery, total int) github.SearchQuery {
			return q.WithPage(n, total)
		})
		b.refresh(ctx)

	case "per":
		n, err := strconv.Atoi(arg)
		if err != nil || !slices.Contains(github.PerPageOptions, n) {
			b.printf("Results per page must be one of %v.\n", github.PerPageOptions)
			return false
		}
		b.update(func(q github.SearchQuery, _ int) github.SearchQuery {
			return q.WithPerPage(n)
		})
		b.refresh(ctx)

	case "sort":
		if !github.IsValidSortField(arg) {
			b.printf("Sort by stars, forks or updated.\n")
			return false
		}
		b.update(func(q github.SearchQuery, _ int) github.SearchQuery {
			return q.ToggleSort(github.SortField(arg))
		})
		b.refresh(ctx)

	case "f", "filter":
		b.setFilter(arg)
		b.refresh(ctx)

	case "o", "open":
		b.open(ctx, arg)

	case "r", "refresh":
		b.mu.Lock()
		q := b.query
		b.mu.Unlock()
		b.client.InvalidateSearch(q)
		b.refresh(ctx)

	case "stats":
		search, repos := b.client.CacheStats()
		b.printf("search cache: %d hits, %d fetches, %d errors\nrepository cache: %d hits, %d fetches, %d errors\n",
			search.Hits, search.Fetches, search.Errors, repos.Hits, repos.Fetches, repos.Errors)

	default:
		b.printf("Unknown command %q, type \"help\" for commands.\n", command)
	}

	return false
}

// update replaces the query under the lock
func (b *browser) update(fn func(q github.SearchQuery, total int) github.SearchQuery) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = fn(b.query, b.total)
}

func (b *browser) atLastPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total >= 0 && b.query.Page >= github.MaxPage(b.total, b.query.PerPage)
}

func (b *browser) setFilter(expression string) {
	if expression == "" || strings.EqualFold(expression, "off") {
		b.mu.Lock()
		b.filter = nil
		b.mu.Unlock()
		b.printf("Filter cleared.\n")
		return
	}

	f, err := filter.CompileFilter(expression)
	if err != nil {
		b.printf("%v\n", err)
		return
	}

	b.mu.Lock()
	b.filter = f
	b.mu.Unlock()
}

// refresh loads the current page and renders it if no newer request started
func (b *browser) refresh(parent context.Context) {
	b.mu.Lock()
	q := b.query
	f := b.filter
	b.mu.Unlock()

	if strings.TrimSpace(q.Text) == "" {
		b.printf("Type \"search <text>\" first.\n")
		return
	}

	b.start(parent, func(ctx context.Context) func() {
		snap := b.client.Search(ctx, q)

		return func() {
			if snap.Err != nil {
				fmt.Fprintf(b.out, "\n%s\n", format.FormatError(snap.Err))
				return
			}

			result := snap.Data
			if result == nil {
				// A null body decodes to no page at all
				b.total = 0
				b.items = nil
				fmt.Fprintln(b.out, b.formatter.FormatResults(nil, q))
				return
			}

			b.total = result.TotalCount
			if f != nil {
				result = filter.ApplyPage(f, result)
			}
			b.items = result.Items

			fmt.Fprintln(b.out, b.formatter.FormatResults(result, q))
		}
	})
}

// open shows details for the n-th listed repository or for owner/name
func (b *browser) open(parent context.Context, arg string) {
	var ref github.RepoRef

	if n, err := strconv.Atoi(arg); err == nil {
		b.mu.Lock()
		items := b.items
		b.mu.Unlock()

		if len(items) == 0 {
			b.printf("No results to open yet.\n")
			return
		}
		if n < 1 || n > len(items) {
			b.printf("Pick a result between 1 and %d.\n", len(items))
			return
		}
		item := items[n-1]
		ref = github.RepoRef{Owner: item.Owner.Login, Name: item.Name}
	} else {
		parsed, err := github.ParseRepoRef(arg)
		if err != nil {
			b.printf("Usage: open <n|owner/name>\n")
			return
		}
		ref = parsed
	}

	b.start(parent, func(ctx context.Context) func() {
		snap := b.client.Repository(ctx, ref.Owner, ref.Name)

		return func() {
			if snap.Err != nil {
				fmt.Fprintf(b.out, "\n%s: %s\n", ref, format.FormatError(snap.Err))
				return
			}
			fmt.Fprint(b.out, b.formatter.FormatRepository(snap.Data))
		}
	})
}

// start runs task on a new ticket. The function task returns is applied with
// the lock held, and only while the ticket is still the latest.
func (b *browser) start(parent context.Context, task func(ctx context.Context) func()) {
	b.mu.Lock()
	ctx, ticket := b.gen.Next(parent)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		apply := task(ctx)

		b.mu.Lock()
		defer b.mu.Unlock()

		if !ticket.Current() {
			b.logger.Trace().Uint64("ticket", ticket.ID()).Msg("Discarding stale result")
			return
		}
		apply()
	}()
}

func (b *browser) printf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.out, format, args...)
}
