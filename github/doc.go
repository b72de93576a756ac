// Package github provides a cached client for the GitHub repository search API.
//
// # Architecture
//
//   - Fetcher: performs one GET, classifies failures into APIError values
//   - Client: search and repository lookups backed by request caches
//   - SearchQuery: query parameters, pagination bounds and sort toggling
//   - Reorder: stable client-side re-sort of a result page
//
// Results for the same parameters are shared: concurrent lookups trigger a
// single request, and a loaded page is reused for a short window (30 seconds
// for searches, 60 seconds for repository details).
//
// # Usage
//
//	logger := zerolog.New(os.Stdout)
//	fetcher := github.NewFetcher(github.FetcherConfig{
//		Token: os.Getenv("GITHUB_TOKEN"),
//		Mode:  github.ModeProduction,
//	}, logger)
//	client := github.NewClient(fetcher, logger)
//
//	q := github.NewSearchQuery("react").ToggleSort(github.SortStars)
//	snap := client.Search(ctx, q)
//	if snap.Err != nil {
//		log.Fatal(snap.Err)
//	}
//	fmt.Println(snap.Data.TotalCount, github.MaxPage(snap.Data.TotalCount, q.PerPage))
//
// # Error Handling
//
// Non-success responses are returned as *APIError:
//
//   - KindRateLimit: 403 with an exhausted quota, Info.RateLimit holds the headers
//   - KindRequestFailed: any other status, Info holds the decoded error body
//
// Transport failures are passed through unchanged. Both kinds match
// ErrRateLimited and ErrRequestFailed with errors.Is.
package github
