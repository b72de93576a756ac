package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is the public GitHub REST API
	DefaultBaseURL = "https://api.github.com"
	// DefaultUserAgent is sent when no user agent is configured
	DefaultUserAgent = "GitHub-Repository-Search"
	// AcceptHeader selects the v3 JSON media type
	AcceptHeader = "application/vnd.github.v3+json"
	// DefaultTimeout bounds a single request
	DefaultTimeout = 30 * time.Second
)

// Mode distinguishes development from production runs
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// FetcherConfig holds everything the fetcher would otherwise read from the environment
type FetcherConfig struct {
	// Token is attached as a bearer token when set
	Token string
	// Mode controls whether a missing token is reported
	Mode       Mode
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Fetcher issues single-attempt GET requests and classifies the responses.
// It never retries; retry policy belongs to the cache layer.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	anonymous  bool
	mode       Mode
	warnOnce   sync.Once
	logger     zerolog.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(cfg FetcherConfig, logger zerolog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = &http.Client{
			Timeout:       httpClient.Timeout,
			Jar:           httpClient.Jar,
			CheckRedirect: httpClient.CheckRedirect,
			Transport: &oauth2.Transport{
				Source: ts,
				Base:   httpClient.Transport,
			},
		}
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		anonymous:  cfg.Token == "",
		mode:       cfg.Mode,
		logger:     logger,
	}
}

// Fetch performs a GET on url and decodes a successful JSON body into v.
// Non-success responses become *APIError; transport errors are returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", AcceptHeader)
	req.Header.Set("User-Agent", f.userAgent)

	if f.anonymous && f.mode == ModeDevelopment {
		f.warnOnce.Do(func() {
			f.logger.Warn().Msg("GITHUB_TOKEN is not set, rate limit is reduced to 60 requests/hour")
		})
	}

	f.logger.Debug().Str("url", url).Msg("Making GitHub API request")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if apiErr := classifyResponse(resp); apiErr != nil {
		f.logger.Debug().
			Int("status", apiErr.Status).
			Str("kind", apiErr.Kind.String()).
			Str("url", url).
			Msg("GitHub API request failed")
		return apiErr
	}

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Request fetches url and decodes the body into a new T
func Request[T any](ctx context.Context, f *Fetcher, url string) (T, error) {
	var out T
	if err := f.Fetch(ctx, url, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// classifyResponse returns nil for a success response
func classifyResponse(resp *http.Response) *APIError {
	headers := HTTPHeaders(resp.Header)

	if isRateLimited(resp.StatusCode, headers) {
		return NewAPIError(KindRateLimit, MessageRateLimit, resp.StatusCode, ErrorInfo{
			RateLimit: RateLimitFromHeaders(headers),
		})
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := RequestFailedMessage(resp.StatusCode)

	info, err := decodeErrorBody(resp.Body)
	if err != nil {
		return NewAPIError(KindRequestFailed, message, resp.StatusCode, ErrorInfo{
			Message:    statusText(resp),
			ParseError: err.Error(),
		})
	}

	return NewAPIError(KindRequestFailed, message, resp.StatusCode, info)
}

func decodeErrorBody(r io.Reader) (ErrorInfo, error) {
	var info ErrorInfo

	body, err := io.ReadAll(r)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return ErrorInfo{}, err
	}

	info.Body = json.RawMessage(body)
	return info, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = MessageUnknown
	}
	return text
}
