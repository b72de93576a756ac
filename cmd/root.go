package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/reposcout/cache"
	"github.com/s0up4200/reposcout/config"
	"github.com/s0up4200/reposcout/filter"
	"github.com/s0up4200/reposcout/format"
	"github.com/s0up4200/reposcout/github"
)

// skipInit marks commands that run without configuration
const skipInit = "skip-init"

var (
	cfgFile   string
	cfg       *config.Config
	logger    zerolog.Logger
	client    *github.Client
	formatter = format.NewConsoleFormatter()

	// Command flags
	logLevel   string
	devMode    bool
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reposcout",
	Short: "Search GitHub repositories from the terminal",
	Long: `reposcout searches GitHub repositories, sorts and pages through the
results and shows repository details. Responses are cached briefly so paging
back and forth does not spend API quota.

Set GITHUB_TOKEN to raise the API rate limit.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "run in development mode")

	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(repoCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipInit] == "true" {
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if devMode {
		cfg.Mode = string(github.ModeDevelopment)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("Loaded configuration")
	}

	client = newClient(cfg, logger)

	return nil
}

// newClient builds the GitHub client from configuration
func newClient(cfg *config.Config, logger zerolog.Logger) *github.Client {
	fetcher := github.NewFetcher(github.FetcherConfig{
		Token:     cfg.GitHub.Token,
		Mode:      github.Mode(cfg.Mode),
		UserAgent: cfg.GitHub.UserAgent,
		Timeout:   cfg.GitHub.Timeout,
	}, logger)

	return github.NewClient(fetcher, logger,
		github.WithBaseURL(cfg.GitHub.BaseURL),
		github.WithCacheOptions(
			cache.WithRetry(cfg.Cache.RetryCount, cfg.Cache.RetryInterval),
			cache.WithSize(cfg.Cache.Size),
			cache.WithRevalidateOnReconnect(cfg.Cache.RevalidateOnReconnect),
		),
		github.WithSearchCache(cache.WithTTL(cfg.Cache.SearchTTL)),
		github.WithRepositoryCache(cache.WithTTL(cfg.Cache.RepositoryTTL)),
	)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// getFilter compiles the --filter expression or the --preset named in config.
// It returns nil when neither is given.
func getFilter() (filter.Filter, error) {
	// Priority: command line filter > preset
	expression := filterExpr
	if expression == "" && preset != "" {
		presetExpr, ok := cfg.Filter[strings.ToLower(preset)]
		if !ok {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		expression = presetExpr
	}

	if expression == "" {
		return nil, nil
	}

	f, err := filter.CompileFilter(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return f, nil
}

// addFilterFlags registers the filter flags on cmd
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to fetched results")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a named filter from config")
}
