package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/fetcher"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/observability"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/scrape"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/storage"
)

var (
	cfgFile     string
	verbose     bool
	mode        string
	baseURL     string
	startPage   int
	pages       int
	delayMin    string
	delayMax    string
	linksFile   string
	startLink   int
	resultsDir  string
	fetcherType string
	storageType string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "housescraper",
		Short: "Rumah123 property listings scraper",
		Long: `housescraper collects house listings from Rumah123 in two phases:

  links    — walk the paginated search results and save every property URL
  details  — visit each saved URL and extract the property data to CSV
  both     — run the two phases back to back

Each run writes into its own timestamped directory under the results root,
with a links file, a properties CSV, a specification summary, and a log.
Requests are spaced by a random polite delay; interrupted runs resume with
--start-page or --start-link.`,
		RunE: runScrape,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().StringVarP(&mode, "mode", "m", "", "scrape mode: links, details, both")
	rootCmd.Flags().StringVarP(&baseURL, "url", "u", "", "listing search URL to paginate")
	rootCmd.Flags().IntVar(&startPage, "start-page", 0, "first listing page to collect (1-based)")
	rootCmd.Flags().IntVarP(&pages, "pages", "p", 0, "number of listing pages to collect")
	rootCmd.Flags().StringVar(&delayMin, "delay-min", "", "minimum delay between requests (e.g. 2s)")
	rootCmd.Flags().StringVar(&delayMax, "delay-max", "", "maximum delay between requests (e.g. 5s)")
	rootCmd.Flags().StringVarP(&linksFile, "links-file", "l", "", "links file to extract details from")
	rootCmd.Flags().IntVar(&startLink, "start-link", 0, "first link to extract (1-based, skips earlier links)")
	rootCmd.Flags().StringVarP(&resultsDir, "results-dir", "o", "", "results root directory")
	rootCmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http, browser")
	rootCmd.Flags().StringVar(&storageType, "storage", "", "extra record sink: csv, mongodb, postgres")

	rootCmd.AddCommand(combineCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runScrape executes the selected scrape mode.
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyCLIOverrides(cfg); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	session, err := scrape.NewSession(cfg.Scrape.ResultsDir)
	if err != nil {
		return err
	}

	logger, logCloser := observability.NewLogger(cfg, session.LogPath(), verbose)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetch, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer fetch.Close()

	logger.Info("scrape starting",
		"mode", cfg.Scrape.Mode,
		"session", session.Dir,
		"fetcher", cfg.Fetcher.Type,
		"delay_min", cfg.Scrape.DelayMin,
		"delay_max", cfg.Scrape.DelayMax,
	)
	start := time.Now()

	switch cfg.Scrape.Mode {
	case config.ModeLinks:
		count, err := scrape.NewLinkCollector(cfg, fetch, session, logger).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("\nCollected %d links in %s\n", count, time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Links:  %s\n", session.LinksPath())

	case config.ModeDetails:
		links, err := storage.ReadLinks(cfg.Scrape.LinksFile)
		if err != nil {
			return err
		}
		stats, err := extractDetails(ctx, cfg, fetch, session, links, cfg.Scrape.LinksFile, logger)
		if err != nil {
			return err
		}
		printDetailSummary(stats, session, start)

	case config.ModeBoth:
		count, err := scrape.NewLinkCollector(cfg, fetch, session, logger).Run(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("no links collected from %s", cfg.Scrape.BaseURL)
		}
		links, err := storage.ReadLinks(session.LinksPath())
		if err != nil {
			return err
		}
		stats, err := extractDetails(ctx, cfg, fetch, session, links, session.LinksPath(), logger)
		if err != nil {
			return err
		}
		fmt.Printf("\nCollected %d links\n", count)
		printDetailSummary(stats, session, start)
	}

	return nil
}

// extractDetails runs the detail phase over the given links and writes the
// records to the configured sinks.
func extractDetails(ctx context.Context, cfg *config.Config, fetch fetcher.Fetcher, session *scrape.Session, links []string, linksPath string, logger *slog.Logger) (scrape.ExtractStats, error) {
	resume := cfg.Scrape.StartLink > 1
	store, err := storage.New(cfg, session.CSVPath(), resume, logger)
	if err != nil {
		return scrape.ExtractStats{}, fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	showProgress := progressEnabled(verbose, int(os.Stderr.Fd()))
	extractor := scrape.NewDetailExtractor(cfg, fetch, store, session, linksPath, showProgress, logger)
	_, stats, err := extractor.Run(ctx, links, cfg.Scrape.StartLink)
	return stats, err
}

// progressEnabled reports whether the detail loop should draw a progress
// bar: only on an interactive stderr, and never alongside debug logging.
func progressEnabled(verboseMode bool, fd int) bool {
	return !verboseMode && term.IsTerminal(fd)
}

// printDetailSummary prints the end-of-run report for detail extraction.
func printDetailSummary(stats scrape.ExtractStats, session *scrape.Session, start time.Time) {
	fmt.Printf("\nExtraction complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Stored:   %d\n", stats.Stored)
	fmt.Printf("  Failed:   %d\n", stats.Failed)
	fmt.Printf("  Skipped:  %d\n", stats.Skipped)
	fmt.Printf("  CSV:      %s\n", session.CSVPath())
	fmt.Printf("  Summary:  %s\n", session.SummaryPath())
}

// combineCmd creates the "combine" subcommand.
func combineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Merge all session link files into one deduplicated file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if resultsDir != "" {
				cfg.Scrape.ResultsDir = resultsDir
			}

			logger, _ := observability.NewLogger(cfg, "", verbose)
			stats, err := scrape.CombineLinks(cfg.Scrape.ResultsDir, logger)
			if err != nil {
				return err
			}
			fmt.Printf("Combined %d sessions: %d links, %d already combined, %d new\n",
				stats.Sessions, stats.TotalLinks, stats.Prior, stats.Unique)
			if stats.OutputPath == "" {
				fmt.Println("  No new links since the last rollup; nothing written.")
			} else {
				fmt.Printf("  Output: %s\n", stats.OutputPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&resultsDir, "results-dir", "o", "", "results root directory")
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("housescraper %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scrape:\n")
			fmt.Printf("  Mode:         %s\n", cfg.Scrape.Mode)
			fmt.Printf("  Base URL:     %s\n", cfg.Scrape.BaseURL)
			fmt.Printf("  Start Page:   %d\n", cfg.Scrape.StartPage)
			fmt.Printf("  Pages:        %d\n", cfg.Scrape.Pages)
			fmt.Printf("  Delay:        %s – %s\n", cfg.Scrape.DelayMin, cfg.Scrape.DelayMax)
			fmt.Printf("  Results Dir:  %s\n", cfg.Scrape.ResultsDir)
			fmt.Printf("  Link Prefix:  %s\n", cfg.Scrape.LinkPrefix)
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:             %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Request Timeout:  %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Printf("  Max Retries:      %d\n", cfg.Fetcher.MaxRetries)
			fmt.Printf("  Follow Redirects: %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  User Agents:      %d configured\n", len(cfg.Fetcher.UserAgents))
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:  %s\n", cfg.Storage.Type)
			fmt.Printf("\nLogging:\n")
			fmt.Printf("  Level:   %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:  %s\n", cfg.Logging.Format)
			return nil
		},
	}
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) error {
	if mode != "" {
		cfg.Scrape.Mode = strings.ToLower(mode)
	}
	if baseURL != "" {
		cfg.Scrape.BaseURL = baseURL
	}
	if startPage > 0 {
		cfg.Scrape.StartPage = startPage
	}
	if pages > 0 {
		cfg.Scrape.Pages = pages
	}
	if delayMin != "" {
		d, err := time.ParseDuration(delayMin)
		if err != nil {
			return fmt.Errorf("invalid --delay-min %q: %w", delayMin, err)
		}
		cfg.Scrape.DelayMin = d
	}
	if delayMax != "" {
		d, err := time.ParseDuration(delayMax)
		if err != nil {
			return fmt.Errorf("invalid --delay-max %q: %w", delayMax, err)
		}
		cfg.Scrape.DelayMax = d
	}
	if linksFile != "" {
		cfg.Scrape.LinksFile = linksFile
	}
	if startLink > 0 {
		cfg.Scrape.StartLink = startLink
	}
	if resultsDir != "" {
		cfg.Scrape.ResultsDir = resultsDir
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if storageType != "" {
		cfg.Storage.Type = strings.ToLower(storageType)
	}
	return nil
}
