// Package housescraper provides a high-level API for embedding the scraper
// as a library.
//
// Example usage:
//
//	s := housescraper.New(
//	    housescraper.WithBaseURL("https://www.rumah123.com/jual/bandung/rumah/"),
//	    housescraper.WithPages(1, 5),
//	    housescraper.WithDelay(2*time.Second, 5*time.Second),
//	)
//
//	links, err := s.CollectLinks(ctx)
//	records, err := s.ExtractDetails(ctx, links)
package housescraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/fetcher"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/scrape"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/storage"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// Scraper is the high-level API for the two-phase property scraper.
type Scraper struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL sets the listing search URL to paginate.
func WithBaseURL(url string) Option {
	return func(s *Scraper) { s.cfg.Scrape.BaseURL = url }
}

// WithPages sets the first listing page and the number of pages to collect.
func WithPages(start, count int) Option {
	return func(s *Scraper) {
		s.cfg.Scrape.StartPage = start
		s.cfg.Scrape.Pages = count
	}
}

// WithDelay sets the bounds of the random delay between requests.
func WithDelay(min, max time.Duration) Option {
	return func(s *Scraper) {
		s.cfg.Scrape.DelayMin = min
		s.cfg.Scrape.DelayMax = max
	}
}

// WithResultsDir sets the results root directory.
func WithResultsDir(dir string) Option {
	return func(s *Scraper) { s.cfg.Scrape.ResultsDir = dir }
}

// WithBrowser switches fetching to a headless browser, for pages that only
// render their listings client side.
func WithBrowser() Option {
	return func(s *Scraper) { s.cfg.Fetcher.Type = "browser" }
}

// WithLogger replaces the default stderr logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) { s.logger = logger }
}

// WithConfig replaces the entire default configuration. Apply before other
// options so they override it.
func WithConfig(cfg *config.Config) Option {
	return func(s *Scraper) { s.cfg = cfg }
}

// New creates a Scraper with default configuration and the given options.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		cfg:    config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CollectLinks walks the paginated listing and returns every property URL
// found. The links are also written to a fresh session directory.
func (s *Scraper) CollectLinks(ctx context.Context) ([]string, error) {
	if err := config.Validate(s.withMode(config.ModeLinks)); err != nil {
		return nil, err
	}

	session, err := scrape.NewSession(s.cfg.Scrape.ResultsDir)
	if err != nil {
		return nil, err
	}

	f, err := fetcher.New(s.cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	if _, err := scrape.NewLinkCollector(s.cfg, f, session, s.logger).Run(ctx); err != nil {
		return nil, err
	}
	return storage.ReadLinks(session.LinksPath())
}

// ExtractDetails visits each link and returns the parsed property records.
// Records are also written to a properties CSV in a fresh session directory.
func (s *Scraper) ExtractDetails(ctx context.Context, links []string) ([]*types.PropertyRecord, error) {
	session, err := scrape.NewSession(s.cfg.Scrape.ResultsDir)
	if err != nil {
		return nil, err
	}

	f, err := fetcher.New(s.cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	store, err := storage.NewCSVStorage(session.CSVPath(), false, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	extractor := scrape.NewDetailExtractor(s.cfg, f, store, session, session.LinksPath(), false, s.logger)
	records, _, err := extractor.Run(ctx, links, s.cfg.Scrape.StartLink)
	return records, err
}

// Run performs link collection and detail extraction back to back.
func (s *Scraper) Run(ctx context.Context) ([]*types.PropertyRecord, error) {
	links, err := s.CollectLinks(ctx)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, types.ErrNoLinks
	}
	return s.ExtractDetails(ctx, links)
}

func (s *Scraper) withMode(mode string) *config.Config {
	cfg := *s.cfg
	cfg.Scrape.Mode = mode
	return &cfg
}
