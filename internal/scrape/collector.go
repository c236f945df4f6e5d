package scrape

import (
	"context"
	"log/slog"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/fetcher"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/parser"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/storage"
)

// LinkCollector walks the paginated listing pages and appends every
// discovered property link to the session's links file. Pages are fetched
// one at a time with a random polite delay between them; a failing page is
// logged and skipped, never fatal.
type LinkCollector struct {
	cfg     *config.Config
	fetch   fetcher.Fetcher
	parse   *parser.ListingParser
	delayer *fetcher.Delayer
	session *Session
	seen    map[string]bool // links written so far this run
	logger  *slog.Logger
}

// NewLinkCollector wires up the link collection phase.
func NewLinkCollector(cfg *config.Config, f fetcher.Fetcher, session *Session, logger *slog.Logger) *LinkCollector {
	return &LinkCollector{
		cfg:     cfg,
		fetch:   f,
		parse:   parser.NewListingParser(cfg.Scrape.LinkPrefix, logger),
		delayer: fetcher.NewDelayer(cfg.Scrape.DelayMin, cfg.Scrape.DelayMax),
		session: session,
		seen:    make(map[string]bool),
		logger:  logger.With("component", "link_collector"),
	}
}

// Run collects links from cfg.Scrape.Pages listing pages starting at
// cfg.Scrape.StartPage. It returns the total number of links written.
func (c *LinkCollector) Run(ctx context.Context) (int, error) {
	links, err := storage.NewLinksFile(c.session.LinksPath(), c.logger)
	if err != nil {
		return 0, err
	}
	defer links.Close()

	startPage := c.cfg.Scrape.StartPage
	endPage := startPage + c.cfg.Scrape.Pages - 1

	c.logger.Info("link collection started",
		"base_url", c.cfg.Scrape.BaseURL,
		"start_page", startPage,
		"end_page", endPage,
		"output", c.session.LinksPath(),
	)

	for page := startPage; page <= endPage; page++ {
		if page > startPage {
			if err := c.delayer.Wait(ctx); err != nil {
				return links.Count(), err
			}
		}

		pageURL := parser.PageURL(c.cfg.Scrape.BaseURL, page)
		found, err := c.collectPage(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return links.Count(), ctx.Err()
			}
			c.logger.Error("page failed, skipping", "page", page, "url", pageURL, "error", err)
			continue
		}

		// Listings shuffle between pages, so the same property can show
		// up again later in the run; write each link once.
		var fresh []string
		for _, link := range found {
			if !c.seen[link] {
				c.seen[link] = true
				fresh = append(fresh, link)
			}
		}

		if len(found) == 0 {
			c.logger.Warn("no links on page", "page", page, "url", pageURL)
		} else if err := links.Append(fresh); err != nil {
			return links.Count(), err
		}

		c.logger.Info("page collected", "page", page, "links", len(found), "new", len(fresh), "total", links.Count())

		if err := SaveProgress(c.session.ProgressPath(), &Progress{
			Mode:      config.ModeLinks,
			BaseURL:   c.cfg.Scrape.BaseURL,
			LastPage:  page,
			LinkCount: links.Count(),
		}); err != nil {
			c.logger.Warn("progress save failed", "error", err)
		}
	}

	c.logger.Info("link collection finished", "links", links.Count())
	return links.Count(), nil
}

func (c *LinkCollector) collectPage(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := c.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	found, err := c.parse.Links(resp)
	if err != nil {
		return nil, err
	}

	// Cross-check against the raw anchor count so silently broken
	// extraction shows up in the logs.
	if anchors, err := c.parse.CardCount(resp); err == nil && anchors > 0 && len(found) == 0 {
		c.logger.Warn("anchors present but no links extracted", "url", pageURL, "anchors", anchors)
	}

	return found, nil
}
