package scrape

import (
	"context"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/fetcher"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/parser"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/pipeline"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/storage"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// DetailExtractor visits each collected property link, parses the detail
// page, and stores the record. A failing link costs one log line and moves
// on; progress is saved after every stored record so a crashed run resumes
// with --start-link.
type DetailExtractor struct {
	cfg       *config.Config
	fetch     fetcher.Fetcher
	parse     *parser.DetailParser
	pipe      *pipeline.Pipeline
	store     storage.Storage
	delayer   *fetcher.Delayer
	session   *Session
	linksFile string
	progress  bool // show a terminal progress bar
	logger    *slog.Logger
}

// ExtractStats summarizes a detail extraction run.
type ExtractStats struct {
	Total   int // links attempted
	Stored  int
	Failed  int
	Skipped int // links before the start offset
}

// NewDetailExtractor wires up the detail extraction phase. linksFile is
// the path the links were read from, recorded in the progress state.
func NewDetailExtractor(cfg *config.Config, f fetcher.Fetcher, store storage.Storage, session *Session, linksFile string, showProgress bool, logger *slog.Logger) *DetailExtractor {
	return &DetailExtractor{
		cfg:       cfg,
		fetch:     f,
		parse:     parser.NewDetailParser(logger),
		pipe:      pipeline.Default(logger),
		store:     store,
		delayer:   fetcher.NewDelayer(cfg.Scrape.DelayMin, cfg.Scrape.DelayMax),
		session:   session,
		linksFile: linksFile,
		progress:  showProgress,
		logger:    logger.With("component", "detail_extractor"),
	}
}

// Run extracts details for every link from startLink (1-based) onward and
// returns the stored records alongside run statistics.
func (e *DetailExtractor) Run(ctx context.Context, links []string, startLink int) ([]*types.PropertyRecord, ExtractStats, error) {
	var stats ExtractStats
	stats.Total = len(links)

	if startLink < 1 {
		startLink = 1
	}
	if startLink > len(links) {
		return nil, stats, types.ErrOffsetTooFar
	}
	stats.Skipped = startLink - 1

	remaining := links[startLink-1:]
	e.logger.Info("detail extraction started",
		"links", len(links),
		"start_link", startLink,
		"remaining", len(remaining),
	)

	var bar *progressbar.ProgressBar
	if e.progress {
		bar = newBar(len(remaining), "extracting")
	}

	var records []*types.PropertyRecord
	for i, link := range remaining {
		if i > 0 {
			if err := e.delayer.Wait(ctx); err != nil {
				return records, stats, err
			}
		}

		linkNum := startLink + i
		rec, err := e.extractOne(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return records, stats, ctx.Err()
			}
			stats.Failed++
			e.logger.Error("link failed, skipping", "link", linkNum, "url", link, "error", err)
		} else if rec != nil {
			if err := e.store.Store(rec); err != nil {
				stats.Failed++
				e.logger.Error("store failed, skipping", "link", linkNum, "url", link, "error", err)
			} else {
				stats.Stored++
				records = append(records, rec)
				e.logger.Info("property stored",
					"link", linkNum,
					"title", rec.Title,
					"price", rec.Price,
				)
			}
		}

		if bar != nil {
			bar.Add(1)
		}

		if err := SaveProgress(e.session.ProgressPath(), &Progress{
			Mode:      config.ModeDetails,
			LinksFile: e.linksFile,
			LastLink:  linkNum,
		}); err != nil {
			e.logger.Warn("progress save failed", "error", err)
		}
	}

	if err := storage.WriteSpecSummary(e.session.SummaryPath(), records); err != nil {
		e.logger.Error("summary write failed", "error", err)
	}

	e.logger.Info("detail extraction finished",
		"stored", stats.Stored,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
	)
	return records, stats, nil
}

func (e *DetailExtractor) extractOne(ctx context.Context, link string) (*types.PropertyRecord, error) {
	resp, err := e.fetch.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	rec, err := e.parse.Parse(resp)
	if err != nil {
		return nil, err
	}

	return e.pipe.Process(rec)
}

func newBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
