package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// Fetcher retrieves a single page.
type Fetcher interface {
	// Fetch downloads the page at rawURL.
	Fetch(ctx context.Context, rawURL string) (*types.Response, error)

	// Close releases resources.
	Close() error
}

// New creates the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "http":
		return NewHTTPFetcher(cfg, logger)
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported fetcher type: %s", cfg.Fetcher.Type)
	}
}
