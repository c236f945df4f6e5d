package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	switch cfg.Scrape.Mode {
	case ModeLinks, ModeDetails, ModeBoth:
	default:
		return fmt.Errorf("scrape.mode must be links/details/both, got %q", cfg.Scrape.Mode)
	}
	if cfg.Scrape.StartPage < 1 {
		return fmt.Errorf("scrape.start_page must be >= 1, got %d", cfg.Scrape.StartPage)
	}
	if cfg.Scrape.Pages < 1 {
		return fmt.Errorf("scrape.pages must be >= 1, got %d", cfg.Scrape.Pages)
	}
	if cfg.Scrape.DelayMin < 0 {
		return fmt.Errorf("scrape.delay_min must be >= 0")
	}
	if cfg.Scrape.DelayMax < cfg.Scrape.DelayMin {
		return fmt.Errorf("scrape.delay_max (%s) must be >= scrape.delay_min (%s)",
			cfg.Scrape.DelayMax, cfg.Scrape.DelayMin)
	}
	if cfg.Scrape.StartLink < 0 {
		return fmt.Errorf("scrape.start_link must be >= 0, got %d", cfg.Scrape.StartLink)
	}
	if cfg.Scrape.Mode != ModeDetails {
		if err := ValidateURL(cfg.Scrape.BaseURL); err != nil {
			return fmt.Errorf("scrape.base_url: %w", err)
		}
	}
	if cfg.Scrape.Mode == ModeDetails && cfg.Scrape.LinksFile == "" {
		return fmt.Errorf("scrape.links_file is required in details mode")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("fetcher.max_retries must be >= 0, got %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	switch cfg.Storage.Type {
	case "csv":
	case "mongodb":
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required when storage.type is mongodb")
		}
	case "postgres":
		if cfg.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required when storage.type is postgres")
		}
	default:
		return fmt.Errorf("storage.type %q is not supported (valid: csv, mongodb, postgres)", cfg.Storage.Type)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a scrape target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}
