package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Scrape modes.
const (
	ModeLinks   = "links"
	ModeDetails = "details"
	ModeBoth    = "both"
)

// Config is the root configuration for the scraper.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"  yaml:"scrape"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ScrapeConfig controls the two scrape phases.
type ScrapeConfig struct {
	Mode       string        `mapstructure:"mode"        yaml:"mode"`
	BaseURL    string        `mapstructure:"base_url"    yaml:"base_url"`
	StartPage  int           `mapstructure:"start_page"  yaml:"start_page"`
	Pages      int           `mapstructure:"pages"       yaml:"pages"`
	DelayMin   time.Duration `mapstructure:"delay_min"   yaml:"delay_min"`
	DelayMax   time.Duration `mapstructure:"delay_max"   yaml:"delay_max"`
	LinksFile  string        `mapstructure:"links_file"  yaml:"links_file"`
	StartLink  int           `mapstructure:"start_link"  yaml:"start_link"`
	ResultsDir string        `mapstructure:"results_dir" yaml:"results_dir"`

	// LinkPrefix is the URL path prefix that marks a detail-page anchor
	// on a listing page.
	LinkPrefix string `mapstructure:"link_prefix" yaml:"link_prefix"`
}

// FetcherConfig controls the page fetcher.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"       yaml:"max_retries"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"       yaml:"retry_delay"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgents      []string      `mapstructure:"user_agents"       yaml:"user_agents"`
	AcceptLanguage  string        `mapstructure:"accept_language"   yaml:"accept_language"`
	Referer         string        `mapstructure:"referer"           yaml:"referer"`
}

// StorageConfig controls output sinks. CSV output in the session directory
// is always written; type selects an additional database sink.
type StorageConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // csv, mongodb, postgres

	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`

	PostgresDSN   string `mapstructure:"postgres_dsn"   yaml:"postgres_dsn"`
	PostgresTable string `mapstructure:"postgres_table" yaml:"postgres_table"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level      string `mapstructure:"level"        yaml:"level"`
	Format     string `mapstructure:"format"       yaml:"format"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"  yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"  yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// DefaultConfig returns a Config with sensible defaults for Rumah123.
func DefaultConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			Mode:       ModeBoth,
			BaseURL:    "https://www.rumah123.com/jual/dki-jakarta/rumah/",
			StartPage:  1,
			Pages:      1,
			DelayMin:   2 * time.Second,
			DelayMax:   5 * time.Second,
			StartLink:  1,
			ResultsDir: "results",
			LinkPrefix: "/properti/",
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			RequestTimeout:  30 * time.Second,
			MaxRetries:      0,
			RetryDelay:      2 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			},
			AcceptLanguage: "en-US,en;q=0.9,id;q=0.8",
			Referer:        "https://www.rumah123.com/",
		},
		Storage: StorageConfig{
			Type:            "csv",
			MongoDatabase:   "rumah123",
			MongoCollection: "properties",
			PostgresTable:   "properties",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
