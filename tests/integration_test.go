package integration

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/fetcher"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/scrape"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/storage"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// newSite serves a two-page listing with three properties.
func newSite() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/jual/rumah/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Query().Get("page") {
		case "", "1":
			fmt.Fprint(w, `<html><body>
<a href="/properti/jakarta/hos1/">Rumah Satu</a>
<a href="/properti/jakarta/hos2/">Rumah Dua</a>
<a href="/agen/a/">Agen</a>
</body></html>`)
		case "2":
			fmt.Fprint(w, `<html><body>
<a href="/properti/jakarta/hos3/">Rumah Tiga</a>
</body></html>`)
		default:
			fmt.Fprint(w, `<html><body><p>Tidak ada hasil</p></body></html>`)
		}
	})

	detail := func(title, price, beds string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, `<html><body>
<h1 class="text-gray-800">%s</h1>
<p class="text-xs text-gray-500">Jakarta Selatan</p>
<span class="text-primary font-bold">%s</span>
<div id="property-information">
<div class="mb-4 flex items-center gap-4 text-sm">
<p class="w-32 text-xs font-light text-gray-500">Kamar Tidur</p><p>%s</p>
</div>
</div>
</body></html>`, title, price, beds)
		}
	}
	mux.HandleFunc("/properti/jakarta/hos1/", detail("Rumah Satu", "Rp 1 Miliar", "3"))
	mux.HandleFunc("/properti/jakarta/hos2/", detail("Rumah Dua", "Rp 2,5 Miliar", "4"))
	mux.HandleFunc("/properti/jakarta/hos3/", detail("Rumah Tiga", "Rp 850 Juta", "2"))

	return httptest.NewServer(mux)
}

func testConfig(server *httptest.Server, resultsDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scrape.BaseURL = server.URL + "/jual/rumah/"
	cfg.Scrape.StartPage = 1
	cfg.Scrape.Pages = 2
	cfg.Scrape.DelayMin = 0
	cfg.Scrape.DelayMax = 0
	cfg.Scrape.ResultsDir = resultsDir
	return cfg
}

// TestEndToEnd runs link collection and detail extraction against a local
// test site and checks the session output files.
func TestEndToEnd(t *testing.T) {
	server := newSite()
	defer server.Close()

	cfg := testConfig(server, t.TempDir())

	f, err := fetcher.NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	defer f.Close()

	session, err := scrape.NewSession(cfg.Scrape.ResultsDir)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := scrape.NewLinkCollector(cfg, f, session, testLogger).Run(ctx)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 links, got %d", count)
	}

	links, err := storage.ReadLinks(session.LinksPath())
	if err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewCSVStorage(session.CSVPath(), false, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	extractor := scrape.NewDetailExtractor(cfg, f, store, session, session.LinksPath(), false, testLogger)
	records, stats, err := extractor.Run(ctx, links, 1)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	store.Close()

	if stats.Stored != 3 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if records[0].Title != "Rumah Satu" || records[0].PriceNumeric != 1_000_000_000 {
		t.Errorf("first record = %+v", records[0])
	}

	file, err := os.Open(session.CSVPath())
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 records, got %d rows", len(rows))
	}

	if _, err := os.Stat(session.SummaryPath()); err != nil {
		t.Errorf("summary not written: %v", err)
	}
}

// TestResumeFromOffset re-runs extraction with a start offset and checks
// that only the remaining links are visited.
func TestResumeFromOffset(t *testing.T) {
	server := newSite()
	defer server.Close()

	cfg := testConfig(server, t.TempDir())
	cfg.Scrape.StartLink = 3

	f, err := fetcher.NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	session, err := scrape.NewSession(cfg.Scrape.ResultsDir)
	if err != nil {
		t.Fatal(err)
	}

	links := []string{
		server.URL + "/properti/jakarta/hos1/",
		server.URL + "/properti/jakarta/hos2/",
		server.URL + "/properti/jakarta/hos3/",
	}

	store, err := storage.NewCSVStorage(session.CSVPath(), false, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	extractor := scrape.NewDetailExtractor(cfg, f, store, session, session.LinksPath(), false, testLogger)
	records, stats, err := extractor.Run(context.Background(), links, cfg.Scrape.StartLink)
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	if stats.Skipped != 2 || stats.Stored != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(records) != 1 || records[0].Title != "Rumah Tiga" {
		t.Errorf("records = %+v", records)
	}
}

// TestLiveFetch fetches the real site. Skipped in short mode.
func TestLiveFetch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live test")
	}

	cfg := config.DefaultConfig()
	f, err := fetcher.NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resp, err := f.Fetch(ctx, "https://www.rumah123.com/")
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}

	t.Logf("Status: %d", resp.StatusCode)
	t.Logf("Body size: %d bytes", len(resp.Body))

	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
