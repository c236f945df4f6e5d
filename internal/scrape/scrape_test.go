package scrape

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/storage"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// stubFetcher serves canned bodies keyed by URL.
type stubFetcher struct {
	pages map[string]string
	fail  map[string]bool
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (*types.Response, error) {
	if s.fail[rawURL] {
		return nil, &types.FetchError{URL: rawURL, StatusCode: 500, Err: errors.New("server error")}
	}
	body, ok := s.pages[rawURL]
	if !ok {
		return nil, &types.FetchError{URL: rawURL, StatusCode: 404, Err: errors.New("not found")}
	}
	return &types.Response{
		URL:         rawURL,
		FinalURL:    rawURL,
		StatusCode:  200,
		Body:        []byte(body),
		ContentType: "text/html",
	}, nil
}

func (s *stubFetcher) Close() error { return nil }

func testConfig(resultsDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Scrape.BaseURL = "https://test.local/jual/rumah/"
	cfg.Scrape.StartPage = 1
	cfg.Scrape.Pages = 2
	cfg.Scrape.DelayMin = 0
	cfg.Scrape.DelayMax = 0
	cfg.Scrape.ResultsDir = resultsDir
	return cfg
}

func listingBody(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href=%q>card</a>`, h)
	}
	b.WriteString(`<a href="/agen/x/">agen</a></body></html>`)
	return b.String()
}

func detailBody(title, price string) string {
	return fmt.Sprintf(`<html><body>
<h1 class="text-gray-800">%s</h1>
<span class="text-primary font-bold">%s</span>
</body></html>`, title, price)
}

func TestLinkCollectorRun(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	fetch := &stubFetcher{pages: map[string]string{
		"https://test.local/jual/rumah/?page=1": listingBody("/properti/a/", "/properti/b/"),
		"https://test.local/jual/rumah/?page=2": listingBody("/properti/b/", "/properti/c/"),
	}}

	session, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}

	c := NewLinkCollector(cfg, fetch, session, testLogger)
	count, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// /properti/b/ appears on both pages but is written once.
	if count != 3 {
		t.Errorf("count = %d", count)
	}

	links, err := storage.ReadLinks(session.LinksPath())
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 3 || links[0] != "https://test.local/properti/a/" {
		t.Fatalf("links = %v", links)
	}

	prog, err := LoadProgress(session.ProgressPath())
	if err != nil {
		t.Fatal(err)
	}
	if prog == nil || prog.LastPage != 2 || prog.LinkCount != 3 {
		t.Errorf("progress = %+v", prog)
	}
}

func TestLinkCollectorDedupsAcrossPages(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	fetch := &stubFetcher{pages: map[string]string{
		"https://test.local/jual/rumah/?page=1": listingBody("/properti/dup/", "/properti/a/"),
		"https://test.local/jual/rumah/?page=2": listingBody("/properti/dup/", "/properti/b/"),
	}}

	session, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}

	c := NewLinkCollector(cfg, fetch, session, testLogger)
	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	links, err := storage.ReadLinks(session.LinksPath())
	if err != nil {
		t.Fatal(err)
	}
	occurrences := 0
	for _, link := range links {
		if link == "https://test.local/properti/dup/" {
			occurrences++
		}
	}
	if occurrences != 1 {
		t.Errorf("duplicate link written %d times: %v", occurrences, links)
	}
	if len(links) != 3 {
		t.Errorf("expected 3 unique links, got %v", links)
	}
}

func TestLinkCollectorSkipsFailedPage(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	fetch := &stubFetcher{
		pages: map[string]string{
			"https://test.local/jual/rumah/?page=2": listingBody("/properti/c/"),
		},
		fail: map[string]bool{"https://test.local/jual/rumah/?page=1": true},
	}

	session, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}

	c := NewLinkCollector(cfg, fetch, session, testLogger)
	count, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d", count)
	}
}

func TestDetailExtractorStartLinkSkips(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	links := []string{
		"https://test.local/properti/a/",
		"https://test.local/properti/b/",
		"https://test.local/properti/c/",
	}
	fetch := &stubFetcher{pages: map[string]string{
		links[2]: detailBody("Rumah C", "Rp 1 Miliar"),
	}}

	session, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewCSVStorage(session.CSVPath(), false, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	e := NewDetailExtractor(cfg, fetch, store, session, session.LinksPath(), false, testLogger)
	records, stats, err := e.Run(context.Background(), links, 3)
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	// --start-link 3 skips exactly the first two links.
	if stats.Skipped != 2 || stats.Stored != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(records) != 1 || records[0].Title != "Rumah C" {
		t.Fatalf("records = %+v", records)
	}

	prog, err := LoadProgress(session.ProgressPath())
	if err != nil {
		t.Fatal(err)
	}
	if prog == nil || prog.LastLink != 3 {
		t.Errorf("progress = %+v", prog)
	}
}

func TestDetailExtractorOffsetPastEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	session, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewCSVStorage(session.CSVPath(), false, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	e := NewDetailExtractor(cfg, &stubFetcher{}, store, session, session.LinksPath(), false, testLogger)
	_, _, err = e.Run(context.Background(), []string{"https://test.local/properti/a/"}, 5)
	if !errors.Is(err, types.ErrOffsetTooFar) {
		t.Fatalf("expected ErrOffsetTooFar, got %v", err)
	}
}

func TestDetailExtractorContinuesOnError(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	links := []string{
		"https://test.local/properti/a/",
		"https://test.local/properti/b/",
		"https://test.local/properti/c/",
	}
	fetch := &stubFetcher{
		pages: map[string]string{
			links[0]: detailBody("Rumah A", "Rp 1 Miliar"),
			links[2]: detailBody("Rumah C", "Rp 2 Miliar"),
		},
		fail: map[string]bool{links[1]: true},
	}

	session, err := NewSession(dir)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewCSVStorage(session.CSVPath(), false, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	e := NewDetailExtractor(cfg, fetch, store, session, session.LinksPath(), false, testLogger)
	_, stats, err := e.Run(context.Background(), links, 1)
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	if stats.Stored != 2 || stats.Failed != 1 {
		t.Errorf("stats = %+v", stats)
	}

	f, err := os.Open(session.CSVPath())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header plus the two successful records; the failed link is absent,
	// not an empty row.
	if len(rows) != 3 {
		t.Fatalf("expected 3 csv rows, got %d", len(rows))
	}
}

func TestCombineLinks(t *testing.T) {
	dir := t.TempDir()

	write := func(session string, links ...string) {
		sdir := filepath.Join(dir, session)
		if err := os.MkdirAll(sdir, 0o755); err != nil {
			t.Fatal(err)
		}
		content := strings.Join(links, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(sdir, "property_links.txt"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("session_20240101_000000", "https://x/properti/a/", "https://x/properti/b/")
	write("session_20240102_000000", "https://x/properti/b/", "https://x/properti/c/")

	stats, err := CombineLinks(dir, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Sessions != 2 || stats.TotalLinks != 4 || stats.Prior != 0 || stats.Unique != 3 {
		t.Errorf("stats = %+v", stats)
	}

	links, err := storage.ReadLinks(stats.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 3 || links[0] != "https://x/properti/a/" {
		t.Fatalf("links = %v", links)
	}

	// With nothing new since the first rollup, no file is written.
	again, err := CombineLinks(dir, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if again.Prior != 3 || again.Unique != 0 || again.OutputPath != "" {
		t.Errorf("repeat rollup stats = %+v", again)
	}

	// A later session with one fresh link yields a second numbered file
	// carrying only that link.
	write("session_20240103_000000", "https://x/properti/b/", "https://x/properti/d/")
	third, err := CombineLinks(dir, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if third.Prior != 3 || third.Unique != 1 {
		t.Errorf("third rollup stats = %+v", third)
	}
	if third.OutputPath == stats.OutputPath || third.OutputPath == "" {
		t.Fatalf("third rollup output = %q", third.OutputPath)
	}
	newLinks, err := storage.ReadLinks(third.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(newLinks) != 1 || newLinks[0] != "https://x/properti/d/" {
		t.Errorf("new links = %v", newLinks)
	}
}

func TestCombineLinksNoSessions(t *testing.T) {
	if _, err := CombineLinks(t.TempDir(), testLogger); err == nil {
		t.Fatal("expected error for empty results dir")
	}
}

func TestProgressRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	if err := SaveProgress(path, &Progress{Mode: "details", LastLink: 42}); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProgress(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Mode != "details" || p.LastLink != 42 {
		t.Errorf("progress = %+v", p)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("updated_at not set")
	}
}

func TestLoadProgressMissing(t *testing.T) {
	p, err := LoadProgress(filepath.Join(t.TempDir(), "progress.json"))
	if err != nil || p != nil {
		t.Fatalf("expected nil, nil; got %v, %v", p, err)
	}
}
