package scrape

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/storage"
)

// CombineStats summarizes a links rollup.
type CombineStats struct {
	Sessions   int
	TotalLinks int
	Prior      int    // links already present in earlier rollups
	Unique     int    // new links written this rollup
	OutputPath string // empty when no new links were found
}

// CombineLinks merges the property links of every session under resultsDir
// into a numbered file under resultsDir/combined_links/. Links already
// present in earlier combined files are skipped, so each rollup carries
// only what is new since the last one; when nothing is new, no file is
// written.
func CombineLinks(resultsDir string, logger *slog.Logger) (*CombineStats, error) {
	log := logger.With("component", "combine")

	sessions, err := filepath.Glob(filepath.Join(resultsDir, "session_*", "property_links.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	sort.Strings(sessions)
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no session link files under %s", resultsDir)
	}

	outDir := filepath.Join(resultsDir, "combined_links")
	seen, err := readPriorLinks(outDir, log)
	if err != nil {
		return nil, err
	}
	prior := len(seen)

	var combined []string
	total := 0

	for _, path := range sessions {
		links, err := storage.ReadLinks(path)
		if err != nil {
			log.Warn("session skipped", "path", path, "error", err)
			continue
		}
		total += len(links)
		for _, link := range links {
			if !seen[link] {
				seen[link] = true
				combined = append(combined, link)
			}
		}
		log.Info("session merged", "path", path, "links", len(links))
	}

	stats := &CombineStats{
		Sessions:   len(sessions),
		TotalLinks: total,
		Prior:      prior,
		Unique:     len(combined),
	}

	if len(combined) == 0 {
		log.Info("no new links since last rollup", "sessions", stats.Sessions, "prior", prior)
		return stats, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create combined dir: %w", err)
	}
	outPath, err := nextCombinedPath(outDir)
	if err != nil {
		return nil, err
	}

	lf, err := storage.NewLinksFile(outPath, logger)
	if err != nil {
		return nil, err
	}
	if err := lf.Append(combined); err != nil {
		lf.Close()
		return nil, err
	}
	if err := lf.Close(); err != nil {
		return nil, err
	}

	stats.OutputPath = outPath
	log.Info("links combined",
		"sessions", stats.Sessions,
		"total", stats.TotalLinks,
		"prior", stats.Prior,
		"new", stats.Unique,
		"output", stats.OutputPath,
	)
	return stats, nil
}

// readPriorLinks loads every earlier combined file into a seen-set.
func readPriorLinks(outDir string, log *slog.Logger) (map[string]bool, error) {
	seen := make(map[string]bool)

	priors, err := filepath.Glob(filepath.Join(outDir, "combined_property_links_*.txt"))
	if err != nil {
		return nil, fmt.Errorf("scan combined files: %w", err)
	}
	sort.Strings(priors)

	for _, path := range priors {
		links, err := storage.ReadLinks(path)
		if err != nil {
			log.Warn("combined file skipped", "path", path, "error", err)
			continue
		}
		for _, link := range links {
			seen[link] = true
		}
	}
	return seen, nil
}

// nextCombinedPath finds the first unused numbered output file name.
func nextCombinedPath(dir string) (string, error) {
	for n := 1; n < 1000; n++ {
		path := filepath.Join(dir, fmt.Sprintf("combined_property_links_%02d.txt", n))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("too many combined link files in %s", dir)
}
