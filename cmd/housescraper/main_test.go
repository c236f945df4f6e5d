package main

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
)

func resetFlags() {
	mode, baseURL, delayMin, delayMax = "", "", "", ""
	linksFile, resultsDir, fetcherType, storageType = "", "", "", ""
	startPage, pages, startLink = 0, 0, 0
	verbose = false
}

func TestApplyCLIOverrides(t *testing.T) {
	resetFlags()
	defer resetFlags()

	mode = "LINKS"
	delayMin = "1s"
	delayMax = "3s"
	startPage = 4
	pages = 2

	cfg := config.DefaultConfig()
	if err := applyCLIOverrides(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Scrape.Mode != config.ModeLinks {
		t.Errorf("mode = %q", cfg.Scrape.Mode)
	}
	if cfg.Scrape.DelayMin != time.Second || cfg.Scrape.DelayMax != 3*time.Second {
		t.Errorf("delays = %s / %s", cfg.Scrape.DelayMin, cfg.Scrape.DelayMax)
	}
	if cfg.Scrape.StartPage != 4 || cfg.Scrape.Pages != 2 {
		t.Errorf("pages = %d from %d", cfg.Scrape.Pages, cfg.Scrape.StartPage)
	}
}

func TestApplyCLIOverridesRejectsBadDelay(t *testing.T) {
	resetFlags()
	defer resetFlags()

	// A bare number has no unit and must not silently fall back to the
	// configured delay.
	delayMin = "2"
	cfg := config.DefaultConfig()
	err := applyCLIOverrides(cfg)
	if err == nil {
		t.Fatal("expected error for unitless --delay-min")
	}
	if !strings.Contains(err.Error(), "delay-min") {
		t.Errorf("error does not name the flag: %v", err)
	}
	if cfg.Scrape.DelayMin != 2*time.Second {
		t.Errorf("config delay mutated to %s", cfg.Scrape.DelayMin)
	}

	resetFlags()
	delayMax = "fast"
	err = applyCLIOverrides(config.DefaultConfig())
	if err == nil || !strings.Contains(err.Error(), "delay-max") {
		t.Fatalf("expected --delay-max error, got %v", err)
	}
}

func TestProgressEnabled(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	// A pipe is not a terminal, so no bar regardless of verbosity.
	if progressEnabled(false, int(w.Fd())) {
		t.Error("progress bar enabled on a pipe")
	}
	if progressEnabled(true, int(w.Fd())) {
		t.Error("progress bar enabled with verbose logging")
	}
}
