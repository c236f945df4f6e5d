package storage

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestLinksFileAppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "property_links.txt")

	lf, err := NewLinksFile(path, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := lf.Append([]string{"https://example.com/properti/a/", "https://example.com/properti/b/"}); err != nil {
		t.Fatal(err)
	}
	if err := lf.Append([]string{"https://example.com/properti/c/"}); err != nil {
		t.Fatal(err)
	}
	if lf.Count() != 3 {
		t.Errorf("count = %d", lf.Count())
	}
	if err := lf.Close(); err != nil {
		t.Fatal(err)
	}

	links, err := ReadLinks(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 3 || links[0] != "https://example.com/properti/a/" {
		t.Fatalf("unexpected links: %v", links)
	}
}

func TestLinksFileAppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "property_links.txt")

	// Two sequential opens append, not truncate.
	for _, link := range []string{"https://example.com/properti/a/", "https://example.com/properti/b/"} {
		lf, err := NewLinksFile(path, testLogger)
		if err != nil {
			t.Fatal(err)
		}
		if err := lf.Append([]string{link}); err != nil {
			t.Fatal(err)
		}
		lf.Close()
	}

	links, err := ReadLinks(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links after reopen, got %v", links)
	}
}

func TestCSVStorageWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.csv")

	s, err := NewCSVStorage(path, false, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	rec := types.NewPropertyRecord("https://example.com/properti/a/")
	rec.Title = "Rumah A"
	if err := s.Store(rec); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen in resume mode and add another record.
	s, err = NewCSVStorage(path, true, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	rec2 := types.NewPropertyRecord("https://example.com/properti/b/")
	rec2.Title = "Rumah B"
	if err := s.Store(rec2); err != nil {
		t.Fatal(err)
	}
	s.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// One header plus two data rows.
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "url" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Rumah A" || rows[2][1] != "Rumah B" {
		t.Errorf("data rows = %v / %v", rows[1], rows[2])
	}
	for i, row := range rows {
		if len(row) != len(types.CSVHeader()) {
			t.Errorf("row %d width %d != %d", i, len(row), len(types.CSVHeader()))
		}
	}
}

func TestWriteSpecSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specifications_summary.csv")

	a := types.NewPropertyRecord("https://example.com/properti/a/")
	a.SetSpec("Sertifikat", "SHM")
	a.SetSpec("Luas Tanah", "120 m²")
	b := types.NewPropertyRecord("https://example.com/properti/b/")
	b.SetSpec("Sertifikat", "HGB")

	if err := WriteSpecSummary(path, []*types.PropertyRecord{a, b}); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 labels, got %v", rows)
	}
	// Sorted by count descending: sertifikat (2) before luas tanah (1).
	if rows[1][0] != "sertifikat" || rows[1][1] != "2" || rows[1][2] != "SHM" {
		t.Errorf("first label row = %v", rows[1])
	}
	if rows[2][0] != "luas tanah" || rows[2][1] != "1" {
		t.Errorf("second label row = %v", rows[2])
	}
}

func TestWriteSpecSummaryEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specifications_summary.csv")
	if err := WriteSpecSummary(path, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "specification,count,sample_value\n" {
		t.Errorf("unexpected content: %q", string(data))
	}
}
