package storage

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// --- Links File ---

// LinksFile appends property URLs to a plain text file, one per line.
// Every append is flushed so an interrupted run keeps everything written
// so far.
type LinksFile struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewLinksFile opens (or creates) the links file for appending.
func NewLinksFile(path string, logger *slog.Logger) (*LinksFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	return &LinksFile{
		path:   path,
		file:   f,
		writer: bufio.NewWriter(f),
		logger: logger.With("component", "links_file"),
	}, nil
}

// Append writes a batch of URLs and flushes to disk.
func (l *LinksFile) Append(links []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, link := range links {
		if _, err := l.writer.WriteString(link + "\n"); err != nil {
			return &types.StorageError{Backend: "links_file", Err: err}
		}
	}
	if err := l.writer.Flush(); err != nil {
		return &types.StorageError{Backend: "links_file", Err: err}
	}
	l.count += len(links)
	return nil
}

// Count returns the number of links written in this run.
func (l *LinksFile) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Close flushes and closes the file.
func (l *LinksFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		l.file.Close()
		return err
	}
	l.logger.Info("links file closed", "path", l.path, "links", l.count)
	return l.file.Close()
}

// ReadLinks loads a links file, skipping blank lines.
func ReadLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer f.Close()

	var links []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			links = append(links, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	return links, nil
}

// --- CSV Storage ---

// CSVStorage writes records to a CSV file with a fixed column set. Each
// record is flushed immediately after writing.
type CSVStorage struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVStorage creates the CSV sink. With resume set, the file is opened
// for appending and the header is only written when the file is empty.
func NewCSVStorage(path string, resume bool, logger *slog.Logger) (*CSVStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}

	needHeader := true
	if resume {
		if info, err := f.Stat(); err == nil && info.Size() > 0 {
			needHeader = false
		}
	}

	s := &CSVStorage{
		path:   path,
		file:   f,
		writer: csv.NewWriter(f),
		logger: logger.With("component", "csv_storage"),
	}

	if needHeader {
		if err := s.writer.Write(types.CSVHeader()); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		s.writer.Flush()
		if err := s.writer.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("flush csv header: %w", err)
		}
	}

	return s, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(rec *types.PropertyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Write(rec.CSVRow()); err != nil {
		return &types.StorageError{Backend: "csv", Err: err}
	}
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return &types.StorageError{Backend: "csv", Err: err}
	}
	s.count++
	s.logger.Debug("record stored", "url", rec.URL, "total", s.count)
	return nil
}

func (s *CSVStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	s.logger.Info("csv closed", "path", s.path, "records", s.count)
	return s.file.Close()
}

// --- Specification Summary ---

// WriteSpecSummary writes an inventory of every specification label seen
// across the run: how many records carried it and one sample value. The
// file is written even when no labels were seen, so a run always produces
// the same file set.
func WriteSpecSummary(path string, records []*types.PropertyRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer f.Close()

	counts := make(map[string]int)
	samples := make(map[string]string)
	for _, rec := range records {
		for _, label := range rec.SpecLabels() {
			counts[label]++
			if _, ok := samples[label]; !ok {
				samples[label] = rec.Spec(label)
			}
		}
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	w := csv.NewWriter(f)
	if err := w.Write([]string{"specification", "count", "sample_value"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, label := range labels {
		row := []string{label, strconv.Itoa(counts[label]), samples[label]}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
