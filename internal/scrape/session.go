package scrape

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is a timestamped output directory under the results root. Every
// run writes its links file, CSV, summary, log, and progress state into its
// own session directory so runs never overwrite each other.
type Session struct {
	// Dir is the absolute or relative session directory path.
	Dir string

	// Name is the directory basename, e.g. "session_20240112_153045".
	Name string
}

// NewSession creates a fresh session directory under resultsDir.
func NewSession(resultsDir string) (*Session, error) {
	name := "session_" + time.Now().Format("20060102_150405")
	dir := filepath.Join(resultsDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Session{Dir: dir, Name: name}, nil
}

// OpenSession wraps an existing directory, for resumed runs that should
// keep appending to a previous session's files.
func OpenSession(dir string) (*Session, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open session dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("session path is not a directory: %s", dir)
	}
	return &Session{Dir: dir, Name: filepath.Base(dir)}, nil
}

// LinksPath is the property links text file.
func (s *Session) LinksPath() string { return filepath.Join(s.Dir, "property_links.txt") }

// CSVPath is the extracted property data CSV.
func (s *Session) CSVPath() string { return filepath.Join(s.Dir, "properties.csv") }

// SummaryPath is the specification label inventory CSV.
func (s *Session) SummaryPath() string { return filepath.Join(s.Dir, "specifications_summary.csv") }

// LogPath is the session's log file.
func (s *Session) LogPath() string { return filepath.Join(s.Dir, "scrape.log") }

// ProgressPath is the resumable progress state file.
func (s *Session) ProgressPath() string { return filepath.Join(s.Dir, "progress.json") }
