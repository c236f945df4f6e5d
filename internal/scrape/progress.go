package scrape

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Progress is the serializable per-session run state. It is rewritten after
// every completed page or record so an interrupted run can be resumed with
// --start-page or --start-link.
type Progress struct {
	Mode      string    `json:"mode"`
	BaseURL   string    `json:"base_url,omitempty"`
	LinksFile string    `json:"links_file,omitempty"`
	LastPage  int       `json:"last_page,omitempty"`  // last fully collected listing page
	LastLink  int       `json:"last_link,omitempty"`  // 1-based number of the last stored record
	LinkCount int       `json:"link_count,omitempty"` // links collected so far
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveProgress writes the progress state atomically via a temp file rename.
func SaveProgress(path string, p *Progress) error {
	p.UpdatedAt = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create progress file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		f.Close()
		return fmt.Errorf("encode progress: %w", err)
	}
	f.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename progress file: %w", err)
	}
	return nil
}

// LoadProgress reads a progress file. A missing file returns nil, nil.
func LoadProgress(path string) (*Progress, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open progress file: %w", err)
	}
	defer f.Close()

	var p Progress
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &p, nil
}
