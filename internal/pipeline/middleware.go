package pipeline

import (
	"html"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// --- Built-in Middleware ---

// CleanTextMiddleware strips stray HTML tags, decodes entities, and
// collapses whitespace in every text field of a record.
type CleanTextMiddleware struct {
	stripRe *regexp.Regexp
}

func NewCleanTextMiddleware() *CleanTextMiddleware {
	return &CleanTextMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *CleanTextMiddleware) Name() string { return "clean_text" }

func (m *CleanTextMiddleware) Process(rec *types.PropertyRecord) (*types.PropertyRecord, error) {
	fields := []*string{
		&rec.Title, &rec.Location, &rec.Price, &rec.OriginalPrice,
		&rec.Savings, &rec.PropertyType, &rec.LandArea, &rec.BuildingArea,
		&rec.Bedrooms, &rec.Bathrooms, &rec.Floors, &rec.Certificate,
		&rec.Electricity, &rec.Furnishing, &rec.UpdatedDate, &rec.PostedBy,
		&rec.InstallmentInfo, &rec.Description,
	}
	for _, f := range fields {
		*f = m.clean(*f)
	}
	for label, value := range rec.Specs {
		rec.Specs[label] = m.clean(value)
	}
	return rec, nil
}

func (m *CleanTextMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	s = m.stripRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// RequiredURLMiddleware drops records with no source URL. A record without
// its URL cannot be traced back or deduplicated.
type RequiredURLMiddleware struct{}

func (m *RequiredURLMiddleware) Name() string { return "required_url" }

func (m *RequiredURLMiddleware) Process(rec *types.PropertyRecord) (*types.PropertyRecord, error) {
	if strings.TrimSpace(rec.URL) == "" {
		return nil, nil
	}
	return rec, nil
}

// DedupMiddleware drops records whose URL has already passed through the
// pipeline in this run.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]bool
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[string]bool)}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(rec *types.PropertyRecord) (*types.PropertyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[rec.URL] {
		return nil, nil
	}
	m.seen[rec.URL] = true
	return rec, nil
}

// Default builds the standard record pipeline used by the detail phase.
func Default(logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(&RequiredURLMiddleware{})
	p.Use(NewCleanTextMiddleware())
	p.Use(NewDedupMiddleware())
	return p
}
