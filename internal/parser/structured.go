package parser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// JSONLD is a single parsed ld+json block.
type JSONLD map[string]any

// ExtractJSONLD parses every <script type="application/ld+json"> element in
// the document. Blocks holding a top-level array are flattened into one
// entry per object; malformed blocks are skipped.
func ExtractJSONLD(doc *goquery.Document) []JSONLD {
	var results []JSONLD

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			results = append(results, obj)
			return
		}

		var arr []map[string]any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			for _, obj := range arr {
				results = append(results, obj)
			}
		}
	})

	return results
}

// String returns a top-level string property, "" when absent.
func (d JSONLD) String(key string) string {
	if s, ok := d[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Object returns a nested object property, nil when absent.
func (d JSONLD) Object(key string) JSONLD {
	if m, ok := d[key].(map[string]any); ok {
		return m
	}
	return nil
}

// Number returns a numeric property as float64. JSON numbers decode to
// float64; numeric strings are accepted too since listing sites emit both.
func (d JSONLD) Number(key string) (float64, bool) {
	switch v := d[key].(type) {
	case float64:
		return v, true
	case string:
		var f float64
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// PostalAddress flattens a schema.org address object into one line.
func (d JSONLD) PostalAddress() string {
	addr := d.Object("address")
	if addr == nil {
		return ""
	}
	var parts []string
	for _, field := range []string{"streetAddress", "addressLocality", "addressRegion"} {
		if s := addr.String(field); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
