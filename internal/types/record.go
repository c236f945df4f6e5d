package types

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// PropertyRecord is a single scraped property listing. Fields that could not
// be found on the page stay as zero values and serialize as empty CSV cells.
type PropertyRecord struct {
	// URL is the detail page this record was extracted from.
	URL string

	Title    string
	Location string

	// Price is the advertised price as shown on the page ("Rp 1,2 Miliar").
	Price string
	// PriceNumeric is the parsed rupiah value, 0 when unparseable.
	PriceNumeric float64

	// OriginalPrice is the pre-discount price when the listing is marked down.
	OriginalPrice        string
	OriginalPriceNumeric float64
	Savings              string

	PropertyType string

	LandArea     string
	BuildingArea string
	Bedrooms     string
	Bathrooms    string
	Floors       string
	Certificate  string
	Electricity  string
	Furnishing   string

	UpdatedDate     string
	PostedBy        string
	InstallmentInfo string
	Description     string

	// Specs holds every labeled specification row found on the page,
	// including ones that also populated a fixed field above.
	Specs map[string]string

	// ScrapedAt is when this record was created.
	ScrapedAt time.Time
}

// NewPropertyRecord creates an empty record for a detail page URL.
func NewPropertyRecord(sourceURL string) *PropertyRecord {
	return &PropertyRecord{
		URL:       sourceURL,
		Specs:     make(map[string]string),
		ScrapedAt: time.Now(),
	}
}

// SetSpec stores a labeled specification value under a normalized key.
func (r *PropertyRecord) SetSpec(label, value string) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), ":")))
	if key == "" || strings.TrimSpace(value) == "" {
		return
	}
	r.Specs[key] = strings.TrimSpace(value)
}

// Spec retrieves a specification value by its normalized label.
func (r *PropertyRecord) Spec(label string) string {
	return r.Specs[strings.ToLower(label)]
}

// SpecLabels returns the record's specification labels in sorted order.
func (r *PropertyRecord) SpecLabels() []string {
	labels := make([]string, 0, len(r.Specs))
	for k := range r.Specs {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// SpecsText flattens the spec map into a single "label: value; ..." cell.
func (r *PropertyRecord) SpecsText() string {
	labels := r.SpecLabels()
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, label+": "+r.Specs[label])
	}
	return strings.Join(parts, "; ")
}

// CSVHeader is the fixed column order for property CSV output.
func CSVHeader() []string {
	return []string{
		"url",
		"title",
		"location",
		"price",
		"price_numeric",
		"original_price",
		"original_price_numeric",
		"savings",
		"property_type",
		"land_area",
		"building_area",
		"bedrooms",
		"bathrooms",
		"floors",
		"certificate",
		"electricity",
		"furnishing",
		"updated_date",
		"posted_by",
		"installment_info",
		"description",
		"specifications",
		"scraped_at",
	}
}

// CSVRow renders the record in CSVHeader order.
func (r *PropertyRecord) CSVRow() []string {
	return []string{
		r.URL,
		r.Title,
		r.Location,
		r.Price,
		formatNumeric(r.PriceNumeric),
		r.OriginalPrice,
		formatNumeric(r.OriginalPriceNumeric),
		r.Savings,
		r.PropertyType,
		r.LandArea,
		r.BuildingArea,
		r.Bedrooms,
		r.Bathrooms,
		r.Floors,
		r.Certificate,
		r.Electricity,
		r.Furnishing,
		r.UpdatedDate,
		r.PostedBy,
		r.InstallmentInfo,
		r.Description,
		r.SpecsText(),
		r.ScrapedAt.Format(time.RFC3339),
	}
}

// ToMap flattens the record for document-oriented sinks.
func (r *PropertyRecord) ToMap() map[string]any {
	doc := map[string]any{
		"url":           r.URL,
		"title":         r.Title,
		"location":      r.Location,
		"price":         r.Price,
		"property_type": r.PropertyType,
		"scraped_at":    r.ScrapedAt,
	}
	if r.PriceNumeric > 0 {
		doc["price_numeric"] = r.PriceNumeric
	}
	if r.OriginalPrice != "" {
		doc["original_price"] = r.OriginalPrice
	}
	if r.OriginalPriceNumeric > 0 {
		doc["original_price_numeric"] = r.OriginalPriceNumeric
	}
	if r.Savings != "" {
		doc["savings"] = r.Savings
	}
	if r.LandArea != "" {
		doc["land_area"] = r.LandArea
	}
	if r.BuildingArea != "" {
		doc["building_area"] = r.BuildingArea
	}
	if r.Bedrooms != "" {
		doc["bedrooms"] = r.Bedrooms
	}
	if r.Bathrooms != "" {
		doc["bathrooms"] = r.Bathrooms
	}
	if r.Description != "" {
		doc["description"] = r.Description
	}
	if len(r.Specs) > 0 {
		doc["specifications"] = r.Specs
	}
	return doc
}

// formatNumeric renders a parsed price, empty when the value is unset.
func formatNumeric(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
