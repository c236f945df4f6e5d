package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/normalize"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// Selector fallback chains for the fixed detail-page fields. Rumah123 ships
// utility-class markup that shifts between releases, so each field tries a
// list of selectors in order and takes the first non-empty match.
var (
	titleSelectors = []string{
		"h1.text-gray-800",
		"h1[data-testid='listing-title']",
		"h1",
	}
	locationSelectors = []string{
		"p.text-xs.text-gray-500",
		"p[data-testid='listing-location']",
	}
	priceSelectors = []string{
		"span.text-primary.font-bold",
		"span[data-testid='listing-price']",
	}
	originalPriceSelectors = []string{
		"span.text-greyText.font-medium.line-through",
		"span.line-through",
	}
	savingsSelectors = []string{
		"span.text-accent.mr-1.font-medium",
	}
	descriptionSelectors = []string{
		"div#property-information p.text-sm.font-light.mb-6.whitespace-pre-wrap",
		"div.text-sm.text-gray-800.whitespace-pre-line",
		"div.whitespace-pre-line",
		"div[data-testid='description']",
	}
	specRowSelectors = []string{
		"div#property-information div.mb-4.flex.items-center.gap-4.text-sm",
		"div.mb-4.flex.items-center.gap-4.text-sm",
		"div.flex.items-center.gap-4.text-sm",
	}
	specLabelSelector = "p.w-32.text-xs.font-light.text-gray-500, span.text-xs.text-gray-500, span.text-sm.text-gray-500"
	specValueSelector = "p:not(.w-32), span.text-xs.font-medium, span.text-sm.font-medium"
)

// Known property-type badge values on detail pages.
var propertyTypes = []string{"Rumah", "Apartemen", "Tanah", "Ruko", "Kost", "Villa"}

// Specification labels mapped onto fixed record fields. Labels are matched
// after lowercasing and colon-stripping.
var fixedSpecFields = map[string]func(*types.PropertyRecord, string){
	"luas tanah":        func(r *types.PropertyRecord, v string) { r.LandArea = v },
	"luas bangunan":     func(r *types.PropertyRecord, v string) { r.BuildingArea = v },
	"kamar tidur":       func(r *types.PropertyRecord, v string) { r.Bedrooms = v },
	"kamar mandi":       func(r *types.PropertyRecord, v string) { r.Bathrooms = v },
	"jumlah lantai":     func(r *types.PropertyRecord, v string) { r.Floors = v },
	"sertifikat":        func(r *types.PropertyRecord, v string) { r.Certificate = v },
	"daya listrik":      func(r *types.PropertyRecord, v string) { r.Electricity = v },
	"kondisi perabotan": func(r *types.PropertyRecord, v string) { r.Furnishing = v },
	"tipe properti":     func(r *types.PropertyRecord, v string) { r.PropertyType = v },
}

var (
	updatedRe = regexp.MustCompile(`Diperbarui\s+(\d+\s+\w+\s+\d+)`)
	posterRe  = regexp.MustCompile(`oleh\s+(.+)$`)
)

// DetailParser extracts a PropertyRecord from a property detail page.
type DetailParser struct {
	logger *slog.Logger
}

// NewDetailParser creates a detail-page parser.
func NewDetailParser(logger *slog.Logger) *DetailParser {
	return &DetailParser{
		logger: logger.With("component", "detail_parser"),
	}
}

// Parse extracts the fixed field set from a detail page. Fields that cannot
// be found stay empty; only a document-level parse failure is an error.
func (p *DetailParser) Parse(resp *types.Response) (*types.PropertyRecord, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.URL, Err: err}
	}

	rec := types.NewPropertyRecord(resp.URL)

	rec.Title = firstText(doc, titleSelectors)
	rec.Location = firstText(doc, locationSelectors)

	if price := firstText(doc, priceSelectors); price != "" {
		rec.Price = price
		if v, ok := normalize.Price(price); ok {
			rec.PriceNumeric = v
		}
	}
	if orig := firstText(doc, originalPriceSelectors); orig != "" {
		rec.OriginalPrice = orig
		if v, ok := normalize.Price(orig); ok {
			rec.OriginalPriceNumeric = v
		}
	}
	if savings := firstText(doc, savingsSelectors); savings != "" {
		rec.Savings = strings.TrimSpace(strings.TrimPrefix(savings, "HEMAT"))
	}

	p.parseTypeBadge(doc, rec)
	p.parseUpdatedLine(doc, rec)
	p.parseInstallment(doc, rec)
	p.parseSpecRows(doc, rec)
	rec.Description = firstText(doc, descriptionSelectors)

	p.applyJSONLD(doc, rec)
	p.applyXPathFallbacks(resp, rec)

	p.logger.Debug("detail parsed",
		"url", resp.URL,
		"title", rec.Title != "",
		"price", rec.Price != "",
		"specs", len(rec.Specs),
	)

	return rec, nil
}

// parseTypeBadge finds the property-type pill among the rounded badges.
func (p *DetailParser) parseTypeBadge(doc *goquery.Document, rec *types.PropertyRecord) {
	if rec.PropertyType != "" {
		return
	}
	doc.Find("div.rounded-full").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		for _, t := range propertyTypes {
			if text == t {
				rec.PropertyType = t
				return false
			}
		}
		return true
	})
}

// parseUpdatedLine splits "Diperbarui 12 Januari 2024 oleh Agen X" into the
// update date and the poster.
func (p *DetailParser) parseUpdatedLine(doc *goquery.Document, rec *types.PropertyRecord) {
	text := strings.TrimSpace(doc.Find("p.text-3xs.text-gray-400").First().Text())
	if text == "" {
		return
	}
	if m := updatedRe.FindStringSubmatch(text); m != nil {
		rec.UpdatedDate = m[1]
	}
	if m := posterRe.FindStringSubmatch(text); m != nil {
		rec.PostedBy = strings.TrimSpace(m[1])
	}
}

// parseInstallment finds the monthly installment teaser.
func (p *DetailParser) parseInstallment(doc *goquery.Document, rec *types.PropertyRecord) {
	doc.Find("div.installmets-container div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if strings.Contains(text, "Cicilan") {
			rec.InstallmentInfo = text
			return false
		}
		return true
	})
}

// parseSpecRows harvests every label/value specification row, both the
// always-visible block and the collapsible sections (interior, facilities,
// surroundings), whose rows share the same row markup.
func (p *DetailParser) parseSpecRows(doc *goquery.Document, rec *types.PropertyRecord) {
	for _, rowSelector := range specRowSelectors {
		doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
			label := strings.TrimSpace(row.Find(specLabelSelector).First().Text())
			value := strings.TrimSpace(row.Find(specValueSelector).First().Text())
			if len(label) < 2 || value == "" || label == value {
				return
			}
			rec.SetSpec(label, value)
		})
	}

	for label, assign := range fixedSpecFields {
		if v := rec.Spec(label); v != "" {
			assign(rec, v)
		}
	}
}

// applyJSONLD backfills title, location, and price from schema.org
// structured data when the visible markup did not yield them.
func (p *DetailParser) applyJSONLD(doc *goquery.Document, rec *types.PropertyRecord) {
	for _, data := range ExtractJSONLD(doc) {
		if rec.Title == "" {
			rec.Title = data.String("name")
		}
		if rec.Location == "" {
			rec.Location = data.PostalAddress()
		}
		if rec.PriceNumeric == 0 {
			if offers := data.Object("offers"); offers != nil {
				if v, ok := offers.Number("price"); ok {
					rec.PriceNumeric = v
					if rec.Price == "" {
						rec.Price = offers.String("price")
					}
				}
			}
		}
	}
}

// applyXPathFallbacks is the last resort for the headline fields, evaluated
// on a fresh parse of the body so goquery-invisible markup still matches.
func (p *DetailParser) applyXPathFallbacks(resp *types.Response, rec *types.PropertyRecord) {
	if rec.Title != "" && rec.Location != "" {
		return
	}
	doc, err := xpathDoc(resp.Body)
	if err != nil {
		return
	}
	if rec.Title == "" {
		rec.Title = xpathText(doc, "//h1")
	}
	if rec.Location == "" {
		rec.Location = xpathText(doc, "//h1/following-sibling::p[1]")
	}
}

// firstText returns the first non-empty trimmed text among the selectors.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
