package parser

import (
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// ListingParser extracts property detail-page links from a listing page.
type ListingParser struct {
	// linkPrefix is the URL path prefix that marks a detail-page anchor.
	linkPrefix string
	logger     *slog.Logger
}

// NewListingParser creates a listing-page parser.
func NewListingParser(linkPrefix string, logger *slog.Logger) *ListingParser {
	return &ListingParser{
		linkPrefix: linkPrefix,
		logger:     logger.With("component", "listing_parser"),
	}
}

// Links returns the unique detail-page URLs found on a listing page,
// resolved to absolute form, in document order.
func (p *ListingParser) Links(resp *types.Response) ([]string, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.URL, Err: err}
	}

	base, err := url.Parse(resp.FinalURL)
	if err != nil {
		base, err = url.Parse(resp.URL)
		if err != nil {
			return nil, &types.ParseError{URL: resp.URL, Err: err}
		}
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(parsed)

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.HasPrefix(resolved.Path, p.linkPrefix) {
			return
		}

		resolved.Fragment = ""
		abs := resolved.String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})

	p.logger.Debug("listing parsed", "url", resp.URL, "links", len(links))
	return links, nil
}

// CardCount counts property-card containers on a listing page. Used for
// sanity-checking that link extraction did not silently miss cards.
func (p *ListingParser) CardCount(resp *types.Response) (int, error) {
	doc, err := resp.Document()
	if err != nil {
		return 0, &types.ParseError{URL: resp.URL, Err: err}
	}

	count := 0
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if ok && strings.HasPrefix(strings.TrimSpace(href), p.linkPrefix) {
			count++
		}
	})
	return count, nil
}

// PageURL builds the URL for page n of a paginated listing.
func PageURL(baseURL string, n int) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "page=" + strconv.Itoa(n)
}
