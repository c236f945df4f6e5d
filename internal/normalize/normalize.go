// Package normalize converts scraped Indonesian listing text into numbers.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe = regexp.MustCompile(`[0-9][0-9.,]*`)
	digitsRe = regexp.MustCompile(`[0-9]+`)
)

// Price parses an Indonesian price string ("Rp 1,5 Miliar", "Rp 950 Juta",
// "Rp 850.000.000") into rupiah. Returns false when no number is present.
func Price(text string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, false
	}

	multiplier := 1.0
	switch {
	case strings.Contains(lower, "miliar"), strings.Contains(lower, "milyar"), hasUnitSuffix(lower, "m"):
		multiplier = 1_000_000_000
	case strings.Contains(lower, "juta"), hasUnitSuffix(lower, "jt"):
		multiplier = 1_000_000
	case strings.Contains(lower, "ribu"), hasUnitSuffix(lower, "rb"):
		multiplier = 1_000
	}

	raw := numberRe.FindString(lower)
	if raw == "" {
		return 0, false
	}

	value, ok := parseDecimal(raw)
	if !ok {
		return 0, false
	}
	return value * multiplier, true
}

// Area parses an area string ("120 m²", "84") into square meters.
func Area(text string) (float64, bool) {
	raw := numberRe.FindString(strings.TrimSpace(text))
	if raw == "" {
		return 0, false
	}
	return parseDecimal(raw)
}

// Count parses an integer quantity ("3", "3 kamar") such as a bedroom count.
func Count(text string) (int, bool) {
	raw := digitsRe.FindString(strings.TrimSpace(text))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseDecimal handles Indonesian digit grouping: dots group thousands
// ("850.000.000", "1.250") and the comma is the decimal mark ("1,5").
func parseDecimal(raw string) (float64, bool) {
	if strings.Contains(raw, ",") || isDotGrouped(raw) {
		raw = strings.ReplaceAll(raw, ".", "")
	}
	raw = strings.ReplaceAll(raw, ",", ".")

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// isDotGrouped reports whether every dot in the number separates groups of
// exactly three digits, i.e. the dots are thousands separators.
func isDotGrouped(raw string) bool {
	if !strings.Contains(raw, ".") {
		return false
	}
	groups := strings.Split(raw, ".")
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// hasUnitSuffix reports whether the text ends with a bare unit token ("m",
// "jt", "rb") that would not be caught by a substring match on the long form.
func hasUnitSuffix(lower, unit string) bool {
	trimmed := strings.TrimRight(lower, " .")
	if !strings.HasSuffix(trimmed, unit) {
		return false
	}
	// The char before the unit must not be a letter ("5 m" yes, "per m" no).
	idx := len(trimmed) - len(unit) - 1
	if idx < 0 {
		return false
	}
	c := trimmed[idx]
	return c == ' ' || (c >= '0' && c <= '9')
}
