package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern matches the first contiguous digit run, optionally with
// one decimal point, anywhere in a string.
var numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// parseFloatOrDefault parses a trimmed string as a float, failing
// closed to def on empty or non-numeric input.
func parseFloatOrDefault(raw string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return v
}

// parseIntOrDefault parses a trimmed string as an integer, truncating
// decimal values, failing closed to def.
func parseIntOrDefault(raw string, def int) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return int(v)
}

// extractLeadingNumber returns the first number substring found in
// text. Used for price and rating text that carries currency symbols
// or units.
func extractLeadingNumber(text string) (string, bool) {
	m := numberPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return m, true
}

// normalizeRatingToFiveScale maps a rating onto a 0-5 scale. Structured
// metadata may report ratings out of 10 or 100; when scaleMax is
// positive the value is rescaled, otherwise it is assumed to already be
// on a 5-point scale. Result is rounded to 2 decimals.
func normalizeRatingToFiveScale(value, scaleMax float64) float64 {
	if scaleMax > 0 {
		return round2(value / scaleMax * 5)
	}
	return round2(value)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
