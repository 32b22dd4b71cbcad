package scraper

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"storesight/internal/types"
)

// shopifyCDNHost is the CDN hostname that betrays a Shopify storefront.
const shopifyCDNHost = "cdn.shopify.com"

// StructuredExtractor recovers product records from embedded JSON-LD
// product metadata.
type StructuredExtractor struct {
	logger *slog.Logger
}

// NewStructuredExtractor creates a new structured data extractor.
func NewStructuredExtractor(logger *slog.Logger) *StructuredExtractor {
	return &StructuredExtractor{
		logger: logger.With("component", "structured_extractor"),
	}
}

// IsShopify heuristically checks whether a site is built on Shopify.
// A heuristic signal only: false negatives are acceptable, false
// positives are tolerated because JSON-LD extraction is harmless.
func (se *StructuredExtractor) IsShopify(html string, doc *goquery.Document) bool {
	if strings.Contains(html, shopifyCDNHost) {
		return true
	}

	if doc.Find(`meta[name="shopify-digital-wallet"]`).Length() > 0 {
		return true
	}

	found := false
	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 200 {
			text = text[:200]
		}
		if strings.Contains(strings.ToLower(text), "shopify") {
			found = true
			return false
		}
		return true
	})

	return found
}

// Extract parses every <script type="application/ld+json"> block and
// walks it for Product objects. Malformed blocks are skipped, never
// surfaced; an empty page yields an empty list. Redundant structured
// data on a page produces duplicate records, deliberately left as-is.
func (se *StructuredExtractor) Extract(doc *goquery.Document) []types.ProductRecord {
	var products []types.ProductRecord

	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		var node any
		if err := json.Unmarshal([]byte(raw), &node); err != nil {
			se.logger.Debug("skipping malformed JSON-LD block", "block", i, "error", err)
			return
		}

		se.walk(node, &products)
	})

	return products
}

// walk recursively visits a parsed JSON-LD value: lists are expanded
// element-wise, Product objects yield one candidate each, ItemList
// objects recurse into their itemListElement entries.
func (se *StructuredExtractor) walk(node any, out *[]types.ProductRecord) {
	switch v := node.(type) {
	case []any:
		for _, el := range v {
			se.walk(el, out)
		}
	case map[string]any:
		typs := typeSet(v["@type"])

		if typs["product"] {
			if rec, ok := se.productFromLD(v); ok {
				*out = append(*out, rec)
			}
		}

		if typs["itemlist"] {
			if list, ok := v["itemListElement"].([]any); ok {
				for _, el := range list {
					// ItemListElement entries may wrap the payload in "item".
					if wrapper, ok := el.(map[string]any); ok {
						if item, ok := wrapper["item"]; ok {
							se.walk(item, out)
							continue
						}
					}
					se.walk(el, out)
				}
			}
		}
	}
}

// productFromLD builds a record from one Product object. A candidate is
// emitted only if a name or price was found; every other field defaults
// to its sentinel. Numeric parse failures drop the field, never the
// candidate.
func (se *StructuredExtractor) productFromLD(obj map[string]any) (types.ProductRecord, bool) {
	name := stringValue(obj["name"])
	if name == "" {
		name = stringValue(obj["headline"])
	}

	offers := asObject(firstOfList(obj["offers"]))

	price := stringValue(offers["price"])
	if price == "" {
		price = stringValue(asObject(offers["priceSpecification"])["price"])
	}

	availability := ""
	if av, ok := offers["availability"]; ok {
		// Schema availability is URI-like; keep the last path segment.
		parts := strings.Split(stringValue(av), "/")
		availability = parts[len(parts)-1]
	}

	rating := ""
	aggregate := asObject(firstOfList(obj["aggregateRating"]))
	if rv, ok := floatValue(aggregate["ratingValue"]); ok {
		scale := 0.0
		if br, ok := floatValue(aggregate["bestRating"]); ok {
			scale = br
		}
		rating = fmt.Sprintf("%.1f", normalizeRatingToFiveScale(rv, scale))
	}

	reviews, haveReviews := reviewCount(aggregate["reviewCount"])
	if !haveReviews {
		reviews, haveReviews = reviewCount(aggregate["ratingCount"])
	}
	if !haveReviews {
		if list, ok := obj["review"].([]any); ok {
			reviews, haveReviews = len(list), true
		}
	}

	if name == "" && price == "" {
		return types.ProductRecord{}, false
	}

	rec := types.NewProductRecord()
	if name != "" {
		rec.Title = name
	}
	if price != "" {
		rec.Price = price
	}
	if availability != "" {
		rec.Availability = availability
	}
	if rating != "" {
		rec.Rating = rating
	}
	if haveReviews {
		rec.Reviews = strconv.Itoa(reviews)
	}
	return rec, true
}

// typeSet normalizes a JSON-LD @type field (string or list) into a
// lowercase lookup set.
func typeSet(v any) map[string]bool {
	set := make(map[string]bool)
	switch t := v.(type) {
	case string:
		set[strings.ToLower(t)] = true
	case []any:
		for _, el := range t {
			if s, ok := el.(string); ok {
				set[strings.ToLower(s)] = true
			}
		}
	}
	return set
}

// firstOfList unwraps a one-or-many JSON value to its first element.
func firstOfList(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

// asObject returns v as a JSON object, or an empty map.
func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// stringValue renders a scalar JSON value as a string. Whole-number
// floats print without a decimal part.
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// floatValue parses a JSON number or numeric string.
func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// reviewCount parses a review count that may arrive as a number or as
// text with a digit run somewhere inside it.
func reviewCount(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		if m, ok := extractLeadingNumber(n); ok {
			return parseIntOrDefault(m, 0), true
		}
	}
	return 0, false
}
