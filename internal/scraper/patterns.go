package scraper

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"storesight/internal/types"
)

// containerSelectors is the ordered list of candidate product-card
// selectors. Most specific storefront conventions come first, generic
// class names later, the books.toscrape.com pattern last. The first
// selector yielding one or more matches wins; matches are never merged
// across selectors.
var containerSelectors = []string{
	"[data-product-id]",
	"[itemtype*='Product']",
	".product-card",
	".product-grid-item",
	".product-item",
	".product",
	".product_pod",
	"li.product",
	"article.product",
}

// Per-field candidate selectors, tried left to right inside a matched
// container. Data-driven so new site conventions slot in without
// touching control flow.
var (
	titleAttrs             = []string{"data-name", "data-product-name"}
	titleSelectors         = []string{"[itemprop='name']", ".product-title", ".product-name", "h3", "h2"}
	priceSelectors         = []string{"[itemprop='price']", ".price", ".product-price", "[class*='price']"}
	availabilitySelectors  = []string{"[itemprop='availability']", ".availability", "[class*='stock']"}
	ratingSelectors        = []string{"[itemprop='ratingValue']", "[class*='rating']", "[class*='star']"}
	reviewsSelectors       = []string{"[itemprop='reviewCount']", "[class*='review']", "[class*='reviews']"}
	lastResortTitleAnchors = "a[title]"
)

// anchoredRatingPattern matches scale-anchored ratings like
// "4.5 out of 5" or "4.5/5", preferred over a bare number.
var anchoredRatingPattern = regexp.MustCompile(`(?i)(\d+(\.\d+)?)\s*(?:/|out of)\s*5`)

var digitRunPattern = regexp.MustCompile(`\d+`)

// wordRatings maps books.toscrape.com star-rating class words.
var wordRatings = map[string]int{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
}

// PatternExtractor scans rendered markup for product-like records using
// common DOM conventions, without any site-specific configuration.
type PatternExtractor struct {
	logger *slog.Logger
}

// NewPatternExtractor creates a new DOM pattern extractor.
func NewPatternExtractor(logger *slog.Logger) *PatternExtractor {
	return &PatternExtractor{
		logger: logger.With("component", "pattern_extractor"),
	}
}

// Extract walks the candidate container selectors and parses each
// matched card. Containers missing both title and price are silently
// skipped. If nothing product-like was found, the fixed
// books.toscrape.com pattern is tried as a last resort. Never errors:
// an unrecognized page yields an empty list.
func (pe *PatternExtractor) Extract(doc *goquery.Document) []types.ProductRecord {
	var cards *goquery.Selection
	for _, sel := range containerSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			cards = s
			break
		}
	}

	var products []types.ProductRecord
	if cards != nil {
		cards.Each(func(i int, card *goquery.Selection) {
			if rec, ok := pe.parseCard(card); ok {
				products = append(products, rec)
			}
		})
	}

	if len(products) == 0 {
		products = pe.extractBookPods(doc)
	}

	return products
}

// parseCard extracts one record from a product container.
func (pe *PatternExtractor) parseCard(card *goquery.Selection) (types.ProductRecord, bool) {
	title := firstAttr(card, titleAttrs)
	if title == "" {
		title = firstText(card, titleSelectors)
	}

	price := contentOrText(card, priceSelectors)
	availability := contentOrText(card, availabilitySelectors)
	rating := ratingFromCard(card)
	reviews := digitsFromCard(card, reviewsSelectors)

	if title == "" && price == "" {
		return types.ProductRecord{}, false
	}

	// A price without a title still makes a row; scrape harder for a
	// title so the cell is not blank.
	if title == "" {
		title = lastResortTitle(card)
	}

	rec := types.NewProductRecord()
	if title != "" {
		rec.Title = title
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
	if reviews != "" {
		rec.Reviews = reviews
	}
	return rec, true
}

// extractBookPods is the last-resort pattern for the
// books.toscrape.com markup structure, where ratings are encoded as a
// word in a "star-rating Three" class list.
func (pe *PatternExtractor) extractBookPods(doc *goquery.Document) []types.ProductRecord {
	var products []types.ProductRecord

	doc.Find("article.product_pod").Each(func(i int, pod *goquery.Selection) {
		title, _ := pod.Find("h3 a").First().Attr("title")
		if title == "" {
			title = elementText(pod.Find("h3").First())
		}

		rating := ""
		if classes, ok := pod.Find("p.star-rating").First().Attr("class"); ok {
			for _, cls := range strings.Fields(classes) {
				word := strings.ToLower(cls)
				if word == "star-rating" {
					continue
				}
				if n, ok := wordRatings[word]; ok {
					rating = fmt.Sprintf("%.1f", float64(n))
					break
				}
			}
		}

		rec := types.NewProductRecord()
		if title != "" {
			rec.Title = title
		}
		if price := elementText(pod.Find(".price_color").First()); price != "" {
			rec.Price = price
		}
		if availability := elementText(pod.Find(".availability").First()); availability != "" {
			rec.Availability = availability
		}
		if rating != "" {
			rec.Rating = rating
		}
		if rec.Meaningful() {
			products = append(products, rec)
		}
	})

	return products
}

// ratingFromCard finds the first rating-like element and pulls a value
// from its text, preferring scale-anchored patterns over bare numbers.
func ratingFromCard(card *goquery.Selection) string {
	el := firstMatch(card, ratingSelectors)
	if el == nil {
		return ""
	}
	text := elementText(el)
	if m := anchoredRatingPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if n, ok := extractLeadingNumber(text); ok {
		return n
	}
	return wordRatingFromClasses(el)
}

// wordRatingFromClasses recovers ratings encoded as a class word, as
// in "star-rating Three".
func wordRatingFromClasses(el *goquery.Selection) string {
	classes, ok := el.Attr("class")
	if !ok {
		return ""
	}
	for _, cls := range strings.Fields(classes) {
		if n, ok := wordRatings[strings.ToLower(cls)]; ok {
			return fmt.Sprintf("%.1f", float64(n))
		}
	}
	return ""
}

// digitsFromCard returns the first digit run in the first matching
// element's text.
func digitsFromCard(card *goquery.Selection, selectors []string) string {
	el := firstMatch(card, selectors)
	if el == nil {
		return ""
	}
	return digitRunPattern.FindString(elementText(el))
}

// lastResortTitle tries aria-label, anchor title attributes, and image
// alt text when nothing better named the product.
func lastResortTitle(card *goquery.Selection) string {
	if label, ok := card.Attr("aria-label"); ok && label != "" {
		return label
	}
	if t, ok := card.Find(lastResortTitleAnchors).First().Attr("title"); ok && t != "" {
		return t
	}
	if alt, ok := card.Find("img").First().Attr("alt"); ok && alt != "" {
		return alt
	}
	return ""
}

// firstAttr returns the first non-empty attribute of the container
// element itself.
func firstAttr(card *goquery.Selection, attrs []string) string {
	for _, a := range attrs {
		if v, ok := card.Attr(a); ok && v != "" {
			return v
		}
	}
	return ""
}

// firstMatch returns the first element matched by any of the selectors,
// in declared order.
func firstMatch(card *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if el := card.Find(sel).First(); el.Length() > 0 {
			return el
		}
	}
	return nil
}

// firstText returns the first non-empty element text among the
// selectors.
func firstText(card *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if text := elementText(card.Find(sel).First()); text != "" {
			return text
		}
	}
	return ""
}

// contentOrText picks the first matching element and prefers its
// machine-readable content attribute over its display text.
func contentOrText(card *goquery.Selection, selectors []string) string {
	el := firstMatch(card, selectors)
	if el == nil {
		return ""
	}
	if c, ok := el.Attr("content"); ok && c != "" {
		return c
	}
	return elementText(el)
}

// elementText returns whitespace-collapsed element text.
func elementText(el *goquery.Selection) string {
	if el == nil || el.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(el.Text()), " ")
}
