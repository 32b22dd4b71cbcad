package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"storesight/internal/fetcher"
	"storesight/internal/types"
)

// reviewBlockXPath matches elements carrying a "review" class token.
const reviewBlockXPath = `//div[contains(concat(' ', normalize-space(@class), ' '), ' review ')]`

// ReviewScraper collects customer review texts from a product page.
type ReviewScraper struct {
	fetcher fetcher.Fetcher
	logger  *slog.Logger
}

// NewReviewScraper creates a new review scraper.
func NewReviewScraper(f fetcher.Fetcher, logger *slog.Logger) *ReviewScraper {
	return &ReviewScraper{
		fetcher: f,
		logger:  logger.With("component", "review_scraper"),
	}
}

// Scrape fetches a product page and returns the text of each review
// block's first paragraph. A page without review blocks yields an
// empty list, not an error.
func (rs *ReviewScraper) Scrape(ctx context.Context, productURL string) ([]string, error) {
	resp, err := rs.fetcher.Fetch(ctx, productURL)
	if err != nil {
		return nil, err
	}

	root, err := htmlquery.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, &types.ParseError{URL: productURL, Err: err}
	}

	var reviews []string
	for _, block := range htmlquery.Find(root, reviewBlockXPath) {
		if text := reviewText(block); text != "" {
			reviews = append(reviews, text)
		}
	}

	rs.logger.Debug("reviews scraped", "url", productURL, "count", len(reviews))
	return reviews, nil
}

// reviewText pulls the trimmed text of the first paragraph in a review
// block.
func reviewText(block *html.Node) string {
	p := htmlquery.FindOne(block, ".//p")
	if p == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(p))
}
