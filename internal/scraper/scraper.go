package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"storesight/internal/fetcher"
	"storesight/internal/observability"
	"storesight/internal/types"
)

// StructuredSource extracts products from embedded structured metadata.
type StructuredSource interface {
	IsShopify(html string, doc *goquery.Document) bool
	Extract(doc *goquery.Document) []types.ProductRecord
}

// PatternSource extracts products from DOM conventions.
type PatternSource interface {
	Extract(doc *goquery.Document) []types.ProductRecord
}

// Scraper sequences the extraction strategies over a page:
// structured data on static markup, DOM patterns on static markup,
// then the same pair again on rendered markup if the static pass came
// up empty. The first non-empty extraction wins.
type Scraper struct {
	fetcher    fetcher.Fetcher
	renderer   fetcher.Renderer
	structured StructuredSource
	patterns   PatternSource
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option configures the Scraper.
type Option func(*Scraper)

// WithRenderer enables the render fallback stage.
func WithRenderer(r fetcher.Renderer) Option {
	return func(s *Scraper) { s.renderer = r }
}

// WithMetrics attaches scrape metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scraper) { s.metrics = m }
}

// WithStructuredSource overrides the structured-data extractor.
func WithStructuredSource(src StructuredSource) Option {
	return func(s *Scraper) { s.structured = src }
}

// WithPatternSource overrides the DOM pattern extractor.
func WithPatternSource(src PatternSource) Option {
	return func(s *Scraper) { s.patterns = src }
}

// New creates a Scraper with the default extractors.
func New(f fetcher.Fetcher, logger *slog.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:    f,
		structured: NewStructuredExtractor(logger),
		patterns:   NewPatternExtractor(logger),
		logger:     logger.With("component", "scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches a page and runs the extraction sequence. Only the
// initial fetch can fail the call; an unrecognized site is a valid,
// empty result. The returned slice is owned by the caller.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) ([]types.ProductRecord, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveScrapeDuration(time.Since(start))
	}()

	resp, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.metrics.IncScrape("fetch_error")
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		// Markup so broken it cannot be parsed counts as "site not
		// recognized", not as a failure.
		s.logger.Warn("static markup parse failed", "url", rawURL, "error", err)
		s.metrics.IncScrape("empty")
		return []types.ProductRecord{}, nil
	}

	if products := s.extract(string(resp.Body), doc, observability.StrategyDOM); len(products) > 0 {
		s.finish(rawURL, products)
		return products, nil
	}

	if s.renderer == nil {
		s.logger.Debug("no renderer configured, returning static result", "url", rawURL)
		s.metrics.IncScrape("empty")
		return []types.ProductRecord{}, nil
	}

	html, err := s.renderer.Render(ctx, rawURL)
	if err != nil {
		// Render failures degrade to "no additional data".
		s.logger.Warn("render fallback failed", "url", rawURL, "error", err)
		s.metrics.IncRender("error")
		s.metrics.IncScrape("empty")
		return []types.ProductRecord{}, nil
	}
	s.metrics.IncRender("ok")

	rdoc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		s.logger.Warn("rendered markup parse failed", "url", rawURL, "error", err)
		s.metrics.IncScrape("empty")
		return []types.ProductRecord{}, nil
	}

	products := s.extract(html, rdoc, observability.StrategyDOMFallback)
	s.finish(rawURL, products)
	return products, nil
}

// extract runs one structured-then-patterns pass over a page. When the
// page carries the Shopify signature, structured data is trusted first
// and short-circuits DOM matching entirely.
func (s *Scraper) extract(html string, doc *goquery.Document, domStrategy string) []types.ProductRecord {
	if s.structured.IsShopify(html, doc) {
		if products := s.structured.Extract(doc); len(products) > 0 {
			for i := range products {
				products[i].SetExtra("platform", "shopify")
			}
			s.metrics.IncExtraction(observability.StrategyStructured)
			return products
		}
	}

	products := s.patterns.Extract(doc)
	if len(products) > 0 {
		s.metrics.IncExtraction(domStrategy)
	}
	return products
}

func (s *Scraper) finish(rawURL string, products []types.ProductRecord) {
	if len(products) == 0 {
		s.metrics.IncScrape("empty")
		return
	}
	s.metrics.IncScrape("ok")
	s.metrics.AddProducts(len(products))
	s.logger.Info("scrape complete", "url", rawURL, "products", len(products))
}
