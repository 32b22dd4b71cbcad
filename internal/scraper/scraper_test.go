package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"storesight/internal/types"
)

// fakeFetcher serves a canned body or error.
type fakeFetcher struct {
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (*types.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return types.NewRenderedResponse(rawURL, []byte(f.body), rawURL, time.Millisecond), nil
}

func (f *fakeFetcher) Close() error { return nil }

// fakeRenderer serves canned rendered markup or an error.
type fakeRenderer struct {
	html  string
	err   error
	calls int
}

func (r *fakeRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.html, nil
}

func (r *fakeRenderer) Close() error { return nil }

// fakeSource counts calls and returns fixed products.
type fakeSource struct {
	shopify  bool
	products []types.ProductRecord
	calls    int
}

func (s *fakeSource) IsShopify(html string, doc *goquery.Document) bool { return s.shopify }

func (s *fakeSource) Extract(doc *goquery.Document) []types.ProductRecord {
	s.calls++
	return s.products
}

func record(title, price string) types.ProductRecord {
	rec := types.NewProductRecord()
	rec.Title = title
	rec.Price = price
	return rec
}

func TestScrapeFetchErrorIsFatal(t *testing.T) {
	fetchErr := &types.FetchError{URL: "https://shop.example", StatusCode: 503, Err: errors.New("upstream")}
	s := New(&fakeFetcher{err: fetchErr}, testLogger)

	products, err := s.Scrape(context.Background(), "https://shop.example")
	if err == nil {
		t.Fatal("expected error from failed fetch")
	}
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if products != nil {
		t.Errorf("expected nil products on fetch failure, got %v", products)
	}
}

func TestScrapeStructuredShortCircuitsPatterns(t *testing.T) {
	structured := &fakeSource{shopify: true, products: []types.ProductRecord{record("Widget", "9.99")}}
	patterns := &fakeSource{products: []types.ProductRecord{record("Should Not Appear", "1")}}

	s := New(&fakeFetcher{body: "<html></html>"}, testLogger,
		WithStructuredSource(structured),
		WithPatternSource(patterns),
	)

	products, err := s.Scrape(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatalf("scrape error: %v", err)
	}
	if len(products) != 1 || products[0].Title != "Widget" {
		t.Fatalf("expected the structured result, got %v", products)
	}
	if patterns.calls != 0 {
		t.Errorf("pattern extractor ran %d times despite structured success", patterns.calls)
	}
	if products[0].Extra["platform"] != "shopify" {
		t.Errorf("platform hint = %v, want shopify", products[0].Extra["platform"])
	}
}

func TestScrapeFallsThroughToPatterns(t *testing.T) {
	// Shopify detected but its structured data is empty; DOM patterns
	// must still get their turn.
	structured := &fakeSource{shopify: true}
	patterns := &fakeSource{products: []types.ProductRecord{record("DOM Product", "5")}}

	s := New(&fakeFetcher{body: "<html></html>"}, testLogger,
		WithStructuredSource(structured),
		WithPatternSource(patterns),
	)

	products, err := s.Scrape(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatalf("scrape error: %v", err)
	}
	if len(products) != 1 || products[0].Title != "DOM Product" {
		t.Fatalf("expected the DOM result, got %v", products)
	}
	if structured.calls != 1 {
		t.Errorf("structured extractor calls = %d, want 1", structured.calls)
	}
}

func TestScrapeWithoutRendererReturnsEmpty(t *testing.T) {
	s := New(&fakeFetcher{body: "<html><body><p>nothing</p></body></html>"}, testLogger)

	products, err := s.Scrape(context.Background(), "https://blog.example")
	if err != nil {
		t.Fatalf("unrecognized page must not error: %v", err)
	}
	if products == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(products) != 0 {
		t.Fatalf("expected no products, got %d", len(products))
	}
}

func TestScrapeRenderFallback(t *testing.T) {
	rendered := `<html><body>
	<div class="product-card">
		<h2 class="product-title">Hydrated Product</h2>
		<span class="price">$42.00</span>
	</div>
	</body></html>`

	renderer := &fakeRenderer{html: rendered}
	s := New(&fakeFetcher{body: "<html><body><div id='app'></div></body></html>"}, testLogger,
		WithRenderer(renderer),
	)

	products, err := s.Scrape(context.Background(), "https://spa.example")
	if err != nil {
		t.Fatalf("scrape error: %v", err)
	}
	if renderer.calls != 1 {
		t.Fatalf("renderer calls = %d, want 1", renderer.calls)
	}
	if len(products) != 1 || products[0].Title != "Hydrated Product" {
		t.Fatalf("expected the rendered-markup product, got %v", products)
	}
}

func TestScrapeRenderNotUsedWhenStaticSucceeds(t *testing.T) {
	static := `<html><body>
	<div class="product-card"><h2 class="product-title">Static Product</h2><span class="price">$1</span></div>
	</body></html>`

	renderer := &fakeRenderer{html: "<html></html>"}
	s := New(&fakeFetcher{body: static}, testLogger, WithRenderer(renderer))

	products, err := s.Scrape(context.Background(), "https://shop.example")
	if err != nil {
		t.Fatalf("scrape error: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if renderer.calls != 0 {
		t.Errorf("renderer ran %d times despite static success", renderer.calls)
	}
}

func TestScrapeRenderErrorDegradesToEmpty(t *testing.T) {
	renderer := &fakeRenderer{err: &types.RenderError{URL: "https://spa.example", Timeout: true, Err: errors.New("deadline")}}
	s := New(&fakeFetcher{body: "<html><body></body></html>"}, testLogger, WithRenderer(renderer))

	products, err := s.Scrape(context.Background(), "https://spa.example")
	if err != nil {
		t.Fatalf("render failure must not fail the scrape: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty result after render failure, got %d", len(products))
	}
}
