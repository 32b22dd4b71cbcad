package scraper

import (
	"testing"

	"storesight/internal/types"
)

const bookPodHTML = `<html><body>
<article class="product_pod">
	<h3><a href="catalogue/a-light-in-the-attic" title="A Light in the Attic">A Light in ...</a></h3>
	<p class="star-rating Three"></p>
	<p class="price_color">£51.77</p>
	<p class="availability">In stock</p>
</article>
<article class="product_pod">
	<h3><a href="catalogue/tipping-the-velvet" title="Tipping the Velvet">Tipping the ...</a></h3>
	<p class="star-rating One"></p>
	<p class="price_color">£53.74</p>
	<p class="availability">In stock</p>
</article>
</body></html>`

func TestPatternExtractProductCards(t *testing.T) {
	html := `<html><body>
	<div class="product-card">
		<h2 class="product-title">Wool Scarf</h2>
		<span class="price">$24.00</span>
		<span class="stock-status">In stock</span>
		<span class="rating">4.5 out of 5</span>
		<span class="review-count">Reviews (132)</span>
	</div>
	<div class="product-card">
		<h2 class="product-title">Silk Tie</h2>
		<span class="price">$18.50</span>
	</div>
	</body></html>`

	pe := NewPatternExtractor(testLogger)
	products := pe.Extract(docFromHTML(t, html))

	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	p := products[0]
	if p.Title != "Wool Scarf" {
		t.Errorf("title = %q", p.Title)
	}
	if p.Price != "$24.00" {
		t.Errorf("price = %q", p.Price)
	}
	if p.Availability != "In stock" {
		t.Errorf("availability = %q", p.Availability)
	}
	if p.Rating != "4.5" {
		t.Errorf("rating = %q, want anchored value 4.5", p.Rating)
	}
	if p.Reviews != "132" {
		t.Errorf("reviews = %q, want 132", p.Reviews)
	}

	// The second card only has title and price; the rest stay sentinels.
	q := products[1]
	if q.Rating != types.NotAvailable || q.Reviews != types.NotAvailable {
		t.Errorf("sparse card rating/reviews = %q/%q, want sentinels", q.Rating, q.Reviews)
	}
	if q.Availability != types.UnknownAvailability {
		t.Errorf("sparse card availability = %q, want sentinel", q.Availability)
	}
}

func TestPatternExtractSelectorPrecedence(t *testing.T) {
	// Both selector families match; only the earlier one's containers
	// should be parsed.
	html := `<html><body>
	<div data-product-id="p1" data-name="Tagged Product"><span class="price">$9.99</span></div>
	<div class="product-card">
		<h2 class="product-title">Should Be Ignored</h2>
		<span class="price">$1.00</span>
	</div>
	</body></html>`

	pe := NewPatternExtractor(testLogger)
	products := pe.Extract(docFromHTML(t, html))

	if len(products) != 1 {
		t.Fatalf("expected 1 product from winning selector, got %d", len(products))
	}
	if products[0].Title != "Tagged Product" {
		t.Errorf("title = %q, want data-name attribute value", products[0].Title)
	}
}

func TestPatternExtractPrefersContentAttr(t *testing.T) {
	html := `<html><body>
	<div class="product-item" itemtype="https://schema.org/Product">
		<span itemprop="name">Metadata Product</span>
		<span itemprop="price" content="29.99">$29.99 USD (today only!)</span>
	</div>
	</body></html>`

	pe := NewPatternExtractor(testLogger)
	products := pe.Extract(docFromHTML(t, html))

	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Price != "29.99" {
		t.Errorf("price = %q, want machine-readable 29.99", products[0].Price)
	}
}

func TestPatternExtractSkipsBareContainers(t *testing.T) {
	html := `<html><body>
	<div class="product"><img src="banner.jpg"></div>
	<div class="product"><h3>Real Product</h3></div>
	</body></html>`

	pe := NewPatternExtractor(testLogger)
	products := pe.Extract(docFromHTML(t, html))

	if len(products) != 1 {
		t.Fatalf("expected only the titled container, got %d", len(products))
	}
	if products[0].Title != "Real Product" {
		t.Errorf("title = %q", products[0].Title)
	}
}

func TestPatternExtractWordRatings(t *testing.T) {
	pe := NewPatternExtractor(testLogger)
	products := pe.Extract(docFromHTML(t, bookPodHTML))

	if len(products) != 2 {
		t.Fatalf("expected 2 books, got %d", len(products))
	}
	if products[0].Rating != "3.0" {
		t.Errorf("rating = %q, want 3.0 from the Three class", products[0].Rating)
	}
	if products[1].Rating != "1.0" {
		t.Errorf("rating = %q, want 1.0 from the One class", products[1].Rating)
	}
	if products[0].Price != "£51.77" {
		t.Errorf("price = %q, currency formatting must survive", products[0].Price)
	}
}

func TestExtractBookPods(t *testing.T) {
	pe := NewPatternExtractor(testLogger)
	products := pe.extractBookPods(docFromHTML(t, bookPodHTML))

	if len(products) != 2 {
		t.Fatalf("expected 2 books, got %d", len(products))
	}
	// The anchor title attribute carries the full name, unlike the
	// truncated anchor text.
	if products[0].Title != "A Light in the Attic" {
		t.Errorf("title = %q", products[0].Title)
	}
	if products[0].Availability != "In stock" {
		t.Errorf("availability = %q", products[0].Availability)
	}
	if products[1].Rating != "1.0" {
		t.Errorf("rating = %q", products[1].Rating)
	}
}

func TestPatternExtractUnrecognizedPage(t *testing.T) {
	html := `<html><body><h1>Blog post</h1><p>No products here.</p></body></html>`

	pe := NewPatternExtractor(testLogger)
	if products := pe.Extract(docFromHTML(t, html)); len(products) != 0 {
		t.Fatalf("expected no products on an unrecognized page, got %d", len(products))
	}
}
