package storage

import (
	"context"

	"storesight/internal/types"
)

// Storage persists scraped products and reviews. Implementations must
// be safe for concurrent use; writes are best effort and callers
// treat failures as non-fatal.
type Storage interface {
	// SaveProducts stores one scrape's products tagged with the page
	// they came from.
	SaveProducts(ctx context.Context, sourceURL string, products []types.ProductRecord) error

	// SaveReviews stores review texts for a product.
	SaveReviews(ctx context.Context, productName string, reviews []string) error

	Close(ctx context.Context) error
}
