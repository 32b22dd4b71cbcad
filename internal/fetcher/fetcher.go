package fetcher

import (
	"context"

	"storesight/internal/types"
)

// Fetcher retrieves the static markup of a page.
type Fetcher interface {
	// Fetch performs a bounded-timeout GET of the given URL.
	Fetch(ctx context.Context, rawURL string) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// Renderer obtains the final markup of a page after JavaScript
// execution. Implementations provision an independent page per call so
// concurrent scrapes cannot interfere with each other's page state.
type Renderer interface {
	// Render navigates to the URL and returns the rendered markup.
	Render(ctx context.Context, rawURL string) (string, error)

	// Close shuts down the rendering backend.
	Close() error
}
