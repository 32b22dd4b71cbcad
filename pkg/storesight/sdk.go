// Package storesight provides a public SDK for embedding StoreSight as
// a library.
//
// Example usage:
//
//	client, err := storesight.NewClient(
//	    storesight.WithTimeout(10*time.Second),
//	    storesight.WithoutRender(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	products, err := client.ScrapeProducts(ctx, "https://shop.example")
//	report := client.Analyze(products, "https://shop.example")
package storesight

import (
	"context"
	"log/slog"
	"os"
	"time"

	"storesight/internal/config"
	"storesight/internal/fetcher"
	"storesight/internal/insights"
	"storesight/internal/scraper"
	"storesight/internal/types"
)

// ProductRecord is the scraped product shape.
type ProductRecord = types.ProductRecord

// Report is the insight analysis shape.
type Report = insights.Report

// Client is the high-level API for using StoreSight as a library.
type Client struct {
	cfg      *config.Config
	scraper  *scraper.Scraper
	reviews  *scraper.ReviewScraper
	engine   *insights.Engine
	fetcher  fetcher.Fetcher
	renderer fetcher.Renderer
	logger   *slog.Logger
}

type clientOptions struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// WithTimeout sets the static fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.cfg.Fetcher.Timeout = d }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.cfg.Fetcher.UserAgent = ua }
}

// WithoutRender disables the headless-browser fallback.
func WithoutRender() Option {
	return func(o *clientOptions) { o.cfg.Render.Enabled = false }
}

// WithStealth enables stealth patches on rendered pages.
func WithStealth() Option {
	return func(o *clientOptions) { o.cfg.Render.Stealth = true }
}

// WithInsightThresholds overrides the heuristic price and rating
// cut-offs used by Analyze.
func WithInsightThresholds(avgPrice, itemPrice, ratingFloor float64) Option {
	return func(o *clientOptions) {
		o.cfg.Insights.HighTicketAvgPrice = avgPrice
		o.cfg.Insights.HighTicketItemPrice = itemPrice
		o.cfg.Insights.StrongRatingFloor = ratingFloor
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// NewClient creates a ready-to-use client. When rendering is enabled
// and no browser can be launched, the client degrades to static
// fetching instead of failing.
func NewClient(opts ...Option) (*Client, error) {
	o := &clientOptions{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.cfg
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	f, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	var sopts []scraper.Option
	var renderer fetcher.Renderer
	if cfg.Render.Enabled {
		if r, err := fetcher.NewBrowserRenderer(cfg, logger); err != nil {
			logger.Warn("renderer unavailable, static fetching only", "error", err)
		} else {
			renderer = r
			sopts = append(sopts, scraper.WithRenderer(r))
		}
	}

	return &Client{
		cfg:      cfg,
		scraper:  scraper.New(f, logger, sopts...),
		reviews:  scraper.NewReviewScraper(f, logger),
		engine:   insights.NewEngine(cfg.Insights, logger),
		fetcher:  f,
		renderer: renderer,
		logger:   logger,
	}, nil
}

// ScrapeProducts runs the full extraction pipeline against one page.
func (c *Client) ScrapeProducts(ctx context.Context, rawURL string) ([]ProductRecord, error) {
	if err := config.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return c.scraper.Scrape(ctx, rawURL)
}

// ScrapeReviews collects customer review texts from a product page.
func (c *Client) ScrapeReviews(ctx context.Context, rawURL string) ([]string, error) {
	if err := config.ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return c.reviews.Scrape(ctx, rawURL)
}

// Analyze builds the marketing report for a set of scraped products.
func (c *Client) Analyze(products []ProductRecord, sourceURL string) Report {
	return c.engine.Analyze(products, sourceURL)
}

// Close releases the fetcher and, if one was launched, the browser.
func (c *Client) Close() error {
	var firstErr error
	if c.renderer != nil {
		if err := c.renderer.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.fetcher.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
