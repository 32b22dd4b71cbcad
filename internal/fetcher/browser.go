package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"storesight/internal/config"
	"storesight/internal/types"
)

// BrowserRenderer implements Renderer using a headless browser via Rod.
// One browser process is shared, but every Render call gets a fresh
// page so concurrent calls never share page state.
type BrowserRenderer struct {
	browser *rod.Browser
	cfg     *config.RenderConfig
	logger  *slog.Logger
}

// NewBrowserRenderer launches a headless Chromium and connects to it.
func NewBrowserRenderer(cfg *config.Config, logger *slog.Logger) (*BrowserRenderer, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.Render.WindowSize != "" {
		l = l.Set("window-size", cfg.Render.WindowSize)
	}

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	logger = logger.With("component", "browser_renderer")
	logger.Info("browser renderer ready", "stealth", cfg.Render.Stealth)

	return &BrowserRenderer{
		browser: browser,
		cfg:     &cfg.Render,
		logger:  logger,
	}, nil
}

// Render navigates to a URL and returns the rendered markup after
// JavaScript execution, bounded by the configured timeout.
func (br *BrowserRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()

	page, err := br.newPage()
	if err != nil {
		return "", &types.RenderError{URL: rawURL, Err: err}
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Timeout(br.cfg.Timeout).Navigate(rawURL); err != nil {
		return "", &types.RenderError{URL: rawURL, Err: err, Timeout: isDeadline(err)}
	}

	// Wait for dynamic content to settle; a timeout here is not fatal,
	// we take whatever the page looks like at that point.
	if err := page.Timeout(br.cfg.Timeout).WaitStable(300 * time.Millisecond); err != nil {
		br.logger.Warn("page stability timeout, continuing", "url", rawURL, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", &types.RenderError{URL: rawURL, Err: err, Timeout: isDeadline(err)}
	}

	br.logger.Debug("render complete",
		"url", rawURL,
		"size", len(html),
		"duration", time.Since(start),
	)

	return html, nil
}

// Close shuts down the browser.
func (br *BrowserRenderer) Close() error {
	if br.browser != nil {
		return br.browser.Close()
	}
	return nil
}

// newPage creates an isolated page, with stealth patches if configured.
func (br *BrowserRenderer) newPage() (*rod.Page, error) {
	if br.cfg.Stealth {
		return stealth.Page(br.browser)
	}
	return br.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
