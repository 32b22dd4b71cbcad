package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Render.Enabled && cfg.Render.Timeout <= 0 {
		return fmt.Errorf("render.timeout must be > 0 when rendering is enabled")
	}

	if cfg.Insights.TopProducts < 1 {
		return fmt.Errorf("insights.top_products must be >= 1, got %d", cfg.Insights.TopProducts)
	}
	if cfg.Insights.CaptionProducts < 0 {
		return fmt.Errorf("insights.caption_products must be >= 0, got %d", cfg.Insights.CaptionProducts)
	}
	if cfg.Insights.HighTicketAvgPrice < 0 || cfg.Insights.HighTicketItemPrice < 0 {
		return fmt.Errorf("insights price thresholds must be >= 0")
	}
	if cfg.Insights.StrongRatingFloor < 0 || cfg.Insights.StrongRatingFloor > 5 {
		return fmt.Errorf("insights.strong_rating_floor must be within 0-5, got %v", cfg.Insights.StrongRatingFloor)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	if cfg.Storage.Enabled {
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri must be set when storage is enabled")
		}
		if cfg.Storage.Database == "" || cfg.Storage.ProductsCollection == "" {
			return fmt.Errorf("storage.database and storage.products_collection must be set")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is valid for scraping.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
