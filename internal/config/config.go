package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for storesight.
type Config struct {
	Fetcher  FetcherConfig  `mapstructure:"fetcher"  yaml:"fetcher"`
	Render   RenderConfig   `mapstructure:"render"   yaml:"render"`
	Insights InsightsConfig `mapstructure:"insights" yaml:"insights"`
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"  yaml:"metrics"`
}

// FetcherConfig controls the static HTTP fetch stage.
type FetcherConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	FollowRedirects bool          `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"    yaml:"max_redirects"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"     yaml:"tls_insecure"`
}

// RenderConfig controls the headless-browser render fallback.
type RenderConfig struct {
	Enabled    bool          `mapstructure:"enabled"     yaml:"enabled"`
	Timeout    time.Duration `mapstructure:"timeout"     yaml:"timeout"`
	Stealth    bool          `mapstructure:"stealth"     yaml:"stealth"`
	WindowSize string        `mapstructure:"window_size" yaml:"window_size"`
}

// InsightsConfig holds the heuristic thresholds for the insight engine.
// The price cut-offs are placeholder business rules, kept tunable on
// purpose rather than hard-coded.
type InsightsConfig struct {
	HighTicketAvgPrice  float64 `mapstructure:"high_ticket_avg_price"  yaml:"high_ticket_avg_price"`
	HighTicketItemPrice float64 `mapstructure:"high_ticket_item_price" yaml:"high_ticket_item_price"`
	StrongRatingFloor   float64 `mapstructure:"strong_rating_floor"    yaml:"strong_rating_floor"`
	TopProducts         int     `mapstructure:"top_products"           yaml:"top_products"`
	CaptionProducts     int     `mapstructure:"caption_products"       yaml:"caption_products"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// StorageConfig controls best-effort MongoDB persistence.
type StorageConfig struct {
	Enabled            bool   `mapstructure:"enabled"             yaml:"enabled"`
	MongoURI           string `mapstructure:"mongo_uri"           yaml:"mongo_uri"`
	Database           string `mapstructure:"database"            yaml:"database"`
	ProductsCollection string `mapstructure:"products_collection" yaml:"products_collection"`
	ReviewsCollection  string `mapstructure:"reviews_collection"  yaml:"reviews_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Timeout: 15 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) " +
				"Chrome/120.0.0.0 Safari/537.36",
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			FollowRedirects: true,
			MaxRedirects:    10,
		},
		Render: RenderConfig{
			Enabled: true,
			Timeout: 15 * time.Second,
		},
		Insights: InsightsConfig{
			HighTicketAvgPrice:  80,
			HighTicketItemPrice: 100,
			StrongRatingFloor:   4.2,
			TopProducts:         5,
			CaptionProducts:     3,
		},
		Server: ServerConfig{
			Port: 8000,
		},
		Storage: StorageConfig{
			Enabled:            false,
			MongoURI:           "mongodb://localhost:27017",
			Database:           "storesight",
			ProductsCollection: "products",
			ReviewsCollection:  "reviews",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
