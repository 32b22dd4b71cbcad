package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"storesight/internal/config"
)

var (
	cfgFile    string
	verbose    bool
	outputPath string
	outputType string
	noRender   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "storesight",
		Short: "StoreSight — e-commerce product scraper and insight engine",
		Long: `StoreSight scrapes product listings from e-commerce pages and turns
them into marketing insights.

Features:
  • JSON-LD structured-data extraction with DOM pattern fallback
  • Headless-browser rendering for JavaScript-heavy storefronts
  • Shopify platform detection
  • Heuristic ad-platform, discount, and caption recommendations
  • REST API, JSON/CSV export, optional MongoDB persistence
  • Prometheus metrics endpoint`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(reviewsCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("StoreSight %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Fetcher:\n")
			fmt.Printf("  Timeout:           %s\n", cfg.Fetcher.Timeout)
			fmt.Printf("  Follow Redirects:  %v\n", cfg.Fetcher.FollowRedirects)
			fmt.Printf("  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nRender:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Render.Enabled)
			fmt.Printf("  Timeout:           %s\n", cfg.Render.Timeout)
			fmt.Printf("  Stealth:           %v\n", cfg.Render.Stealth)
			fmt.Printf("\nInsights:\n")
			fmt.Printf("  High-Ticket Avg:   %.2f\n", cfg.Insights.HighTicketAvgPrice)
			fmt.Printf("  High-Ticket Item:  %.2f\n", cfg.Insights.HighTicketItemPrice)
			fmt.Printf("  Rating Floor:      %.2f\n", cfg.Insights.StrongRatingFloor)
			fmt.Printf("\nServer:\n")
			fmt.Printf("  Port:              %d\n", cfg.Server.Port)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Storage.Enabled)
			fmt.Printf("  Database:          %s\n", cfg.Storage.Database)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
			return nil
		},
	}
}

// loadConfig loads and validates configuration for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if noRender {
		cfg.Render.Enabled = false
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger creates a structured logger.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
