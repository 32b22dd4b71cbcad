package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storesight/internal/api"
	"storesight/internal/config"
	"storesight/internal/fetcher"
	"storesight/internal/insights"
	"storesight/internal/observability"
	"storesight/internal/scraper"
	"storesight/internal/storage"
)

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serve the scrape-and-analyze pipeline over HTTP on the configured port.",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&noRender, "no-render", false, "disable the headless-browser render fallback")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	scr, metrics, cleanup, err := buildScraper(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := insights.NewEngine(cfg.Insights, logger)

	var opts []api.Option
	if cfg.Storage.Enabled {
		store, err := storage.NewMongoStorage(cfg.Storage, logger)
		if err != nil {
			logger.Warn("storage unavailable, continuing without persistence", "error", err)
		} else {
			opts = append(opts, api.WithStorage(store))
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := store.Close(ctx); err != nil {
					logger.Warn("storage close failed", "error", err)
				}
			}()
		}
	}
	if cfg.Metrics.Enabled && metrics != nil {
		opts = append(opts, api.WithMetricsHandler(metrics.Handler()))
	}

	srv := api.NewServer(cfg.Server, scr, engine, logger, opts...)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	return srv.Start()
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape one product page and print the analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runScrape,
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write products to a file instead of stdout")
	cmd.Flags().StringVarP(&outputType, "format", "f", "json", "output format: json, csv")
	cmd.Flags().BoolVar(&noRender, "no-render", false, "disable the headless-browser render fallback")
	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	rawURL := args[0]
	if err := config.ValidateURL(rawURL); err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	scr, _, cleanup, err := buildScraper(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetcher.Timeout+cfg.Render.Timeout)
	defer cancel()

	products, err := scr.Scrape(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", rawURL, err)
	}

	report := insights.NewEngine(cfg.Insights, logger).Analyze(products, rawURL)

	if outputPath != "" {
		switch outputType {
		case "json":
			err = storage.ExportJSON(outputPath, products)
		case "csv":
			err = storage.ExportCSV(outputPath, products)
		default:
			return fmt.Errorf("unsupported output format: %s", outputType)
		}
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		logger.Info("products exported", "path", outputPath, "count", len(products))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"results":  products,
		"insights": report,
	})
}

// reviewsCmd creates the "reviews" subcommand.
func reviewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reviews [url]",
		Short: "Scrape review texts from a product page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			rawURL := args[0]
			if err := config.ValidateURL(rawURL); err != nil {
				return fmt.Errorf("invalid URL %q: %w", rawURL, err)
			}

			f, err := fetcher.NewHTTPFetcher(cfg, logger)
			if err != nil {
				return fmt.Errorf("create fetcher: %w", err)
			}
			defer f.Close()

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetcher.Timeout)
			defer cancel()

			reviews, err := scraper.NewReviewScraper(f, logger).Scrape(ctx, rawURL)
			if err != nil {
				return fmt.Errorf("scrape reviews: %w", err)
			}

			if cfg.Storage.Enabled {
				if store, err := storage.NewMongoStorage(cfg.Storage, logger); err != nil {
					logger.Warn("storage unavailable, reviews not persisted", "error", err)
				} else {
					if err := store.SaveReviews(ctx, rawURL, reviews); err != nil {
						logger.Warn("review persistence failed", "error", err)
					}
					if err := store.Close(ctx); err != nil {
						logger.Warn("storage close failed", "error", err)
					}
				}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"url":     rawURL,
				"count":   len(reviews),
				"reviews": reviews,
			})
		},
	}
}

// buildScraper wires the fetcher, optional renderer, and metrics into
// a scraper. The returned cleanup closes everything it opened.
func buildScraper(cfg *config.Config, logger *slog.Logger) (*scraper.Scraper, *observability.Metrics, func(), error) {
	f, err := fetcher.NewHTTPFetcher(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create fetcher: %w", err)
	}

	var opts []scraper.Option
	var renderer fetcher.Renderer
	if cfg.Render.Enabled {
		r, err := fetcher.NewBrowserRenderer(cfg, logger)
		if err != nil {
			// A missing browser degrades the pipeline, it does not stop it.
			logger.Warn("renderer unavailable, continuing without render fallback", "error", err)
		} else {
			renderer = r
			opts = append(opts, scraper.WithRenderer(r))
		}
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
		opts = append(opts, scraper.WithMetrics(metrics))
	}

	cleanup := func() {
		if renderer != nil {
			if err := renderer.Close(); err != nil {
				logger.Warn("renderer close failed", "error", err)
			}
		}
		if err := f.Close(); err != nil {
			logger.Warn("fetcher close failed", "error", err)
		}
	}

	return scraper.New(f, logger, opts...), metrics, cleanup, nil
}
