package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"storesight/internal/config"
	"storesight/internal/insights"
	"storesight/internal/storage"
	"storesight/internal/types"
)

// ProductScraper runs the extraction pipeline against one page.
type ProductScraper interface {
	Scrape(ctx context.Context, rawURL string) ([]types.ProductRecord, error)
}

// Analyzer turns scraped products into a marketing report.
type Analyzer interface {
	Analyze(products []types.ProductRecord, sourceURL string) insights.Report
}

// Server exposes the scrape-and-analyze pipeline over HTTP.
type Server struct {
	mux      *http.ServeMux
	srv      *http.Server
	cfg      config.ServerConfig
	scraper  ProductScraper
	analyzer Analyzer
	store    storage.Storage
	metrics  http.Handler
	logger   *slog.Logger
}

// Option configures optional server dependencies.
type Option func(*Server)

// WithStorage attaches a best-effort persistence backend.
func WithStorage(store storage.Storage) Option {
	return func(s *Server) { s.store = store }
}

// WithMetricsHandler mounts a metrics endpoint at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer creates the API server and registers its routes.
func NewServer(cfg config.ServerConfig, scraper ProductScraper, analyzer Analyzer, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		cfg:      cfg,
		scraper:  scraper,
		analyzer: analyzer,
		logger:   logger.With("component", "api_server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.mux,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler exposes the routing mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /scrape", s.handleScrape)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if err := config.ValidateURL(body.URL); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	start := time.Now()
	products, err := s.scraper.Scrape(r.Context(), body.URL)
	if err != nil {
		s.logger.Error("scrape failed", "url", body.URL, "error", err)
		s.jsonResponse(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	report := s.analyzer.Analyze(products, body.URL)

	if s.store != nil {
		// Persistence must not delay or fail the response.
		go func(url string, records []types.ProductRecord) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.store.SaveProducts(ctx, url, records); err != nil {
				s.logger.Warn("product persistence failed", "url", url, "error", err)
			}
		}(body.URL, products)
	}

	s.logger.Info("scrape complete",
		"url", body.URL,
		"products", len(products),
		"duration", time.Since(start),
	)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"results":  products,
		"insights": report,
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
