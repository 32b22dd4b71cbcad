package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extraction strategy labels.
const (
	StrategyStructured  = "structured"
	StrategyDOM         = "dom"
	StrategyDOMFallback = "dom_fallback"
)

// Metrics bundles Prometheus collectors for the scraper. All methods
// are safe on a nil receiver so callers can run without metrics.
type Metrics struct {
	Registry         *prometheus.Registry
	ScrapesTotal     *prometheus.CounterVec
	ScrapeDuration   prometheus.Histogram
	ExtractionsTotal *prometheus.CounterVec
	ProductsTotal    prometheus.Counter
	RendersTotal     *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	scrapes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storesight_scrapes_total",
			Help: "Total scrape calls by outcome.",
		},
		[]string{"outcome"},
	)
	scrapeDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storesight_scrape_duration_seconds",
			Help:    "End-to-end scrape latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	extractions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storesight_extractions_total",
			Help: "Total successful extractions by strategy.",
		},
		[]string{"strategy"},
	)
	products := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storesight_products_total",
			Help: "Total product records extracted.",
		},
	)
	renders := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storesight_renders_total",
			Help: "Total render fallback attempts by result.",
		},
		[]string{"result"},
	)

	registry.MustRegister(scrapes, scrapeDuration, extractions, products, renders)

	return &Metrics{
		Registry:         registry,
		ScrapesTotal:     scrapes,
		ScrapeDuration:   scrapeDuration,
		ExtractionsTotal: extractions,
		ProductsTotal:    products,
		RendersTotal:     renders,
	}
}

// IncScrape increments the scrapes counter for an outcome label.
func (m *Metrics) IncScrape(outcome string) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(outcome).Inc()
}

// ObserveScrapeDuration records an end-to-end scrape duration.
func (m *Metrics) ObserveScrapeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.ScrapeDuration.Observe(d.Seconds())
}

// IncExtraction increments the extractions counter for a strategy label.
func (m *Metrics) IncExtraction(strategy string) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(strategy).Inc()
}

// AddProducts adds to the extracted products counter.
func (m *Metrics) AddProducts(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ProductsTotal.Add(float64(n))
}

// IncRender increments the render attempts counter for a result label.
func (m *Metrics) IncRender(result string) {
	if m == nil {
		return
	}
	m.RendersTotal.WithLabelValues(result).Inc()
}

// Handler exposes the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
