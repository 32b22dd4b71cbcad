package insights

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"storesight/internal/config"
	"storesight/internal/types"
)

// noProductsMessage is the fixed summary for an empty scrape result.
const noProductsMessage = "No products found for analysis."

// adPlatform is the channel the generated captions target.
const adPlatform = "Instagram"

// Report is the full analysis payload for one scrape.
type Report struct {
	Summary                 Summary               `json:"summary"`
	TopProducts             []types.ProductRecord `json:"top_products"`
	PlatformRecommendations []string              `json:"platform_recommendations"`
	DiscountSuggestions     []string              `json:"discount_suggestions"`
	AdCaptions              []AdCaption           `json:"ad_captions"`
}

// Summary carries aggregate statistics over the scraped products. For
// an empty input only Message is set.
type Summary struct {
	Message      string  `json:"message,omitempty"`
	SourceURL    string  `json:"source_url,omitempty"`
	ProductCount int     `json:"product_count,omitempty"`
	AvgRating    float64 `json:"avg_rating,omitempty"`
	AvgPrice     float64 `json:"avg_price,omitempty"`
}

// AdCaption is a ready-to-post caption for one product.
type AdCaption struct {
	Product  string `json:"product"`
	Platform string `json:"platform"`
	Caption  string `json:"caption"`
}

// ScoredProduct augments a record with derived numeric features for
// ranking. Computed fresh per analysis call, never mutated afterwards.
type ScoredProduct struct {
	types.ProductRecord
	RatingNum  float64
	ReviewsNum int
	PriceNum   float64
	Score      float64
}

// Engine computes heuristic marketing insights from scraped product
// records. Stateless; safe for concurrent use.
type Engine struct {
	cfg    config.InsightsConfig
	logger *slog.Logger
}

// NewEngine creates an insight engine with the given thresholds.
func NewEngine(cfg config.InsightsConfig, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger.With("component", "insight_engine"),
	}
}

// Analyze ranks products, computes summary statistics, and emits
// rule-based recommendations. Never fails: an empty input produces a
// fixed "no products" report.
func (e *Engine) Analyze(products []types.ProductRecord, sourceURL string) Report {
	if len(products) == 0 {
		return Report{
			Summary:                 Summary{Message: noProductsMessage},
			TopProducts:             []types.ProductRecord{},
			PlatformRecommendations: []string{},
			DiscountSuggestions:     []string{},
			AdCaptions:              []AdCaption{},
		}
	}

	scored := score(products)

	// Stable sort keeps the original page order for tied scores, so
	// repeated analysis of the same input is deterministic.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	top := scored
	if len(top) > e.cfg.TopProducts {
		top = top[:e.cfg.TopProducts]
	}

	summary := Summary{
		SourceURL:    sourceURL,
		ProductCount: len(products),
		AvgRating:    meanPositive(scored, func(p ScoredProduct) float64 { return p.RatingNum }),
		AvgPrice:     meanPositive(scored, func(p ScoredProduct) float64 { return p.PriceNum }),
	}

	report := Report{
		Summary:                 summary,
		TopProducts:             make([]types.ProductRecord, 0, len(top)),
		PlatformRecommendations: e.platformRecommendations(summary, scored),
		DiscountSuggestions:     make([]string, 0, len(top)),
		AdCaptions:              []AdCaption{},
	}

	for _, p := range top {
		report.TopProducts = append(report.TopProducts, p.ProductRecord)
		report.DiscountSuggestions = append(report.DiscountSuggestions, discountSuggestion(p))
	}

	captions := top
	if len(captions) > e.cfg.CaptionProducts {
		captions = captions[:e.cfg.CaptionProducts]
	}
	for _, p := range captions {
		report.AdCaptions = append(report.AdCaptions, adCaption(p))
	}

	e.logger.Debug("analysis complete",
		"source_url", sourceURL,
		"products", len(products),
		"avg_rating", summary.AvgRating,
		"avg_price", summary.AvgPrice,
	)

	return report
}

// score derives the numeric features and the engagement score
// rating * (1 + reviews/10) for every record.
func score(products []types.ProductRecord) []ScoredProduct {
	scored := make([]ScoredProduct, 0, len(products))
	for _, p := range products {
		rating := toFloat(p.Rating, 0)
		reviews := toInt(p.Reviews, 0)
		price := priceNumber(p.Price)

		scored = append(scored, ScoredProduct{
			ProductRecord: p,
			RatingNum:     rating,
			ReviewsNum:    reviews,
			PriceNum:      price,
			Score:         rating * (1 + float64(reviews)/10),
		})
	}
	return scored
}

// platformRecommendations evaluates the channel rules independently;
// any subset may apply, with a single fallback when none do.
func (e *Engine) platformRecommendations(summary Summary, scored []ScoredProduct) []string {
	var platforms []string

	highTicket := summary.AvgPrice >= e.cfg.HighTicketAvgPrice
	if !highTicket {
		for _, p := range scored {
			if p.PriceNum >= e.cfg.HighTicketItemPrice {
				highTicket = true
				break
			}
		}
	}
	if highTicket {
		platforms = append(platforms,
			"Instagram & Google Ads: Visual, higher-ticket products perform well here.")
	}
	if summary.AvgPrice < e.cfg.HighTicketAvgPrice {
		platforms = append(platforms,
			"Facebook & WhatsApp: Good for mid- to low-priced, impulse-friendly items.")
	}
	if summary.AvgRating >= e.cfg.StrongRatingFloor {
		platforms = append(platforms,
			"Email campaigns: Leverage strong reviews to upsell and cross-sell bestsellers.")
	}
	if len(platforms) == 0 {
		platforms = append(platforms,
			"Start with Instagram + Email, then refine channels based on campaign results.")
	}
	return platforms
}

// discountSuggestion picks a message tier from the product's social
// proof.
func discountSuggestion(p ScoredProduct) string {
	title := p.Title
	if title == "" {
		title = "This product"
	}

	switch {
	case p.RatingNum >= 4.5 && p.ReviewsNum >= 20:
		return fmt.Sprintf("%s: bestseller — run a 5–10%% limited-time discount and highlight reviews.", title)
	case p.RatingNum >= 4.0 && p.ReviewsNum >= 5:
		return fmt.Sprintf("%s: good traction — try a 10–15%% discount or bundle with related items.", title)
	default:
		return fmt.Sprintf("%s: low social proof — focus on organic content first, then test small-budget ads.", title)
	}
}

// adCaption builds the fixed-template caption, appending rating and
// price only when they carry real values.
func adCaption(p ScoredProduct) AdCaption {
	title := p.Title
	if title == "" {
		title = "this product"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fall in love with %s — a timeless piece designed for everyday wear. ", title)
	if p.Rating != "" && p.Rating != types.NotAvailable {
		fmt.Fprintf(&b, "Rated %s/5 by shoppers. ", p.Rating)
	}
	if p.Price != "" {
		fmt.Fprintf(&b, "Now available at %s. ", p.Price)
	}
	b.WriteString("Tap to shop and elevate your wardrobe. #NewArrivals #ShopNow")

	return AdCaption{
		Product:  title,
		Platform: adPlatform,
		Caption:  b.String(),
	}
}

// meanPositive averages a feature over the records where it is
// positive, rounded to 2 decimals, 0 when no record qualifies.
func meanPositive(scored []ScoredProduct, feature func(ScoredProduct) float64) float64 {
	var sum float64
	var n int
	for _, p := range scored {
		if v := feature(p); v > 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*100) / 100
}

var priceNumberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// priceNumber extracts the first number substring from a price string,
// ignoring thousands separators. Multi-locale currency handling is out
// of scope.
func priceNumber(raw string) float64 {
	raw = strings.ReplaceAll(raw, ",", "")
	m := priceNumberPattern.FindString(raw)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// toFloat parses a trimmed string as a float, failing closed.
func toFloat(raw string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return v
}

// toInt parses a trimmed string as an integer, truncating decimals,
// failing closed.
func toInt(raw string, def int) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return int(v)
}
