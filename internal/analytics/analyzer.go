// Package analytics records product extraction results for completed orders
// and produces popularity reports from the daily aggregate counters.
package analytics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sharicrepas/sharibot/internal/catalog"
	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/store"
)

// Analyzer extracts catalog signals from order text and persists them.
type Analyzer struct {
	store store.Store
	now   func() time.Time
}

// Opts holds configuration for the analyzer.
type Opts struct {
	Store store.Store
	Now   func() time.Time
}

// Option configures an Analyzer.
type Option func(*Opts)

// WithStore sets the storage backend.
func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(options ...Option) *Analyzer {
	opts := &Opts{Now: time.Now}
	for _, opt := range options {
		opt(opts)
	}
	return &Analyzer{store: opts.Store, now: opts.Now}
}

// AnalyzeOrder extracts products and categories from the order text, appends
// an analysis record and bumps the daily counters. Errors are returned so the
// caller can log them, but an order turn must never fail because of analytics.
func (a *Analyzer) AnalyzeOrder(orderNumber, orderText string) (catalog.Extraction, error) {
	extraction := catalog.Extract(orderText)
	slog.Debug("Analyzed order text", "orderNumber", orderNumber,
		"products", len(extraction.Products), "categories", len(extraction.Categories))

	if err := a.store.SaveOrderAnalysis(models.OrderAnalysis{
		OrderNumber: orderNumber,
		OrderText:   orderText,
		Products:    extraction.Products,
		Categories:  extraction.Categories,
	}); err != nil {
		return extraction, fmt.Errorf("failed to save order analysis: %w", err)
	}

	if len(extraction.Products) == 0 && len(extraction.Categories) == 0 {
		return extraction, nil
	}
	day := store.DayKey(a.now())
	if err := a.store.IncrementDailyProductStats(day, extraction.Products, extraction.Categories); err != nil {
		return extraction, fmt.Errorf("failed to update daily product stats: %w", err)
	}
	return extraction, nil
}

// PopularProducts returns product counters aggregated over the last days.
func (a *Analyzer) PopularProducts(days int) ([]models.ProductCount, error) {
	return a.store.PopularProducts(days)
}

// PopularCategories returns category counters aggregated over the last days.
func (a *Analyzer) PopularCategories(days int) ([]models.CategoryCount, error) {
	return a.store.PopularCategories(days)
}

// Report is a combined analytics summary for operators.
type Report struct {
	Days            int                    `json:"period_days"`
	Products        []models.ProductCount  `json:"popular_products"`
	Categories      []models.CategoryCount `json:"popular_categories"`
	Recommendations []string               `json:"recommendations"`
	GeneratedAt     time.Time              `json:"generated_at"`
}

// GenerateReport builds a popularity report over the last days, with simple
// deterministic recommendations derived from the counters.
func (a *Analyzer) GenerateReport(days int) (*Report, error) {
	if days <= 0 {
		days = 7
	}
	products, err := a.store.PopularProducts(days)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular products: %w", err)
	}
	categories, err := a.store.PopularCategories(days)
	if err != nil {
		return nil, fmt.Errorf("failed to load popular categories: %w", err)
	}

	return &Report{
		Days:            days,
		Products:        products,
		Categories:      categories,
		Recommendations: buildRecommendations(products, categories),
		GeneratedAt:     a.now(),
	}, nil
}

func buildRecommendations(products []models.ProductCount, categories []models.CategoryCount) []string {
	recs := []string{}
	if len(products) == 0 {
		recs = append(recs, "Aún no hay suficientes pedidos para generar recomendaciones")
		return recs
	}
	recs = append(recs, fmt.Sprintf("Producto estrella: %s (%d menciones). Considera promocionarlo.",
		products[0].Product, products[0].Frequency))
	if len(categories) > 0 {
		recs = append(recs, fmt.Sprintf("Categoría más pedida: %s", categories[0].Category))
	}
	if len(categories) < len(catalog.Categories()) {
		recs = append(recs, "Hay categorías del menú sin pedidos recientes. Considera destacarlas en el catálogo.")
	}
	return recs
}
