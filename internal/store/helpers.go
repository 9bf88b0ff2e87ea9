package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sharicrepas/sharibot/internal/models"
)

// DayKeyFormat is the date layout used for daily aggregate keys.
const DayKeyFormat = "2006-01-02"

// DefaultListLimit caps list queries when callers pass a non-positive limit.
const DefaultListLimit = 50

// DayKey returns the daily aggregate key for a point in time.
func DayKey(t time.Time) string {
	return t.Format(DayKeyFormat)
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func marshalSessionData(data models.SessionData) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session data: %w", err)
	}
	return string(jsonBytes), nil
}

func unmarshalSessionData(raw string) models.SessionData {
	var data models.SessionData
	if raw == "" {
		return data
	}
	// Tolerate malformed payloads rather than failing the lookup.
	_ = json.Unmarshal([]byte(raw), &data)
	return data
}

func marshalAnalysisLists(analysis models.OrderAnalysis) (string, string, error) {
	productsJSON, err := json.Marshal(analysis.Products)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal extracted products: %w", err)
	}
	categoriesJSON, err := json.Marshal(analysis.Categories)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal product categories: %w", err)
	}
	return string(productsJSON), string(categoriesJSON), nil
}

// statKeys builds the aggregate counter keys for one extraction result:
// "product_<alias>" with spaces replaced by underscores, and "category_<name>".
func statKeys(products, categories []string) []string {
	keys := make([]string, 0, len(products)+len(categories))
	for _, product := range products {
		keys = append(keys, "product_"+strings.ReplaceAll(product, " ", "_"))
	}
	for _, category := range categories {
		keys = append(keys, "category_"+category)
	}
	return keys
}

func productFromStatKey(key string) string {
	return strings.ReplaceAll(strings.TrimPrefix(key, "product_"), "_", " ")
}

func categoryFromStatKey(key string) string {
	return strings.TrimPrefix(key, "category_")
}

func statsCutoffDay(days int) string {
	if days <= 0 {
		days = 7
	}
	return DayKey(time.Now().AddDate(0, 0, -(days - 1)))
}

func sortProductCounts(counts []models.ProductCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Frequency != counts[j].Frequency {
			return counts[i].Frequency > counts[j].Frequency
		}
		return counts[i].Product < counts[j].Product
	})
}

func sortCategoryCounts(counts []models.CategoryCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Frequency != counts[j].Frequency {
			return counts[i].Frequency > counts[j].Frequency
		}
		return counts[i].Category < counts[j].Category
	})
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func buildDailyStats(conversations, orders int) *models.DailyStats {
	rate := 0.0
	if conversations > 0 {
		rate = math.Round(float64(orders)/float64(conversations)*100*100) / 100
	}
	return &models.DailyStats{
		Date:               DayKey(time.Now()),
		TotalConversations: conversations,
		TotalOrders:        orders,
		ConversionRate:     rate,
	}
}
