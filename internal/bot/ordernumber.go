package bot

import (
	"fmt"
	"time"

	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/store"
	"github.com/sharicrepas/sharibot/internal/util"
)

// Order numbers look like SH260901483: the "SH" prefix, the date as YYMMDD,
// and three digits. The first candidate derives the digits from the
// sub-second clock; collisions are checked against the store and retried
// with random digits.
const (
	orderNumberPrefix     = "SH"
	orderNumberDateLayout = "060102"
	orderNumberMaxRetries = 3
)

func formatOrderNumber(t time.Time, digits string) string {
	return orderNumberPrefix + t.Format(orderNumberDateLayout) + digits
}

// NewOrderNumber generates a collision-checked order number for the given
// moment. It returns models.ErrDuplicateOrder wrapped if all candidates are
// taken, which under real load is effectively unreachable.
func NewOrderNumber(s store.Store, now time.Time) (string, error) {
	candidate := formatOrderNumber(now, fmt.Sprintf("%03d", now.UnixMilli()%1000))
	for attempt := 0; ; attempt++ {
		exists, err := s.OrderNumberExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check order number %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		if attempt >= orderNumberMaxRetries {
			return "", fmt.Errorf("order number generation exhausted retries: %w", models.ErrDuplicateOrder)
		}
		candidate = formatOrderNumber(now, util.GenerateRandomDigits(3))
	}
}
