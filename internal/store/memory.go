// Package store provides storage backends for Sharibot.
//
// This file implements an in-memory store used in tests and when no
// database DSN is configured.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/sharicrepas/sharibot/internal/models"
)

// InMemoryStore keeps all records in process memory. It implements the full
// Store interface so the engine and API can run against it unchanged.
type InMemoryStore struct {
	mu        sync.RWMutex
	customers map[string]*models.Customer
	messages  []models.Message
	orders    map[string]*models.Order
	orderSeq  []string // insertion order of order numbers
	sessions  map[string]*models.ConversationSession
	analyses  []models.OrderAnalysis
	stats     map[string]map[string]int // day -> stat key -> count
	nextID    int64
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		customers: make(map[string]*models.Customer),
		orders:    make(map[string]*models.Order),
		sessions:  make(map[string]*models.ConversationSession),
		stats:     make(map[string]map[string]int),
	}
}

func (s *InMemoryStore) UpsertCustomer(phone, name string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if c, ok := s.customers[phone]; ok {
		c.UpdatedAt = now
		if name != "" {
			c.Name = name
		}
		copied := *c
		return &copied, nil
	}

	s.nextID++
	c := &models.Customer{
		ID:            s.nextID,
		Phone:         phone,
		Name:          name,
		CustomerSince: now,
		UpdatedAt:     now,
	}
	s.customers[phone] = c
	copied := *c
	return &copied, nil
}

func (s *InMemoryStore) GetCustomer(phone string) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[phone]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *InMemoryStore) ListCustomers() ([]models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	customers := make([]models.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, *c)
	}
	return customers, nil
}

func (s *InMemoryStore) RecordCustomerOrder(phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[phone]
	if !ok {
		return fmt.Errorf("customer %s not found", phone)
	}
	c.TotalOrders++
	if c.TotalOrders >= DefaultVIPOrderThreshold {
		c.IsVIP = true
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) SaveMessage(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.ID = s.nextID
	s.messages = append(s.messages, msg)
	return nil
}

func (s *InMemoryStore) GetMessages(limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lastMessages(s.messages, clampLimit(limit), func(models.Message) bool { return true }), nil
}

func (s *InMemoryStore) GetMessagesByPhone(phone string, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lastMessages(s.messages, clampLimit(limit), func(m models.Message) bool { return m.Phone == phone }), nil
}

// lastMessages walks the log backwards to return the newest matches first.
func lastMessages(log []models.Message, limit int, match func(models.Message) bool) []models.Message {
	var out []models.Message
	for i := len(log) - 1; i >= 0 && len(out) < limit; i-- {
		if match(log[i]) {
			out = append(out, log[i])
		}
	}
	return out
}

func (s *InMemoryStore) CreateOrder(order models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.OrderNumber]; exists {
		return nil, fmt.Errorf("order %s: %w", order.OrderNumber, models.ErrDuplicateOrder)
	}

	now := time.Now()
	s.nextID++
	order.ID = s.nextID
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := order
	s.orders[order.OrderNumber] = &stored
	s.orderSeq = append(s.orderSeq, order.OrderNumber)
	copied := stored
	return &copied, nil
}

func (s *InMemoryStore) GetOrder(orderNumber string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderNumber]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (s *InMemoryStore) ListOrders(limit int) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit = clampLimit(limit)
	var orders []models.Order
	for i := len(s.orderSeq) - 1; i >= 0 && len(orders) < limit; i-- {
		orders = append(orders, *s.orders[s.orderSeq[i]])
	}
	return orders, nil
}

func (s *InMemoryStore) UpdateOrderStatus(orderNumber string, status models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderNumber]
	if !ok {
		return fmt.Errorf("order %s not found", orderNumber)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) OrderNumberExists(orderNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.orders[orderNumber]
	return exists, nil
}

func (s *InMemoryStore) SaveConversationSession(sess models.ConversationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.sessions[sess.Phone]; ok {
		sess.StartedAt = existing.StartedAt
	} else {
		sess.StartedAt = now
	}
	sess.LastActivity = now
	stored := sess
	s.sessions[sess.Phone] = &stored
	return nil
}

func (s *InMemoryStore) GetConversationSession(phone string) (*models.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[phone]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *InMemoryStore) SaveOrderAnalysis(analysis models.OrderAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	analysis.CreatedAt = time.Now()
	s.analyses = append(s.analyses, analysis)
	return nil
}

// GetOrderAnalyses returns all recorded analyses (for tests).
func (s *InMemoryStore) GetOrderAnalyses() []models.OrderAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.OrderAnalysis, len(s.analyses))
	copy(out, s.analyses)
	return out
}

func (s *InMemoryStore) IncrementDailyProductStats(day string, products, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dayStats, ok := s.stats[day]
	if !ok {
		dayStats = make(map[string]int)
		s.stats[day] = dayStats
	}
	for _, key := range statKeys(products, categories) {
		dayStats[key]++
	}
	return nil
}

// StatCount returns one aggregate counter value (for tests).
func (s *InMemoryStore) StatCount(day, key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats[day][key]
}

func (s *InMemoryStore) PopularProducts(days int) ([]models.ProductCount, error) {
	totals := s.sumStats(days, "product_")
	counts := make([]models.ProductCount, 0, len(totals))
	for key, freq := range totals {
		counts = append(counts, models.ProductCount{Product: productFromStatKey(key), Frequency: freq})
	}
	sortProductCounts(counts)
	if len(counts) > 15 {
		counts = counts[:15]
	}
	return counts, nil
}

func (s *InMemoryStore) PopularCategories(days int) ([]models.CategoryCount, error) {
	totals := s.sumStats(days, "category_")
	counts := make([]models.CategoryCount, 0, len(totals))
	for key, freq := range totals {
		counts = append(counts, models.CategoryCount{Category: categoryFromStatKey(key), Frequency: freq})
	}
	sortCategoryCounts(counts)
	return counts, nil
}

func (s *InMemoryStore) sumStats(days int, prefix string) map[string]int {
	cutoff := statsCutoffDay(days)
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[string]int)
	for day, dayStats := range s.stats {
		if day < cutoff {
			continue
		}
		for key, count := range dayStats {
			if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
				totals[key] += count
			}
		}
	}
	return totals
}

func (s *InMemoryStore) TodayStats() (*models.DailyStats, error) {
	midnight := startOfToday().UnixMilli()
	s.mu.RLock()
	seen := make(map[string]bool)
	for _, m := range s.messages {
		if m.Timestamp >= midnight {
			seen[m.Phone] = true
		}
	}
	orders := 0
	for _, o := range s.orders {
		if o.CreatedAt.UnixMilli() >= midnight {
			orders++
		}
	}
	s.mu.RUnlock()
	return buildDailyStats(len(seen), orders), nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
