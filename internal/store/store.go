// Package store provides storage backends for Sharibot.
//
// It defines the persistence contract the dialogue engine and API depend on,
// with SQLite and PostgreSQL implementations selected by DSN auto-detection
// and an in-memory implementation for tests.
package store

import (
	"strings"

	"github.com/sharicrepas/sharibot/internal/models"
)

// DefaultVIPOrderThreshold is the lifetime order count at which a customer
// is flagged as VIP.
const DefaultVIPOrderThreshold = 10

// Store is the persistence collaborator consumed by the bot engine,
// the analytics module and the HTTP API.
type Store interface {
	// UpsertCustomer registers a customer or refreshes their activity.
	// An empty name never overwrites a previously stored name.
	UpsertCustomer(phone, name string) (*models.Customer, error)
	// GetCustomer returns the customer for a phone number, or nil if unknown.
	GetCustomer(phone string) (*models.Customer, error)
	// ListCustomers returns all registered customers.
	ListCustomers() ([]models.Customer, error)
	// RecordCustomerOrder increments the customer's lifetime order counter
	// and flags VIP status once the threshold is reached.
	RecordCustomerOrder(phone string) error

	// SaveMessage appends one message audit record.
	SaveMessage(msg models.Message) error
	// GetMessages returns the most recent messages, newest first.
	GetMessages(limit int) ([]models.Message, error)
	// GetMessagesByPhone returns the most recent messages exchanged with one
	// customer, newest first.
	GetMessagesByPhone(phone string, limit int) ([]models.Message, error)

	// CreateOrder persists a new order. A colliding order number returns an
	// error wrapping models.ErrDuplicateOrder, never a silent overwrite.
	CreateOrder(order models.Order) (*models.Order, error)
	// GetOrder returns the order with the given number, or nil if unknown.
	GetOrder(orderNumber string) (*models.Order, error)
	// ListOrders returns the most recent orders, newest first.
	ListOrders(limit int) ([]models.Order, error)
	// UpdateOrderStatus moves an order to a new fulfillment status.
	UpdateOrderStatus(orderNumber string, status models.OrderStatus) error
	// OrderNumberExists reports whether an order number is already taken.
	OrderNumberExists(orderNumber string) (bool, error)

	// SaveConversationSession upserts the durable session mirror for a customer.
	SaveConversationSession(sess models.ConversationSession) error
	// GetConversationSession returns the mirror for a phone number, or nil.
	GetConversationSession(phone string) (*models.ConversationSession, error)

	// SaveOrderAnalysis appends one product extraction result keyed by order number.
	SaveOrderAnalysis(analysis models.OrderAnalysis) error
	// IncrementDailyProductStats folds extracted products and categories into
	// the given day's aggregate counters. Counters only ever increase.
	IncrementDailyProductStats(day string, products, categories []string) error
	// PopularProducts aggregates product counters over the last N days.
	PopularProducts(days int) ([]models.ProductCount, error)
	// PopularCategories aggregates category counters over the last N days.
	PopularCategories(days int) ([]models.CategoryCount, error)
	// TodayStats summarizes today's conversations and orders.
	TodayStats() (*models.DailyStats, error)

	// Close releases the underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string // database connection string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path as the store DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets a PostgreSQL connection string as the store DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite".
// PostgreSQL DSNs use the postgres:// scheme or key=value form; anything
// else is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	if strings.Contains(dsn, "host=") || strings.Contains(dsn, "user=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite"
}

// NewStore creates the store backend matching the configured DSN. Without a
// DSN it falls back to the in-memory store.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return NewInMemoryStore(), nil
	}
	if DetectDSNType(cfg.DSN) == "postgres" {
		return NewPostgresStore(opts...)
	}
	return NewSQLiteStore(opts...)
}
