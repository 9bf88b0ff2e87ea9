// Package store provides storage backends for Sharibot.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/mattn/go-sqlite3"
	"github.com/sharicrepas/sharibot/internal/models"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) UpsertCustomer(phone, name string) (*models.Customer, error) {
	now := time.Now()
	query := `
		INSERT INTO customers (phone_number, name, customer_since, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(phone_number) DO UPDATE SET
			updated_at = excluded.updated_at,
			name = COALESCE(NULLIF(excluded.name, ''), customers.name)`
	if _, err := s.db.Exec(query, phone, nilIfEmpty(name), now, now); err != nil {
		slog.Error("SQLiteStore UpsertCustomer failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to upsert customer %s: %w", phone, err)
	}
	return s.GetCustomer(phone)
}

func (s *SQLiteStore) GetCustomer(phone string) (*models.Customer, error) {
	query := `SELECT id, phone_number, COALESCE(name, ''), total_orders, is_vip, customer_since, updated_at
			  FROM customers WHERE phone_number = ?`
	var c models.Customer
	err := s.db.QueryRow(query, phone).Scan(
		&c.ID, &c.Phone, &c.Name, &c.TotalOrders, &c.IsVIP, &c.CustomerSince, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetCustomer failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to get customer %s: %w", phone, err)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCustomers() ([]models.Customer, error) {
	rows, err := s.db.Query(`SELECT id, phone_number, COALESCE(name, ''), total_orders, is_vip, customer_since, updated_at
							 FROM customers ORDER BY customer_since DESC`)
	if err != nil {
		slog.Error("SQLiteStore ListCustomers query failed", "error", err)
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Phone, &c.Name, &c.TotalOrders, &c.IsVIP, &c.CustomerSince, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *SQLiteStore) RecordCustomerOrder(phone string) error {
	query := `
		UPDATE customers SET
			total_orders = total_orders + 1,
			is_vip = CASE WHEN total_orders + 1 >= ? THEN 1 ELSE is_vip END,
			updated_at = ?
		WHERE phone_number = ?`
	if _, err := s.db.Exec(query, DefaultVIPOrderThreshold, time.Now(), phone); err != nil {
		slog.Error("SQLiteStore RecordCustomerOrder failed", "error", err, "phone", phone)
		return fmt.Errorf("failed to record order for customer %s: %w", phone, err)
	}
	slog.Debug("SQLiteStore RecordCustomerOrder succeeded", "phone", phone)
	return nil
}

func (s *SQLiteStore) SaveMessage(msg models.Message) error {
	query := `INSERT INTO messages (message_id, phone_number, direction, message_text, intent, response_time_ms, timestamp)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, msg.MessageID, msg.Phone, msg.Direction, msg.Text,
		nilIfEmpty(string(msg.Intent)), msg.ResponseTimeMs, msg.Timestamp)
	if err != nil {
		slog.Error("SQLiteStore SaveMessage failed", "error", err, "phone", msg.Phone, "direction", msg.Direction)
		return fmt.Errorf("failed to insert message for %s: %w", msg.Phone, err)
	}
	slog.Debug("SQLiteStore SaveMessage succeeded", "phone", msg.Phone, "direction", msg.Direction)
	return nil
}

func (s *SQLiteStore) GetMessages(limit int) ([]models.Message, error) {
	return s.queryMessages(`SELECT id, message_id, phone_number, direction, message_text, COALESCE(intent, ''), COALESCE(response_time_ms, 0), timestamp
		FROM messages ORDER BY timestamp DESC LIMIT ?`, clampLimit(limit))
}

func (s *SQLiteStore) GetMessagesByPhone(phone string, limit int) ([]models.Message, error) {
	return s.queryMessages(`SELECT id, message_id, phone_number, direction, message_text, COALESCE(intent, ''), COALESCE(response_time_ms, 0), timestamp
		FROM messages WHERE phone_number = ? ORDER BY timestamp DESC LIMIT ?`, phone, clampLimit(limit))
}

func (s *SQLiteStore) queryMessages(query string, args ...interface{}) ([]models.Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("SQLiteStore message query failed", "error", err)
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.MessageID, &m.Phone, &m.Direction, &m.Text, &m.Intent, &m.ResponseTimeMs, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) CreateOrder(order models.Order) (*models.Order, error) {
	now := time.Now()
	query := `INSERT INTO orders (order_number, phone_number, customer_name, order_details, order_type, status, estimated_time, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, order.OrderNumber, order.Phone, nilIfEmpty(order.CustomerName),
		order.OrderDetails, order.OrderType, order.Status, order.EstimatedTime, now, now)
	if err != nil {
		if sqliteErr, ok := err.(sqlite3.Error); ok && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			slog.Error("SQLiteStore CreateOrder uniqueness violation", "order_number", order.OrderNumber)
			return nil, fmt.Errorf("order %s: %w", order.OrderNumber, models.ErrDuplicateOrder)
		}
		slog.Error("SQLiteStore CreateOrder failed", "error", err, "order_number", order.OrderNumber)
		return nil, fmt.Errorf("failed to insert order %s: %w", order.OrderNumber, err)
	}
	slog.Debug("SQLiteStore CreateOrder succeeded", "order_number", order.OrderNumber, "phone", order.Phone)
	return s.GetOrder(order.OrderNumber)
}

func (s *SQLiteStore) GetOrder(orderNumber string) (*models.Order, error) {
	query := `SELECT id, order_number, phone_number, COALESCE(customer_name, ''), order_details, order_type, status, COALESCE(estimated_time, 0), created_at, updated_at
			  FROM orders WHERE order_number = ?`
	var o models.Order
	err := s.db.QueryRow(query, orderNumber).Scan(
		&o.ID, &o.OrderNumber, &o.Phone, &o.CustomerName, &o.OrderDetails,
		&o.OrderType, &o.Status, &o.EstimatedTime, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetOrder failed", "error", err, "order_number", orderNumber)
		return nil, fmt.Errorf("failed to get order %s: %w", orderNumber, err)
	}
	return &o, nil
}

func (s *SQLiteStore) ListOrders(limit int) ([]models.Order, error) {
	rows, err := s.db.Query(`SELECT id, order_number, phone_number, COALESCE(customer_name, ''), order_details, order_type, status, COALESCE(estimated_time, 0), created_at, updated_at
							 FROM orders ORDER BY created_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		slog.Error("SQLiteStore ListOrders query failed", "error", err)
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Phone, &o.CustomerName, &o.OrderDetails,
			&o.OrderType, &o.Status, &o.EstimatedTime, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *SQLiteStore) UpdateOrderStatus(orderNumber string, status models.OrderStatus) error {
	result, err := s.db.Exec(`UPDATE orders SET status = ?, updated_at = ? WHERE order_number = ?`,
		status, time.Now(), orderNumber)
	if err != nil {
		slog.Error("SQLiteStore UpdateOrderStatus failed", "error", err, "order_number", orderNumber)
		return fmt.Errorf("failed to update order %s: %w", orderNumber, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("order %s not found", orderNumber)
	}
	slog.Debug("SQLiteStore UpdateOrderStatus succeeded", "order_number", orderNumber, "status", status)
	return nil
}

func (s *SQLiteStore) OrderNumberExists(orderNumber string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE order_number = ?`, orderNumber).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check order number %s: %w", orderNumber, err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) SaveConversationSession(sess models.ConversationSession) error {
	dataJSON, err := marshalSessionData(sess.Data)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationSession marshal failed", "error", err, "phone", sess.Phone)
		return err
	}
	query := `
		INSERT INTO conversation_sessions (phone_number, current_screen, session_data, started_at, last_activity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(phone_number) DO UPDATE SET
			current_screen = excluded.current_screen,
			session_data = excluded.session_data,
			last_activity = excluded.last_activity`
	now := time.Now()
	if _, err := s.db.Exec(query, sess.Phone, sess.Screen, dataJSON, now, now); err != nil {
		slog.Error("SQLiteStore SaveConversationSession failed", "error", err, "phone", sess.Phone)
		return fmt.Errorf("failed to save session for %s: %w", sess.Phone, err)
	}
	slog.Debug("SQLiteStore SaveConversationSession succeeded", "phone", sess.Phone, "screen", sess.Screen)
	return nil
}

func (s *SQLiteStore) GetConversationSession(phone string) (*models.ConversationSession, error) {
	query := `SELECT phone_number, current_screen, COALESCE(session_data, ''), started_at, last_activity
			  FROM conversation_sessions WHERE phone_number = ?`
	var sess models.ConversationSession
	var dataJSON string
	err := s.db.QueryRow(query, phone).Scan(&sess.Phone, &sess.Screen, &dataJSON, &sess.StartedAt, &sess.LastActivity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversationSession failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to get session for %s: %w", phone, err)
	}
	sess.Data = unmarshalSessionData(dataJSON)
	return &sess, nil
}

func (s *SQLiteStore) SaveOrderAnalysis(analysis models.OrderAnalysis) error {
	productsJSON, categoriesJSON, err := marshalAnalysisLists(analysis)
	if err != nil {
		slog.Error("SQLiteStore SaveOrderAnalysis marshal failed", "error", err, "order_number", analysis.OrderNumber)
		return err
	}
	query := `INSERT INTO order_product_analysis (order_number, order_text, extracted_products, product_categories, created_at)
			  VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.Exec(query, analysis.OrderNumber, analysis.OrderText, productsJSON, categoriesJSON, time.Now()); err != nil {
		slog.Error("SQLiteStore SaveOrderAnalysis failed", "error", err, "order_number", analysis.OrderNumber)
		return fmt.Errorf("failed to save analysis for %s: %w", analysis.OrderNumber, err)
	}
	slog.Debug("SQLiteStore SaveOrderAnalysis succeeded", "order_number", analysis.OrderNumber, "products", len(analysis.Products))
	return nil
}

func (s *SQLiteStore) IncrementDailyProductStats(day string, products, categories []string) error {
	query := `
		INSERT INTO daily_product_stats (day, stat_key, count) VALUES (?, ?, 1)
		ON CONFLICT(day, stat_key) DO UPDATE SET count = count + 1`
	for _, key := range statKeys(products, categories) {
		if _, err := s.db.Exec(query, day, key); err != nil {
			slog.Error("SQLiteStore IncrementDailyProductStats failed", "error", err, "day", day, "key", key)
			return fmt.Errorf("failed to increment stat %s: %w", key, err)
		}
	}
	return nil
}

func (s *SQLiteStore) PopularProducts(days int) ([]models.ProductCount, error) {
	rows, err := s.db.Query(`
		SELECT stat_key, SUM(count) FROM daily_product_stats
		WHERE day >= ? AND stat_key LIKE 'product_%'
		GROUP BY stat_key ORDER BY SUM(count) DESC, stat_key LIMIT 15`, statsCutoffDay(days))
	if err != nil {
		slog.Error("SQLiteStore PopularProducts query failed", "error", err)
		return nil, fmt.Errorf("failed to query popular products: %w", err)
	}
	defer rows.Close()

	var counts []models.ProductCount
	for rows.Next() {
		var key string
		var freq int
		if err := rows.Scan(&key, &freq); err != nil {
			return nil, fmt.Errorf("failed to scan product stat row: %w", err)
		}
		counts = append(counts, models.ProductCount{Product: productFromStatKey(key), Frequency: freq})
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) PopularCategories(days int) ([]models.CategoryCount, error) {
	rows, err := s.db.Query(`
		SELECT stat_key, SUM(count) FROM daily_product_stats
		WHERE day >= ? AND stat_key LIKE 'category_%'
		GROUP BY stat_key ORDER BY SUM(count) DESC, stat_key`, statsCutoffDay(days))
	if err != nil {
		slog.Error("SQLiteStore PopularCategories query failed", "error", err)
		return nil, fmt.Errorf("failed to query popular categories: %w", err)
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var key string
		var freq int
		if err := rows.Scan(&key, &freq); err != nil {
			return nil, fmt.Errorf("failed to scan category stat row: %w", err)
		}
		counts = append(counts, models.CategoryCount{Category: categoryFromStatKey(key), Frequency: freq})
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) TodayStats() (*models.DailyStats, error) {
	midnight := startOfToday()

	var conversations int
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT phone_number) FROM messages WHERE timestamp >= ?`,
		midnight.UnixMilli()).Scan(&conversations)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's conversations: %w", err)
	}

	var orders int
	err = s.db.QueryRow(`SELECT COUNT(*) FROM orders WHERE created_at >= ?`, midnight).Scan(&orders)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's orders: %w", err)
	}

	return buildDailyStats(conversations, orders), nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
