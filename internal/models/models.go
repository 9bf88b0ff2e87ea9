// Package models defines the core data structures for Sharibot.
//
// It includes the intent and screen enumerations, customer and order records,
// conversation session state, and transport event types shared across modules.
package models

import (
	"errors"
	"time"
)

// Intent classifies the purpose of an incoming free-text message.
type Intent string

const (
	// IntentGreeting covers salutations such as "hola" or "/start".
	IntentGreeting Intent = "greeting"
	// IntentMenuRequest asks for the menu or catalog.
	IntentMenuRequest Intent = "menu_request"
	// IntentOrderRequest starts the ordering flow.
	IntentOrderRequest Intent = "order_request"
	// IntentLocationRequest asks where the business is.
	IntentLocationRequest Intent = "location_request"
	// IntentScheduleRequest asks about opening hours.
	IntentScheduleRequest Intent = "schedule_request"
	// IntentContactRequest asks for phone or social media details.
	IntentContactRequest Intent = "contact_request"
	// IntentHelpRequest asks what the bot can do.
	IntentHelpRequest Intent = "help_request"
	// IntentMenuSelection is a bare "1", "2" or "3" choice.
	IntentMenuSelection Intent = "menu_selection"
	// IntentThanks is a courtesy message.
	IntentThanks Intent = "thanks"
	// IntentUnknown is the deterministic fallback for everything else.
	IntentUnknown Intent = "unknown"
)

// Screen identifies the current step of a customer's multi-turn dialogue.
type Screen string

const (
	// ScreenWelcome is the initial screen for every new customer.
	ScreenWelcome Screen = "welcome"
	// ScreenOrdering means the customer was shown the three order options.
	ScreenOrdering Screen = "ordering"
	// ScreenTakingOrder means the two-turn order capture is in progress.
	ScreenTakingOrder Screen = "taking_order"
	// ScreenCompleted is reached transiently when an order is confirmed.
	ScreenCompleted Screen = "completed"
	// ScreenCancelled exists in the model but no transition produces it yet.
	ScreenCancelled Screen = "cancelled"
)

// IsValidScreen checks whether the given screen is part of the enumeration.
func IsValidScreen(s Screen) bool {
	switch s {
	case ScreenWelcome, ScreenOrdering, ScreenTakingOrder, ScreenCompleted, ScreenCancelled:
		return true
	default:
		return false
	}
}

// CustomerState is the in-memory dialogue state for one customer.
// The durable mirror of this state is ConversationSession.
type CustomerState struct {
	Screen       Screen    `json:"screen"`
	CustomerName string    `json:"customer_name,omitempty"`
	OrderDetails string    `json:"order_details,omitempty"`
	IsConfirmed  bool      `json:"is_confirmed"`
	OrderNumber  string    `json:"order_number,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

// NewCustomerState returns the initial state for a customer identifier.
func NewCustomerState() CustomerState {
	return CustomerState{Screen: ScreenWelcome}
}

// SessionData is the JSON payload persisted with a conversation session.
type SessionData struct {
	CustomerName string `json:"customer_name,omitempty"`
	OrderDetails string `json:"order_details,omitempty"`
	OrderNumber  string `json:"order_number,omitempty"`
	IsConfirmed  bool   `json:"is_confirmed,omitempty"`
}

// ConversationSession is the durable, store-backed copy of a customer's
// dialogue state. It is the source of truth across process restarts.
type ConversationSession struct {
	Phone        string      `json:"phone_number"`
	Screen       Screen      `json:"current_screen"`
	Data         SessionData `json:"session_data"`
	StartedAt    time.Time   `json:"started_at"`
	LastActivity time.Time   `json:"last_activity"`
}

// Customer is a registered WhatsApp customer.
type Customer struct {
	ID            int64     `json:"id"`
	Phone         string    `json:"phone_number"`
	Name          string    `json:"name,omitempty"`
	TotalOrders   int       `json:"total_orders"`
	IsVIP         bool      `json:"is_vip"`
	CustomerSince time.Time `json:"customer_since"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderType identifies the channel an order came in through.
type OrderType string

const (
	// OrderTypeWhatsApp is the only type this engine produces.
	OrderTypeWhatsApp OrderType = "whatsapp"
	// OrderTypePhone is set by operators for phoned-in orders.
	OrderTypePhone OrderType = "phone"
	// OrderTypeWalkIn is set by operators for in-person orders.
	OrderTypeWalkIn OrderType = "walk-in"
)

// OrderStatus tracks fulfillment progress. Only "pending" is set by the bot;
// the rest are driven by operators through the API.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValidOrderStatus checks whether the given status is part of the enumeration.
func IsValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order is a persisted order record. Order details are immutable once
// created; only the status may change afterwards.
type Order struct {
	ID            int64       `json:"id"`
	OrderNumber   string      `json:"order_number"`
	Phone         string      `json:"phone_number"`
	CustomerName  string      `json:"customer_name,omitempty"`
	OrderDetails  string      `json:"order_details"`
	OrderType     OrderType   `json:"order_type"`
	Status        OrderStatus `json:"status"`
	EstimatedTime int         `json:"estimated_time,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Validation constants for order drafts and outgoing messages.
const (
	// MaxMessageLength is the maximum outgoing message body length.
	MaxMessageLength = 4000
	// MaxOrderDetailsLength bounds the free-text order description.
	MaxOrderDetailsLength = 2000
)

// Error variables shared across modules for testable error handling.
var (
	ErrEmptyRecipient      = errors.New("recipient cannot be empty")
	ErrEmptyBody           = errors.New("message body cannot be empty")
	ErrBodyTooLong         = errors.New("message body exceeds maximum length")
	ErrEmptyOrderDetails   = errors.New("order details cannot be empty")
	ErrOrderDetailsTooLong = errors.New("order details exceed maximum length")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
	ErrDuplicateOrder      = errors.New("order number already exists")
)

// Validate checks an order draft before persistence.
func (o Order) Validate() error {
	if o.Phone == "" {
		return ErrEmptyRecipient
	}
	if o.OrderDetails == "" {
		return ErrEmptyOrderDetails
	}
	if len(o.OrderDetails) > MaxOrderDetailsLength {
		return ErrOrderDetailsTooLong
	}
	if !IsValidOrderStatus(o.Status) {
		return ErrInvalidOrderStatus
	}
	return nil
}

// MessageDirection marks whether a recorded message was received or sent.
type MessageDirection string

const (
	DirectionIncoming MessageDirection = "incoming"
	DirectionOutgoing MessageDirection = "outgoing"
)

// Message is an audit record of one message in either direction.
type Message struct {
	ID             int64            `json:"id"`
	MessageID      string           `json:"message_id"`
	Phone          string           `json:"phone_number"`
	Direction      MessageDirection `json:"direction"`
	Text           string           `json:"message_text"`
	Intent         Intent           `json:"intent,omitempty"`
	ResponseTimeMs int64            `json:"response_time_ms,omitempty"`
	Timestamp      int64            `json:"timestamp"`
}

// OrderAnalysis is one append-only product extraction result, keyed by the
// order number so re-running analysis never double counts.
type OrderAnalysis struct {
	OrderNumber string    `json:"order_number"`
	OrderText   string    `json:"order_text"`
	Products    []string  `json:"extracted_products"`
	Categories  []string  `json:"product_categories"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductCount is one row of a popularity report.
type ProductCount struct {
	Product   string `json:"product"`
	Frequency int    `json:"frequency"`
}

// CategoryCount is one row of a category popularity report.
type CategoryCount struct {
	Category  string `json:"category"`
	Frequency int    `json:"frequency"`
}

// DailyStats summarizes one day of bot activity.
type DailyStats struct {
	Date               string  `json:"date"`
	TotalConversations int     `json:"total_conversations"`
	TotalOrders        int     `json:"total_orders"`
	ConversionRate     float64 `json:"conversion_rate"`
}

// StatusType represents delivery status values for receipts.
type StatusType string

const (
	StatusTypeSent      StatusType = "sent"
	StatusTypeDelivered StatusType = "delivered"
	StatusTypeRead      StatusType = "read"
)

// Receipt represents a delivery or read receipt for an outgoing message.
type Receipt struct {
	To     string     `json:"to"`
	Status StatusType `json:"status"`
	Time   int64      `json:"time"`
}

// Response represents an incoming message from a customer.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}
