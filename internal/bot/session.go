package bot

import (
	"log/slog"
	"sync"

	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/store"
)

// SessionRegistry holds the in-memory dialogue state for every active
// customer, keyed by phone number. Each entry carries its own mutex so turns
// for the same customer are serialized while different customers never
// contend. The registry is constructed once at startup and injected into the
// engine; there is no package-level instance.
type SessionRegistry struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	store   store.Store
}

type sessionEntry struct {
	mu    sync.Mutex
	state models.CustomerState
}

// NewSessionRegistry creates a registry backed by the given store. The store
// is used to rehydrate dialogue state from the durable session mirror on the
// first message after a restart; pass nil for a purely in-memory registry.
func NewSessionRegistry(s store.Store) *SessionRegistry {
	return &SessionRegistry{
		entries: make(map[string]*sessionEntry),
		store:   s,
	}
}

// Do runs fn with the per-customer lock held. The state pointer is only valid
// for the duration of the call; mutations made by fn are retained.
func (r *SessionRegistry) Do(phone string, fn func(state *models.CustomerState)) {
	entry := r.entry(phone)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(&entry.state)
}

// Snapshot returns a copy of the customer's current state, creating the
// initial state if the customer is new.
func (r *SessionRegistry) Snapshot(phone string) models.CustomerState {
	var copied models.CustomerState
	r.Do(phone, func(state *models.CustomerState) {
		copied = *state
	})
	return copied
}

// Reset returns the customer's state to its initial values.
func (r *SessionRegistry) Reset(phone string) {
	r.Do(phone, func(state *models.CustomerState) {
		*state = models.NewCustomerState()
	})
}

func (r *SessionRegistry) entry(phone string) *sessionEntry {
	r.mu.Lock()
	entry, ok := r.entries[phone]
	if !ok {
		entry = &sessionEntry{state: r.rehydrate(phone)}
		r.entries[phone] = entry
	}
	r.mu.Unlock()
	return entry
}

// rehydrate restores dialogue state from the durable session mirror so an
// in-progress order survives a process restart. Terminal screens and lookup
// failures fall back to the initial state.
func (r *SessionRegistry) rehydrate(phone string) models.CustomerState {
	state := models.NewCustomerState()
	if r.store == nil {
		return state
	}

	sess, err := r.store.GetConversationSession(phone)
	if err != nil {
		slog.Warn("Failed to rehydrate conversation session", "phone", phone, "error", err)
		return state
	}
	if sess == nil || !models.IsValidScreen(sess.Screen) {
		return state
	}
	if sess.Screen == models.ScreenCompleted || sess.Screen == models.ScreenCancelled {
		return state
	}

	state.Screen = sess.Screen
	state.CustomerName = sess.Data.CustomerName
	state.OrderDetails = sess.Data.OrderDetails
	state.OrderNumber = sess.Data.OrderNumber
	state.IsConfirmed = sess.Data.IsConfirmed
	state.LastActivity = sess.LastActivity
	slog.Debug("Rehydrated conversation session", "phone", phone, "screen", sess.Screen)
	return state
}
