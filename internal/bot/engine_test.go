package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sharicrepas/sharibot/internal/analytics"
	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/store"
)

// mockMessenger implements messaging.Service for engine tests.
type mockMessenger struct {
	mu        sync.Mutex
	sent      []string
	failSends int
	responses chan models.Response
	receipts  chan models.Receipt
}

func newMockMessenger() *mockMessenger {
	return &mockMessenger{
		responses: make(chan models.Response, 8),
		receipts:  make(chan models.Receipt, 8),
	}
}

func (m *mockMessenger) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return recipient, nil
}

func (m *mockMessenger) SendMessage(ctx context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSends > 0 {
		m.failSends--
		return errors.New("transport unavailable")
	}
	m.sent = append(m.sent, body)
	return nil
}

func (m *mockMessenger) Start(ctx context.Context) error { return nil }
func (m *mockMessenger) Stop() error                     { return nil }

func (m *mockMessenger) Receipts() <-chan models.Receipt   { return m.receipts }
func (m *mockMessenger) Responses() <-chan models.Response { return m.responses }

func (m *mockMessenger) lastSent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockMessenger) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// openClock is a Thursday evening, inside business hours.
func openClock() time.Time {
	return time.Date(2026, 9, 3, 18, 30, 0, 0, time.UTC)
}

// closedClock is a Wednesday evening, the weekly closing day.
func closedClock() time.Time {
	return time.Date(2026, 9, 2, 18, 30, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T, s store.Store, clock func() time.Time) (*Engine, *mockMessenger) {
	t.Helper()
	msg := newMockMessenger()
	engine := NewEngine(
		WithStore(s),
		WithMessagingService(msg),
		WithAnalyzer(analytics.NewAnalyzer(analytics.WithStore(s), analytics.WithClock(clock))),
		WithClock(clock),
	)
	return engine, msg
}

func send(e *Engine, phone, text string) {
	e.HandleResponse(context.Background(), models.Response{From: phone, Body: text, Time: time.Now().Unix()})
}

func TestGreetingDuringBusinessHours(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "hola")

	state := engine.Sessions().Snapshot("6861111111")
	if state.Screen != models.ScreenWelcome {
		t.Errorf("Expected welcome screen after greeting, got %q", state.Screen)
	}

	reply := msg.lastSent()
	if !strings.Contains(reply, BusinessPhone) {
		t.Errorf("Welcome reply must contain the business phone, got:\n%s", reply)
	}
	if !strings.Contains(reply, "4:00 pm") {
		t.Errorf("Welcome reply must contain the opening hour, got:\n%s", reply)
	}
	if !strings.Contains(reply, "¡Buenas noches! 🌙") {
		t.Errorf("Expected time-based salutation prefix, got:\n%s", reply)
	}

	if c, _ := s.GetCustomer("6861111111"); c == nil {
		t.Error("Expected greeting to register the customer")
	}
}

func TestGreetingWhileClosed(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, closedClock)

	send(engine, "6861111111", "hola")

	reply := msg.lastSent()
	if !strings.Contains(reply, "Estamos cerrados") {
		t.Errorf("Expected the closed notice on Wednesday, got:\n%s", reply)
	}
	if state := engine.Sessions().Snapshot("6861111111"); state.Screen != models.ScreenWelcome {
		t.Errorf("Closed greeting should still land on welcome, got %q", state.Screen)
	}
}

func TestOrderFlowReachesTakingOrder(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "pedido")
	if state := engine.Sessions().Snapshot("6861111111"); state.Screen != models.ScreenOrdering {
		t.Fatalf("Expected ordering screen after 'pedido', got %q", state.Screen)
	}

	send(engine, "6861111111", "2")
	state := engine.Sessions().Snapshot("6861111111")
	if state.Screen != models.ScreenTakingOrder {
		t.Fatalf("Expected taking_order screen after '2', got %q", state.Screen)
	}
	reply := msg.lastSent()
	if !strings.Contains(reply, "Escribe tu pedido") {
		t.Errorf("Expected prompt for the order text, got:\n%s", reply)
	}
	if strings.Contains(reply, "¿Cómo te llamas?") {
		t.Errorf("Name question must not appear before the order text:\n%s", reply)
	}
}

func TestOrderingOptionOneAndThree(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "pedido")
	send(engine, "6861111111", "1")
	if !strings.Contains(msg.lastSent(), CatalogURL) {
		t.Errorf("Option 1 must link the catalog, got:\n%s", msg.lastSent())
	}
	if state := engine.Sessions().Snapshot("6861111111"); state.Screen != models.ScreenOrdering {
		t.Errorf("Option 1 must not enter taking_order, got %q", state.Screen)
	}

	send(engine, "6861111111", "3")
	if !strings.Contains(msg.lastSent(), BusinessPhone) {
		t.Errorf("Option 3 must give the phone number, got:\n%s", msg.lastSent())
	}

	send(engine, "6861111111", "xyz")
	if !strings.Contains(msg.lastSent(), "No entendí tu opción") {
		t.Errorf("Unclear option must re-prompt, got:\n%s", msg.lastSent())
	}
}

func TestTwoTurnOrderCapture(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)
	phone := "6861111111"

	send(engine, phone, "pedido")
	send(engine, phone, "2")
	send(engine, phone, "2 crepas de nutella y un cafe")

	if !strings.Contains(msg.lastSent(), "¿Cómo te llamas?") {
		t.Fatalf("Turn A must ask for the name, got:\n%s", msg.lastSent())
	}
	state := engine.Sessions().Snapshot(phone)
	if state.OrderDetails != "2 crepas de nutella y un cafe" {
		t.Fatalf("Turn A must retain the order text, got %q", state.OrderDetails)
	}

	send(engine, phone, "Ana")

	reply := msg.lastSent()
	if !strings.Contains(reply, "Pedido Recibido") || !strings.Contains(reply, "Ana") {
		t.Errorf("Confirmation must name the customer, got:\n%s", reply)
	}
	if !strings.Contains(reply, "Número de pedido:* SH") {
		t.Errorf("Confirmation must embed the order number, got:\n%s", reply)
	}

	// In-memory state resets after confirmation.
	state = engine.Sessions().Snapshot(phone)
	if state.Screen != models.ScreenWelcome || state.OrderDetails != "" || state.CustomerName != "" || state.IsConfirmed {
		t.Errorf("State must reset after a confirmed order: %+v", state)
	}

	orders, err := s.ListOrders(10)
	if err != nil || len(orders) != 1 {
		t.Fatalf("Expected 1 persisted order, got %d err=%v", len(orders), err)
	}
	order := orders[0]
	if order.CustomerName != "Ana" || order.OrderType != models.OrderTypeWhatsApp ||
		order.Status != models.OrderStatusPending || order.EstimatedTime != EstimatedTimeMinutes {
		t.Errorf("Unexpected order record: %+v", order)
	}

	c, _ := s.GetCustomer(phone)
	if c == nil || c.TotalOrders != 1 {
		t.Errorf("Expected lifetime order counter to increment, got %+v", c)
	}

	if len(s.GetOrderAnalyses()) != 1 {
		t.Error("Expected the order text to be analyzed")
	}
	day := store.DayKey(openClock())
	if got := s.StatCount(day, "category_crepas_dulces"); got != 1 {
		t.Errorf("Expected category counter 1, got %d", got)
	}

	sess, _ := s.GetConversationSession(phone)
	if sess == nil || sess.Screen != models.ScreenCompleted {
		t.Errorf("Durable mirror should record the completed screen, got %+v", sess)
	}
}

// failingOrderStore makes order creation fail while everything else works.
type failingOrderStore struct {
	store.Store
}

func (f *failingOrderStore) CreateOrder(order models.Order) (*models.Order, error) {
	return nil, errors.New("database unavailable")
}

func TestOrderCreationFailureKeepsState(t *testing.T) {
	s := &failingOrderStore{Store: store.NewInMemoryStore()}
	engine, msg := newTestEngine(t, s, openClock)
	phone := "6861111111"

	send(engine, phone, "pedido")
	send(engine, phone, "2")
	send(engine, phone, "una charola familiar")
	send(engine, phone, "Luis")

	reply := msg.lastSent()
	if !strings.Contains(reply, "Hubo un error procesando tu pedido") ||
		!strings.Contains(reply, BusinessPhone) {
		t.Errorf("Failure reply must apologize with the phone number, got:\n%s", reply)
	}

	state := engine.Sessions().Snapshot(phone)
	if state.Screen != models.ScreenTakingOrder {
		t.Errorf("State must not reset on failure, got screen %q", state.Screen)
	}
	if state.OrderDetails != "una charola familiar" {
		t.Errorf("Order details must be retained for retry, got %q", state.OrderDetails)
	}
	if state.IsConfirmed {
		t.Error("IsConfirmed must stay false when persistence fails")
	}
}

func TestSideIntentsDoNotDisturbOrdering(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)
	phone := "6861111111"

	send(engine, phone, "pedido")
	send(engine, phone, "ubicacion")

	if !strings.Contains(msg.lastSent(), MapsURL) {
		t.Errorf("Expected the location reply, got:\n%s", msg.lastSent())
	}
	if state := engine.Sessions().Snapshot(phone); state.Screen != models.ScreenOrdering {
		t.Errorf("Location request must not change the screen, got %q", state.Screen)
	}
}

func TestGreetingResetsOrderingFlow(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, _ := newTestEngine(t, s, openClock)
	phone := "6861111111"

	send(engine, phone, "pedido")
	send(engine, phone, "hola")

	if state := engine.Sessions().Snapshot(phone); state.Screen != models.ScreenWelcome {
		t.Errorf("Greeting must reset the flow to welcome, got %q", state.Screen)
	}
}

func TestUnknownInputFallsBack(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "xyzzy")
	if !strings.Contains(msg.lastSent(), "No entendí tu mensaje") {
		t.Errorf("Expected the unknown fallback, got:\n%s", msg.lastSent())
	}
}

func TestCustomerIndependence(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, _ := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "pedido")
	send(engine, "6862222222", "hola")
	send(engine, "6861111111", "2")
	send(engine, "6862222222", "xyzzy")

	first := engine.Sessions().Snapshot("6861111111")
	second := engine.Sessions().Snapshot("6862222222")
	if first.Screen != models.ScreenTakingOrder {
		t.Errorf("First customer lost their flow: %q", first.Screen)
	}
	if second.Screen != models.ScreenWelcome {
		t.Errorf("Second customer picked up foreign state: %q", second.Screen)
	}
}

func TestMessageAuditRecords(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, _ := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "hola")

	msgs, err := s.GetMessagesByPhone("6861111111", 10)
	if err != nil || len(msgs) != 2 {
		t.Fatalf("Expected incoming and outgoing audit records, got %d err=%v", len(msgs), err)
	}
	var sawIncoming, sawOutgoing bool
	for _, m := range msgs {
		switch m.Direction {
		case models.DirectionIncoming:
			sawIncoming = true
			if m.Intent != models.IntentGreeting {
				t.Errorf("Incoming record should carry the intent, got %q", m.Intent)
			}
		case models.DirectionOutgoing:
			sawOutgoing = true
		}
	}
	if !sawIncoming || !sawOutgoing {
		t.Errorf("Expected both directions recorded, got %+v", msgs)
	}
}

func TestDispatchFailureTriggersFallback(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)
	msg.failSends = 1

	send(engine, "6861111111", "hola")

	// The main reply failed; the fallback attempt should have gone through.
	if msg.sentCount() != 1 {
		t.Fatalf("Expected exactly the fallback send, got %d", msg.sentCount())
	}
	if msg.lastSent() != ProcessingErrorMessage() {
		t.Errorf("Expected the processing error fallback, got:\n%s", msg.lastSent())
	}
}

func TestEmptyMessagesAreIgnored(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "   ")
	send(engine, "", "hola")

	if msg.sentCount() != 0 {
		t.Errorf("Blank input must not produce replies, got %d sends", msg.sentCount())
	}
}

func TestThanksOutsideFlowFallsBack(t *testing.T) {
	s := store.NewInMemoryStore()
	engine, msg := newTestEngine(t, s, openClock)

	send(engine, "6861111111", "gracias")
	if !strings.Contains(msg.lastSent(), "No entendí tu mensaje") {
		t.Errorf("Thanks outside a flow falls back to the hint list, got:\n%s", msg.lastSent())
	}

	msgs, _ := s.GetMessagesByPhone("6861111111", 10)
	for _, m := range msgs {
		if m.Direction == models.DirectionIncoming && m.Intent != models.IntentThanks {
			t.Errorf("Audit record should still label the thanks intent, got %q", m.Intent)
		}
	}
}
