package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sharicrepas/sharibot/internal/analytics"
	"github.com/sharicrepas/sharibot/internal/intent"
	"github.com/sharicrepas/sharibot/internal/messaging"
	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/store"
	"github.com/sharicrepas/sharibot/internal/util"
)

// Engine drives the conversational ordering flow. Each inbound message runs
// the classify -> plan -> apply effects -> dispatch pipeline; planning is a
// pure function of the current state and the message, and all persistence
// and sending happen in the effect shell around it.
type Engine struct {
	store    store.Store
	msg      messaging.Service
	sessions *SessionRegistry
	analyzer *analytics.Analyzer
	now      func() time.Time
}

// Opts holds configuration for the engine.
type Opts struct {
	Store            store.Store
	MessagingService messaging.Service
	Analyzer         *analytics.Analyzer
	Sessions         *SessionRegistry
	Now              func() time.Time
}

// Option configures an Engine.
type Option func(*Opts)

// WithStore sets the storage backend.
func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithMessagingService sets the message transport.
func WithMessagingService(m messaging.Service) Option {
	return func(o *Opts) { o.MessagingService = m }
}

// WithAnalyzer sets the order analytics collaborator.
func WithAnalyzer(a *analytics.Analyzer) Option {
	return func(o *Opts) { o.Analyzer = a }
}

// WithSessionRegistry overrides the default registry, used in tests.
func WithSessionRegistry(r *SessionRegistry) Option {
	return func(o *Opts) { o.Sessions = r }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// NewEngine creates a dialogue engine with the given options.
func NewEngine(options ...Option) *Engine {
	opts := &Opts{Now: time.Now}
	for _, opt := range options {
		opt(opts)
	}
	if opts.Sessions == nil {
		opts.Sessions = NewSessionRegistry(opts.Store)
	}
	return &Engine{
		store:    opts.Store,
		msg:      opts.MessagingService,
		sessions: opts.Sessions,
		analyzer: opts.Analyzer,
		now:      opts.Now,
	}
}

// Sessions exposes the registry for inspection in tests and the API layer.
func (e *Engine) Sessions() *SessionRegistry {
	return e.sessions
}

// Run consumes transport events until the context is cancelled or the
// response channel closes. Each response is handled on its own goroutine;
// per-customer ordering is preserved by the session registry's entry locks.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("Dialogue engine started")
	responses := e.msg.Responses()
	receipts := e.msg.Receipts()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Dialogue engine stopping", "reason", ctx.Err())
			return ctx.Err()
		case resp, ok := <-responses:
			if !ok {
				slog.Info("Response channel closed, dialogue engine stopping")
				return nil
			}
			go e.HandleResponse(ctx, resp)
		case receipt, ok := <-receipts:
			if !ok {
				receipts = nil
				continue
			}
			slog.Debug("Delivery receipt", "to", receipt.To, "status", receipt.Status)
		}
	}
}

// HandleResponse processes one inbound customer message end to end.
func (e *Engine) HandleResponse(ctx context.Context, resp models.Response) {
	start := e.now()
	phone := resp.From
	text := resp.Body
	if phone == "" || strings.TrimSpace(text) == "" {
		return
	}

	slog.Info("Received message", "phone", phone, "length", len(text))
	detected := intent.Classify(text)

	// Register or refresh the customer record. A failure here degrades the
	// audit trail but must not block the reply.
	if _, err := e.store.UpsertCustomer(phone, ""); err != nil {
		slog.Error("Failed to upsert customer", "phone", phone, "error", err)
	}

	var reply string
	e.sessions.Do(phone, func(state *models.CustomerState) {
		plan := planTurn(*state, text, detected, BusinessOpen(start), TimeGreeting(start))
		reply = e.apply(ctx, phone, state, plan)
	})

	e.dispatch(ctx, phone, reply)
	e.saveMessage(phone, models.DirectionIncoming, text, detected, e.now().Sub(start).Milliseconds())
}

// turnAction discriminates what the effect shell must do for one turn.
type turnAction int

const (
	// actionStaticReply sends a canned reply, optionally changing screen.
	actionStaticReply turnAction = iota
	// actionOrderNoted records the order text and asks for a name.
	actionOrderNoted
	// actionCreateOrder persists the order and confirms or apologizes.
	actionCreateOrder
)

// turnPlan is the pure outcome of one dialogue turn: the reply to send, the
// screen to move to, and which side effects the shell must run.
type turnPlan struct {
	action        turnAction
	reply         string
	screen        models.Screen
	mirrorSession bool
	orderDetails  string
	customerName  string
}

// planTurn computes the next screen and reply for one message. It is a pure
// function: open and greeting carry the wall-clock inputs, and no effect
// happens here. Evaluation mirrors the classifier's precedence; intents that
// are not top-level commands fall through to the current screen's handler.
func planTurn(state models.CustomerState, text string, detected models.Intent, open bool, greeting string) turnPlan {
	switch detected {
	case models.IntentGreeting:
		// A greeting always resets the flow, gated on business hours.
		reply := OutOfHoursMessage()
		if open {
			reply = greeting + "\n\n" + WelcomeMessage()
		}
		return turnPlan{action: actionStaticReply, reply: reply, screen: models.ScreenWelcome, mirrorSession: true}
	case models.IntentMenuRequest:
		// Resets the screen but not order-in-progress data.
		return turnPlan{action: actionStaticReply, reply: MenuMessage(), screen: models.ScreenWelcome, mirrorSession: true}
	case models.IntentOrderRequest:
		return turnPlan{action: actionStaticReply, reply: OrderOptionsMessage(), screen: models.ScreenOrdering, mirrorSession: true}
	case models.IntentLocationRequest:
		return turnPlan{action: actionStaticReply, reply: LocationMessage()}
	case models.IntentScheduleRequest:
		return turnPlan{action: actionStaticReply, reply: ScheduleMessage()}
	case models.IntentContactRequest:
		return turnPlan{action: actionStaticReply, reply: ContactMessage()}
	case models.IntentHelpRequest:
		return turnPlan{action: actionStaticReply, reply: HelpMessage()}
	}

	switch state.Screen {
	case models.ScreenOrdering:
		return planOrderingSelection(text)
	case models.ScreenTakingOrder:
		return planOrderCapture(state, text)
	default:
		return turnPlan{action: actionStaticReply, reply: UnknownMessage()}
	}
}

// planOrderingSelection resolves the three numbered choices shown on the
// ordering screen. Digits are exact matches; the phrase variants cover how
// customers answer the options in words.
func planOrderingSelection(text string) turnPlan {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch {
	case trimmed == "1":
		return turnPlan{action: actionStaticReply, reply: CatalogOptionMessage()}
	case trimmed == "2", strings.Contains(lower, "dime"), strings.Contains(lower, "ayudo"):
		return turnPlan{action: actionStaticReply, reply: TakingOrderPrompt(), screen: models.ScreenTakingOrder, mirrorSession: true}
	case trimmed == "3", strings.Contains(lower, "llamar"), strings.Contains(lower, "llamo"):
		return turnPlan{action: actionStaticReply, reply: CallOptionMessage()}
	default:
		return turnPlan{action: actionStaticReply, reply: OrderingRepromptMessage()}
	}
}

// planOrderCapture runs the strict two-turn capture: the first message is the
// order text, the second is the customer's name which triggers creation.
func planOrderCapture(state models.CustomerState, text string) turnPlan {
	if state.OrderDetails == "" {
		return turnPlan{
			action:        actionOrderNoted,
			reply:         OrderNotedMessage(text),
			screen:        models.ScreenTakingOrder,
			mirrorSession: true,
			orderDetails:  text,
		}
	}
	if !state.IsConfirmed {
		return turnPlan{action: actionCreateOrder, customerName: text}
	}
	return turnPlan{action: actionStaticReply, reply: HelpMessage()}
}

// apply runs the effect shell for one planned turn while the per-customer
// lock is held, and returns the final reply text.
func (e *Engine) apply(ctx context.Context, phone string, state *models.CustomerState, plan turnPlan) string {
	state.LastActivity = e.now()

	switch plan.action {
	case actionOrderNoted:
		state.Screen = plan.screen
		state.OrderDetails = plan.orderDetails
		e.mirrorSession(phone, *state)
		return plan.reply

	case actionCreateOrder:
		return e.createOrder(ctx, phone, state, plan.customerName)

	default:
		if plan.screen != "" {
			state.Screen = plan.screen
		}
		if plan.mirrorSession {
			e.mirrorSession(phone, *state)
		}
		return plan.reply
	}
}

// createOrder persists the captured order and produces the confirmation. On
// persistence failure the state is left untouched so the customer can retry
// by resending their name.
func (e *Engine) createOrder(_ context.Context, phone string, state *models.CustomerState, customerName string) string {
	details := state.OrderDetails
	if details == "" {
		details = "Pedido personalizado"
	}

	number, err := NewOrderNumber(e.store, e.now())
	if err != nil {
		slog.Error("Failed to generate order number", "phone", phone, "error", err)
		return OrderErrorMessage()
	}

	order := models.Order{
		OrderNumber:   number,
		Phone:         phone,
		CustomerName:  customerName,
		OrderDetails:  details,
		OrderType:     models.OrderTypeWhatsApp,
		Status:        models.OrderStatusPending,
		EstimatedTime: EstimatedTimeMinutes,
	}
	if err := order.Validate(); err != nil {
		slog.Error("Order draft failed validation", "phone", phone, "error", err)
		return OrderErrorMessage()
	}

	created, err := e.store.CreateOrder(order)
	if err != nil {
		slog.Error("Failed to create order", "phone", phone, "orderNumber", number, "error", err)
		return OrderErrorMessage()
	}
	slog.Info("Order created", "phone", phone, "orderNumber", created.OrderNumber)

	state.CustomerName = customerName
	state.IsConfirmed = true
	state.OrderNumber = created.OrderNumber

	if err := e.store.RecordCustomerOrder(phone); err != nil {
		slog.Warn("Failed to record customer order count", "phone", phone, "error", err)
	}
	if e.analyzer != nil {
		if _, err := e.analyzer.AnalyzeOrder(created.OrderNumber, details); err != nil {
			slog.Warn("Order analytics failed", "orderNumber", created.OrderNumber, "error", err)
		}
	}

	// The durable mirror records the completed turn; the in-memory state
	// resets so the next message starts a fresh conversation.
	completed := *state
	completed.Screen = models.ScreenCompleted
	e.mirrorSession(phone, completed)

	reply := OrderConfirmationMessage(customerName, details) + OrderNumberSuffix(created.OrderNumber)
	*state = models.NewCustomerState()
	return reply
}

// mirrorSession writes the durable copy of the dialogue state. Failures are
// logged and swallowed: the in-memory state stays authoritative for the turn.
func (e *Engine) mirrorSession(phone string, state models.CustomerState) {
	sess := models.ConversationSession{
		Phone:  phone,
		Screen: state.Screen,
		Data: models.SessionData{
			CustomerName: state.CustomerName,
			OrderDetails: state.OrderDetails,
			OrderNumber:  state.OrderNumber,
			IsConfirmed:  state.IsConfirmed,
		},
	}
	if err := e.store.SaveConversationSession(sess); err != nil {
		slog.Warn("Failed to save conversation session", "phone", phone, "error", err)
	}
}

// dispatch sends the reply and records the outgoing audit entry. A send
// failure triggers one best-effort fallback notification; a second failure
// is logged and swallowed so a transport outage cannot loop.
func (e *Engine) dispatch(ctx context.Context, phone, text string) {
	if text == "" {
		return
	}
	if err := e.msg.SendMessage(ctx, phone, text); err != nil {
		slog.Error("Failed to send reply", "phone", phone, "error", err)
		if err := e.msg.SendMessage(ctx, phone, ProcessingErrorMessage()); err != nil {
			slog.Error("Fallback notification failed", "phone", phone, "error", err)
		}
		return
	}
	e.saveMessage(phone, models.DirectionOutgoing, text, "", 0)
}

func (e *Engine) saveMessage(phone string, direction models.MessageDirection, text string, detected models.Intent, responseTimeMs int64) {
	msg := models.Message{
		MessageID:      util.GenerateMessageID(),
		Phone:          phone,
		Direction:      direction,
		Text:           text,
		Intent:         detected,
		ResponseTimeMs: responseTimeMs,
		Timestamp:      e.now().UnixMilli(),
	}
	if err := e.store.SaveMessage(msg); err != nil {
		slog.Warn("Failed to save message audit record", "phone", phone, "direction", direction, "error", err)
	}
}
