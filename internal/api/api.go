// Package api provides the HTTP operations surface for Sharibot.
//
// It exposes RESTful endpoints for bot status, manual sends, message history,
// customers, orders, daily stats, and product analytics reports. The API is
// an operator tool; the conversational flow itself runs in internal/bot.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sharicrepas/sharibot/internal/analytics"
	"github.com/sharicrepas/sharibot/internal/messaging"
	"github.com/sharicrepas/sharibot/internal/store"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// Server hosts the HTTP API.
type Server struct {
	addr       string
	store      store.Store
	msgService messaging.Service
	analyzer   *analytics.Analyzer
	httpServer *http.Server
}

// Opts holds configuration for the API server.
type Opts struct {
	Addr             string
	Store            store.Store
	MessagingService messaging.Service
	Analyzer         *analytics.Analyzer
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithStore sets the storage backend.
func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithMessagingService sets the transport used for manual sends.
func WithMessagingService(m messaging.Service) Option {
	return func(o *Opts) { o.MessagingService = m }
}

// WithAnalyzer sets the analytics collaborator backing the report endpoints.
func WithAnalyzer(a *analytics.Analyzer) Option {
	return func(o *Opts) { o.Analyzer = a }
}

// NewServer creates an API server with the given options.
func NewServer(options ...Option) *Server {
	opts := &Opts{Addr: DefaultAddr}
	for _, opt := range options {
		opt(opts)
	}
	return &Server{
		addr:       opts.Addr,
		store:      opts.Store,
		msgService: opts.MessagingService,
		analyzer:   opts.Analyzer,
	}
}

// Handler builds the route table. Split out from Run so tests can drive the
// mux with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.statusHandler)
	mux.HandleFunc("POST /api/send-message", s.sendMessageHandler)
	mux.HandleFunc("GET /api/messages", s.messagesHandler)
	mux.HandleFunc("GET /api/messages/{phone}", s.messagesByPhoneHandler)
	mux.HandleFunc("GET /api/customers", s.customersHandler)
	mux.HandleFunc("GET /api/orders", s.ordersHandler)
	mux.HandleFunc("POST /api/orders/{number}/status", s.updateOrderStatusHandler)
	mux.HandleFunc("GET /api/stats/today", s.todayStatsHandler)
	mux.HandleFunc("GET /api/analytics/products", s.popularProductsHandler)
	mux.HandleFunc("GET /api/analytics/categories", s.popularCategoriesHandler)
	mux.HandleFunc("GET /api/analytics/report", s.analyticsReportHandler)

	// Inbound Twilio traffic arrives over HTTP, so the webhook mounts here
	// when that transport is active.
	if twilioSvc, ok := s.msgService.(*messaging.TwilioService); ok {
		mux.HandleFunc("POST /webhook/twilio", twilioSvc.TwilioWebhookHandler)
		slog.Info("Twilio webhook mounted", "path", "/webhook/twilio")
	}

	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("API server shutting down", "reason", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down API server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	}
}
