package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sharicrepas/sharibot/internal/analytics"
	"github.com/sharicrepas/sharibot/internal/messaging"
	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/store"
	"github.com/sharicrepas/sharibot/internal/twiliowhatsapp"
	"github.com/sharicrepas/sharibot/internal/whatsapp"
)

func newTestServer(t *testing.T) (*Server, *store.InMemoryStore) {
	t.Helper()
	s := store.NewInMemoryStore()
	msgService := messaging.NewWhatsAppService(whatsapp.NewMockClient())
	server := NewServer(
		WithStore(s),
		WithMessagingService(msgService),
		WithAnalyzer(analytics.NewAnalyzer(analytics.WithStore(s))),
	)
	return server, s
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return resp
}

func TestStatusEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != string(models.APIStatusOK) {
		t.Errorf("Expected ok status, got %q", resp.Status)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected result object, got %T", resp.Result)
	}
	if result["service"] != "sharibot" {
		t.Errorf("Expected service name in status, got %v", result["service"])
	}
	if _, ok := result["business_open"]; !ok {
		t.Error("Expected business_open flag in status")
	}
}

func TestSendMessageEndpoint(t *testing.T) {
	server, s := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/send-message",
		`{"phone_number":"+526861234567","message":"Tu pedido está listo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	msgs, err := s.GetMessagesByPhone("526861234567", 10)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("Expected 1 audit record, got %d err=%v", len(msgs), err)
	}
	if msgs[0].Direction != models.DirectionOutgoing {
		t.Errorf("Expected outgoing direction, got %q", msgs[0].Direction)
	}
}

func TestSendMessageValidation(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing phone", `{"message":"hola"}`},
		{"missing message", `{"phone_number":"6861234567"}`},
		{"short phone", `{"phone_number":"123","message":"hola"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, http.MethodPost, "/api/send-message", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestMessagesEndpoints(t *testing.T) {
	server, s := newTestServer(t)
	now := time.Now().UnixMilli()
	for _, phone := range []string{"6861111111", "6862222222"} {
		if err := s.SaveMessage(models.Message{
			MessageID: "m_" + phone, Phone: phone,
			Direction: models.DirectionIncoming, Text: "hola", Timestamp: now,
		}); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	rec := doRequest(t, server, http.MethodGet, "/api/messages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/api/messages/6861111111", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	list, ok := resp.Result.([]interface{})
	if !ok || len(list) != 1 {
		t.Errorf("Expected 1 message for phone, got %v", resp.Result)
	}
}

func TestOrderStatusEndpoint(t *testing.T) {
	server, s := newTestServer(t)
	if _, err := s.CreateOrder(models.Order{
		OrderNumber: "SH260901123", Phone: "6861234567", OrderDetails: "crepa",
		OrderType: models.OrderTypeWhatsApp, Status: models.OrderStatusPending,
	}); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	rec := doRequest(t, server, http.MethodPost, "/api/orders/SH260901123/status", `{"status":"ready"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	order, _ := s.GetOrder("SH260901123")
	if order.Status != models.OrderStatusReady {
		t.Errorf("Expected ready status, got %q", order.Status)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/orders/SH260901123/status", `{"status":"bogus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid status, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/orders/SH000000000/status", `{"status":"ready"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown order, got %d", rec.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	server, s := newTestServer(t)
	analyzer := analytics.NewAnalyzer(analytics.WithStore(s))
	if _, err := analyzer.AnalyzeOrder("SH260901123", "crepa de nutella y un cafe"); err != nil {
		t.Fatalf("AnalyzeOrder failed: %v", err)
	}

	for _, path := range []string{
		"/api/stats/today",
		"/api/analytics/products",
		"/api/analytics/categories",
		"/api/analytics/report?days=7",
		"/api/customers",
		"/api/orders",
	} {
		rec := doRequest(t, server, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
		if resp := decodeEnvelope(t, rec); resp.Status != string(models.APIStatusOK) {
			t.Errorf("GET %s: expected ok envelope, got %q", path, resp.Status)
		}
	}
}

func TestTwilioWebhookMountedForTwilioService(t *testing.T) {
	s := store.NewInMemoryStore()
	twilioSvc := messaging.NewTwilioService(twiliowhatsapp.NewMockClient())
	server := NewServer(
		WithStore(s),
		WithMessagingService(twilioSvc),
		WithAnalyzer(analytics.NewAnalyzer(analytics.WithStore(s))),
	)

	form := "From=whatsapp%3A%2B526861234567&Body=hola"
	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected webhook to be mounted, got %d", rec.Code)
	}
	select {
	case resp := <-twilioSvc.Responses():
		if resp.From != "526861234567" {
			t.Errorf("Expected canonicalized sender, got %q", resp.From)
		}
	default:
		t.Fatal("Expected inbound response from webhook")
	}
}
