// Package api provides HTTP handlers for Sharibot endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sharicrepas/sharibot/internal/bot"
	"github.com/sharicrepas/sharibot/internal/models"
	"github.com/sharicrepas/sharibot/internal/util"
)

// sendMessageRequest is the body for POST /api/send-message.
type sendMessageRequest struct {
	Phone   string `json:"phone_number"`
	Message string `json:"message"`
}

// orderStatusRequest is the body for POST /api/orders/{number}/status.
type orderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"service":       "sharibot",
		"business":      bot.BusinessName,
		"business_open": bot.BusinessOpen(now),
		"timestamp":     now.UnixMilli(),
	}))
}

func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.sendMessageHandler: processing send request", "path", r.URL.Path)

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.sendMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	canonicalTo, err := s.msgService.ValidateAndCanonicalizeRecipient(req.Phone)
	if err != nil {
		slog.Warn("Server.sendMessageHandler: recipient validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if req.Message == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyBody.Error()))
		return
	}
	if len(req.Message) > models.MaxMessageLength {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrBodyTooLong.Error()))
		return
	}

	if err := s.msgService.SendMessage(r.Context(), canonicalTo, req.Message); err != nil {
		slog.Error("Server.sendMessageHandler: failed to send message", "error", err, "to", canonicalTo)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to send message"))
		return
	}

	if err := s.store.SaveMessage(models.Message{
		MessageID: util.GenerateMessageID(),
		Phone:     canonicalTo,
		Direction: models.DirectionOutgoing,
		Text:      req.Message,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		slog.Warn("Server.sendMessageHandler: failed to save audit record", "error", err)
	}

	slog.Info("Server.sendMessageHandler: message sent", "to", canonicalTo)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Message sent successfully", nil))
}

func (s *Server) messagesHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	messages, err := s.store.GetMessages(limit)
	if err != nil {
		slog.Error("Server.messagesHandler: failed to load messages", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load messages"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(messages))
}

func (s *Server) messagesByPhoneHandler(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	canonical, err := s.msgService.ValidateAndCanonicalizeRecipient(phone)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	messages, err := s.store.GetMessagesByPhone(canonical, queryInt(r, "limit", 0))
	if err != nil {
		slog.Error("Server.messagesByPhoneHandler: failed to load messages", "error", err, "phone", canonical)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load messages"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(messages))
}

func (s *Server) customersHandler(w http.ResponseWriter, r *http.Request) {
	customers, err := s.store.ListCustomers()
	if err != nil {
		slog.Error("Server.customersHandler: failed to load customers", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load customers"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(customers))
}

func (s *Server) ordersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.ListOrders(queryInt(r, "limit", 0))
	if err != nil {
		slog.Error("Server.ordersHandler: failed to load orders", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load orders"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(orders))
}

func (s *Server) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	number := r.PathValue("number")

	var req orderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if !models.IsValidOrderStatus(req.Status) {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrInvalidOrderStatus.Error()))
		return
	}

	order, err := s.store.GetOrder(number)
	if err != nil {
		slog.Error("Server.updateOrderStatusHandler: failed to load order", "error", err, "orderNumber", number)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load order"))
		return
	}
	if order == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Order not found"))
		return
	}

	if err := s.store.UpdateOrderStatus(number, req.Status); err != nil {
		slog.Error("Server.updateOrderStatusHandler: failed to update status", "error", err, "orderNumber", number)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update order status"))
		return
	}

	slog.Info("Order status updated", "orderNumber", number, "status", req.Status)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Order status updated", nil))
}

func (s *Server) todayStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.TodayStats()
	if err != nil {
		slog.Error("Server.todayStatsHandler: failed to load stats", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load daily stats"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(stats))
}

func (s *Server) popularProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := s.analyzer.PopularProducts(queryInt(r, "days", 0))
	if err != nil {
		slog.Error("Server.popularProductsHandler: failed to load report", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load popular products"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(products))
}

func (s *Server) popularCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := s.analyzer.PopularCategories(queryInt(r, "days", 0))
	if err != nil {
		slog.Error("Server.popularCategoriesHandler: failed to load report", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load popular categories"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(categories))
}

func (s *Server) analyticsReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyzer.GenerateReport(queryInt(r, "days", 0))
	if err != nil {
		slog.Error("Server.analyticsReportHandler: failed to build report", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to build analytics report"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(report))
}

// queryInt parses an optional integer query parameter, falling back to def
// on absence or bad input.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Debug("Ignoring invalid query parameter", "key", key, "value", raw)
		return def
	}
	return value
}
