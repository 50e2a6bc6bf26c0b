package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ecommkit/payflow/infra/logger"
	"github.com/ecommkit/payflow/infra/response"
	"github.com/ecommkit/payflow/infra/store"
	"github.com/ecommkit/payflow/provider"
)

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	ProviderName() string
	CreatePayment(ctx context.Context, request provider.CreatePaymentRequest) (*provider.CreatePaymentResponse, error)
	VerifyCallback(callback provider.Callback) bool
	Refund(ctx context.Context, request provider.RefundRequest) (map[string]any, error)
	QueryTransaction(ctx context.Context, orderID string) (map[string]any, error)
}

// OrderJournal records payment attempts and their verified outcomes.
type OrderJournal interface {
	Create(ctx context.Context, order store.Order) error
	UpdateStatus(ctx context.Context, orderID, status, reason string) error
	Get(ctx context.Context, orderID string) (*store.Order, error)
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	providers      map[string]provider.PaymentProvider
	orders         OrderJournal
	validate       *validator.Validate
}

// NewPaymentHandler creates a new payment handler. The providers map holds
// every configured provider so callbacks can be verified against the one
// named in the URL, not just the active one.
func NewPaymentHandler(paymentService PaymentServiceInterface, providers map[string]provider.PaymentProvider, orders OrderJournal, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		providers:      providers,
		orders:         orders,
		validate:       validate,
	}
}

// CreatePayment handles payment creation requests
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if req.UserIP == "" {
		req.UserIP = clientIP(r)
	}
	if req.UserAgent == "" {
		req.UserAgent = r.Header.Get("User-Agent")
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	// Run the canonical validation before journaling so a rejected request
	// never burns its order id.
	if err := provider.ValidateCreateRequest(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	// Reject reused order ids before any provider call: provider signatures
	// carry a fresh nonce per call, so a blind retry is never idempotent.
	if h.orders != nil {
		err := h.orders.Create(ctx, store.Order{
			OrderID:  req.OrderID,
			Provider: h.paymentService.ProviderName(),
			Amount:   req.Amount,
			Currency: req.CurrencyOrDefault(),
		})
		if errors.Is(err, store.ErrDuplicateOrder) {
			response.Error(w, http.StatusConflict, "Order id already used", err)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Failed to record order", err)
			return
		}
	}

	resp, err := h.paymentService.CreatePayment(ctx, req)
	if err != nil {
		if provider.IsValidationError(err) {
			response.Error(w, http.StatusBadRequest, "Validation error", err)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Payment failed", err)
		return
	}

	if !resp.Success && h.orders != nil {
		if err := h.orders.UpdateStatus(ctx, req.OrderID, store.StatusFailed, resp.Reason); err != nil {
			logger.Warn("Failed to record payment failure", logger.LogContext{
				Provider: h.paymentService.ProviderName(),
				Fields:   map[string]any{"order_id": req.OrderID, "error": err.Error()},
			})
		}
	}

	response.Success(w, http.StatusOK, "Payment processed", resp)
}

// QueryTransaction handles transaction lookup requests
func (h *PaymentHandler) QueryTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "Missing order ID", nil)
		return
	}

	resp, err := h.paymentService.QueryTransaction(ctx, orderID)
	if err != nil {
		if provider.IsOperationError(err) {
			response.Error(w, http.StatusBadGateway, "Transaction query failed", err)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Transaction query failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Transaction retrieved", resp)
}

// Refund handles refund requests
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req provider.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	resp, err := h.paymentService.Refund(ctx, req)
	if err != nil {
		var opErr *provider.OperationError
		if errors.As(err, &opErr) {
			if opErr.StatusCode == 0 {
				response.Error(w, http.StatusBadRequest, "Refund failed", err)
				return
			}
			response.Error(w, http.StatusBadGateway, "Refund failed", err)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Refund failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Refund processed", resp)
}

// Callback handles inbound provider notifications. The payload is verified
// before the journal is touched; an invalid signature never changes state.
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read callback body", err)
		return
	}

	// Every configured provider keeps delivering webhooks regardless of
	// which one is active, so verification goes to the provider named in
	// the URL.
	verify := h.paymentService.VerifyCallback
	if name := chi.URLParam(r, "provider"); name != "" && name != h.paymentService.ProviderName() {
		p, ok := h.providers[name]
		if !ok {
			response.Error(w, http.StatusNotFound, "Unknown provider", nil)
			return
		}
		verify = p.VerifyCallback
	}

	callback := parseCallback(r, body)
	if !verify(callback) {
		response.Error(w, http.StatusBadRequest, "Callback verification failed", nil)
		return
	}

	if h.orders != nil && callback.OrderID != "" {
		status := store.StatusFailed
		if callback.Status == "success" {
			status = store.StatusSucceeded
		}
		reason := callback.Fields["failed_reason_msg"]
		if err := h.orders.UpdateStatus(ctx, callback.OrderID, status, reason); err != nil {
			logger.Warn("Failed to record callback outcome", logger.LogContext{
				Fields: map[string]any{"order_id": callback.OrderID, "error": err.Error()},
			})
		}
	}

	// PayTR requires the literal body "OK" to stop redelivery.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Providers lists the active and registered provider names
func (h *PaymentHandler) Providers(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Providers", map[string]any{
		"active":     h.paymentService.ProviderName(),
		"registered": provider.DefaultRegistry.GetProviderNames(),
	})
}

// parseCallback maps the wire payload into the canonical callback shape.
// Form bodies (PayTR) populate the named fields; JSON bodies (Stripe
// events) surface the order id from the session metadata, with signature
// material carried in RawBody and Headers.
func parseCallback(r *http.Request, body []byte) provider.Callback {
	callback := provider.Callback{
		RawBody: body,
		Fields:  map[string]string{},
		Headers: map[string]string{},
	}

	for name := range r.Header {
		callback.Headers[name] = r.Header.Get(name)
	}

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			for key := range values {
				callback.Fields[key] = values.Get(key)
			}
			callback.OrderID = values.Get("merchant_oid")
			callback.Status = values.Get("status")
			callback.Amount = values.Get("total_amount")
			callback.Hash = values.Get("hash")
		}
		return callback
	}

	var event struct {
		Data struct {
			Object struct {
				ClientReferenceID string            `json:"client_reference_id"`
				PaymentStatus     string            `json:"payment_status"`
				Metadata          map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err == nil {
		callback.OrderID = event.Data.Object.ClientReferenceID
		if callback.OrderID == "" {
			callback.OrderID = event.Data.Object.Metadata["order_id"]
		}
		if event.Data.Object.PaymentStatus == "paid" {
			callback.Status = "success"
		} else {
			callback.Status = event.Data.Object.PaymentStatus
		}
	}

	return callback
}

// clientIP extracts the originating address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
