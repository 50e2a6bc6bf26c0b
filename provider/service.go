package provider

import (
	"context"
	"errors"
	"sync"
	"time"
)

// PaymentLog is one recorded payment operation, indexed by the configured
// PaymentLogger sink.
type PaymentLog struct {
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Operation string    `json:"operation"`
	OrderID   string    `json:"order_id,omitempty"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
	ElapsedMs int64     `json:"elapsed_ms"`
}

// PaymentLogger records payment operations for diagnostics. Implementations
// must tolerate concurrent calls; failures are the sink's problem, never the
// payment's.
type PaymentLogger interface {
	LogPayment(ctx context.Context, entry PaymentLog)
}

// PaymentService manages payment operations through a single active
// provider. The provider slot may be swapped at runtime; every operation
// delegates to the instance captured at call entry, so a swap never
// affects calls already in flight.
type PaymentService struct {
	mu       sync.RWMutex
	provider PaymentProvider
	logger   PaymentLogger
}

// NewPaymentService creates a payment service with the given active provider.
func NewPaymentService(p PaymentProvider) *PaymentService {
	return &PaymentService{provider: p}
}

// SetLogger attaches an optional payment log sink.
func (s *PaymentService) SetLogger(logger PaymentLogger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SetProvider replaces the active provider. In-flight calls complete
// against the provider they started with.
func (s *PaymentService) SetProvider(p PaymentProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = p
}

// ProviderName returns the name of the active provider.
func (s *PaymentService) ProviderName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

func (s *PaymentService) current() (PaymentProvider, PaymentLogger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.provider == nil {
		return nil, nil, errors.New("payment service has no active provider")
	}
	return s.provider, s.logger, nil
}

// CreatePayment delegates to the active provider.
func (s *PaymentService) CreatePayment(ctx context.Context, request CreatePaymentRequest) (*CreatePaymentResponse, error) {
	p, logger, err := s.current()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := p.CreatePayment(ctx, request)

	if logger != nil {
		entry := PaymentLog{
			Timestamp: start,
			Provider:  p.Name(),
			Operation: "create_payment",
			OrderID:   request.OrderID,
			ElapsedMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Reason = err.Error()
		} else {
			entry.Success = response.Success
			entry.Reason = response.Reason
		}
		logger.LogPayment(ctx, entry)
	}

	return response, err
}

// VerifyCallback delegates to the active provider. Verification is pure,
// so no log entry is recorded for it.
func (s *PaymentService) VerifyCallback(callback Callback) bool {
	p, _, err := s.current()
	if err != nil {
		return false
	}
	return p.VerifyCallback(callback)
}

// Refund delegates to the active provider.
func (s *PaymentService) Refund(ctx context.Context, request RefundRequest) (map[string]any, error) {
	p, logger, err := s.current()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := p.Refund(ctx, request)

	if logger != nil {
		entry := PaymentLog{
			Timestamp: start,
			Provider:  p.Name(),
			Operation: "refund",
			OrderID:   request.OrderID,
			Success:   err == nil,
			ElapsedMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Reason = err.Error()
		}
		logger.LogPayment(ctx, entry)
	}

	return response, err
}

// QueryTransaction delegates to the active provider.
func (s *PaymentService) QueryTransaction(ctx context.Context, orderID string) (map[string]any, error) {
	p, logger, err := s.current()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := p.QueryTransaction(ctx, orderID)

	if logger != nil {
		entry := PaymentLog{
			Timestamp: start,
			Provider:  p.Name(),
			Operation: "query_transaction",
			OrderID:   orderID,
			Success:   err == nil,
			ElapsedMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Reason = err.Error()
		}
		logger.LogPayment(ctx, entry)
	}

	return response, err
}
