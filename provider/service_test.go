package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingProvider struct {
	name      string
	created   int
	refunds   int
	queries   int
	verified  int
	block     chan struct{}
	callbacks bool
}

func (r *recordingProvider) Name() string { return r.name }

func (r *recordingProvider) CreatePayment(ctx context.Context, request CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if r.block != nil {
		<-r.block
	}
	r.created++
	return &CreatePaymentResponse{Success: true, Token: "tok", PaymentURL: "https://pay.example/tok"}, nil
}

func (r *recordingProvider) VerifyCallback(callback Callback) bool {
	r.verified++
	return r.callbacks
}

func (r *recordingProvider) Refund(ctx context.Context, request RefundRequest) (map[string]any, error) {
	r.refunds++
	if request.OrderID == "" {
		return nil, &OperationError{Provider: r.name, Op: "refund", Message: "orderId is required"}
	}
	return map[string]any{"status": "success"}, nil
}

func (r *recordingProvider) QueryTransaction(ctx context.Context, orderID string) (map[string]any, error) {
	r.queries++
	return map[string]any{"id": orderID}, nil
}

type capturingLogger struct {
	mu      sync.Mutex
	entries []PaymentLog
}

func (c *capturingLogger) LogPayment(ctx context.Context, entry PaymentLog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

func TestPaymentService_Delegation(t *testing.T) {
	p := &recordingProvider{name: "mock", callbacks: true}
	service := NewPaymentService(p)

	if service.ProviderName() != "mock" {
		t.Errorf("expected provider name 'mock', got %q", service.ProviderName())
	}

	resp, err := service.CreatePayment(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}
	if !resp.Success || resp.Token != "tok" {
		t.Errorf("unexpected response: %+v", resp)
	}

	if !service.VerifyCallback(Callback{OrderID: "O-1", Status: "success", Amount: "100", Hash: "h"}) {
		t.Error("expected callback verification to delegate")
	}

	if _, err := service.Refund(context.Background(), RefundRequest{OrderID: "O-1"}); err != nil {
		t.Fatalf("Refund() error = %v", err)
	}

	if _, err := service.QueryTransaction(context.Background(), "O-1"); err != nil {
		t.Fatalf("QueryTransaction() error = %v", err)
	}

	if p.created != 1 || p.verified != 1 || p.refunds != 1 || p.queries != 1 {
		t.Errorf("delegation counts off: %+v", p)
	}
}

func TestPaymentService_NoProvider(t *testing.T) {
	service := NewPaymentService(nil)

	if service.ProviderName() != "" {
		t.Error("expected empty provider name")
	}
	if service.VerifyCallback(Callback{}) {
		t.Error("expected verification to fail without a provider")
	}
	if _, err := service.CreatePayment(context.Background(), validRequest()); err == nil {
		t.Error("expected an error without a provider")
	}
}

func TestPaymentService_SetProvider(t *testing.T) {
	first := &recordingProvider{name: "first"}
	second := &recordingProvider{name: "second"}

	service := NewPaymentService(first)
	service.SetProvider(second)

	if service.ProviderName() != "second" {
		t.Errorf("expected 'second', got %q", service.ProviderName())
	}

	if _, err := service.CreatePayment(context.Background(), validRequest()); err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}
	if first.created != 0 || second.created != 1 {
		t.Errorf("expected the swapped-in provider to handle the call: first=%d second=%d", first.created, second.created)
	}
}

func TestPaymentService_InFlightCallKeepsItsProvider(t *testing.T) {
	first := &recordingProvider{name: "first", block: make(chan struct{})}
	second := &recordingProvider{name: "second"}

	service := NewPaymentService(first)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := service.CreatePayment(context.Background(), validRequest()); err != nil {
			t.Errorf("CreatePayment() error = %v", err)
		}
	}()

	// Swap providers while the first call is blocked inside the adapter,
	// then release it. The in-flight call must complete on the provider
	// it captured at call entry.
	service.SetProvider(second)
	close(first.block)
	<-done

	if first.created != 1 {
		t.Errorf("expected the in-flight call to finish on the original provider, created=%d", first.created)
	}
	if second.created != 0 {
		t.Errorf("replacement provider should not have seen the in-flight call, created=%d", second.created)
	}
}

func TestPaymentService_LogsOperations(t *testing.T) {
	p := &recordingProvider{name: "mock"}
	sink := &capturingLogger{}

	service := NewPaymentService(p)
	service.SetLogger(sink)

	if _, err := service.CreatePayment(context.Background(), validRequest()); err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}
	if _, err := service.Refund(context.Background(), RefundRequest{}); !errors.As(err, new(*OperationError)) {
		t.Fatalf("expected an OperationError, got %v", err)
	}

	if len(sink.entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(sink.entries))
	}
	if sink.entries[0].Operation != "create_payment" || !sink.entries[0].Success {
		t.Errorf("unexpected first entry: %+v", sink.entries[0])
	}
	if sink.entries[1].Operation != "refund" || sink.entries[1].Success || sink.entries[1].Reason == "" {
		t.Errorf("unexpected second entry: %+v", sink.entries[1])
	}
}
