package provider

import (
	"context"
	"encoding/json"
)

// BasketItem represents a single purchased item. Prices are integer
// minor currency units (kuruş, cents); providers convert to their own
// wire representation when encoding.
type BasketItem struct {
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"min=0"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// CreatePaymentRequest contains all information required to create a payment.
// OrderID is the caller-chosen correlation key and must be unique per payment.
type CreatePaymentRequest struct {
	OrderID     string       `json:"orderId" validate:"required"`
	Amount      int64        `json:"amount" validate:"min=1"`
	Email       string       `json:"email" validate:"required,email"`
	SuccessURL  string       `json:"successUrl" validate:"required,url"`
	FailURL     string       `json:"failUrl" validate:"required,url"`
	UserIP      string       `json:"userIp,omitempty"`
	UserAgent   string       `json:"userAgent,omitempty"`
	Basket      []BasketItem `json:"basket,omitempty" validate:"omitempty,dive"`
	Installment int          `json:"installment,omitempty" validate:"min=0"`
	Currency    string       `json:"currency,omitempty"`
	UserName    string       `json:"userName,omitempty"`
	UserPhone   string       `json:"userPhone,omitempty"`
	UserAddress string       `json:"userAddress,omitempty"`
}

// DefaultCurrency is used when a request does not specify one.
const DefaultCurrency = "TRY"

// CurrencyOrDefault returns the request currency or DefaultCurrency.
func (r CreatePaymentRequest) CurrencyOrDefault() string {
	if r.Currency == "" {
		return DefaultCurrency
	}
	return r.Currency
}

// CreatePaymentResponse contains the result of a payment request.
// Success=false always carries Reason; Success=true always carries both
// Token and PaymentURL for the browser redirect flow.
type CreatePaymentResponse struct {
	Success    bool            `json:"success"`
	Token      string          `json:"token,omitempty"`
	PaymentURL string          `json:"paymentUrl,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	ErrorCode  string          `json:"errorCode,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
}

// Callback represents an inbound payment notification. It is untrusted
// network input and must pass VerifyCallback before any state change.
// Fields carries the parsed provider payload (PayTR form fields); RawBody
// and Headers carry the wire-level view needed for signed-payload schemes
// such as Stripe's.
type Callback struct {
	OrderID string            `json:"orderId"`
	Status  string            `json:"status"`
	Amount  string            `json:"amount"`
	Hash    string            `json:"hash"`
	Fields  map[string]string `json:"fields,omitempty"`
	RawBody []byte            `json:"-"`
	Headers map[string]string `json:"-"`
}

// RefundRequest contains information to request a refund. OrderID is the
// provider-specific identifier: the merchant order id for PayTR, the
// payment-intent id for Stripe. Amount 0 means full refund.
type RefundRequest struct {
	OrderID string `json:"orderId"`
	Amount  int64  `json:"amount,omitempty"`
}

// PaymentProvider defines the contract every payment gateway implements.
// Implementations hold immutable credentials captured at construction and
// keep no per-call state.
type PaymentProvider interface {
	// Name returns the registry name of the provider.
	Name() string

	// CreatePayment validates the request, builds and signs the provider
	// call and returns a normalized result. Transport and provider-level
	// failures are reported through the response, not the error: a non-nil
	// error means the request never left this process.
	CreatePayment(ctx context.Context, request CreatePaymentRequest) (*CreatePaymentResponse, error)

	// VerifyCallback reports whether an inbound notification carries a
	// valid provider signature. It is pure and total: malformed input
	// returns false, never an error or a panic.
	VerifyCallback(callback Callback) bool

	// Refund issues a provider refund and returns the parsed provider body
	// unmodified. Missing identifiers and non-2xx responses are errors.
	Refund(ctx context.Context, request RefundRequest) (map[string]any, error)

	// QueryTransaction looks up a transaction by its provider identifier
	// and returns the parsed provider body unmodified.
	QueryTransaction(ctx context.Context, orderID string) (map[string]any, error)
}

// ProviderFactory builds a configured provider from a flat config map.
// Factories validate credentials and return a ConfigError when required
// keys are missing.
type ProviderFactory func(config map[string]string) (PaymentProvider, error)
