package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ecommkit/payflow/provider"
)

const (
	defaultAPIBase    = "https://api.stripe.com"
	defaultAPIVersion = "2024-06-20"

	// API Endpoints
	endpointCheckoutSessions = "/v1/checkout/sessions"
	endpointRefunds          = "/v1/refunds"
	endpointPaymentIntents   = "/v1/payment_intents/%s"
	endpointCheckoutSession  = "/v1/checkout/sessions/%s"

	signatureHeader = "Stripe-Signature"

	defaultTimeout = 30 * time.Second
)

// Config holds the Stripe API credentials. Environment reading belongs to
// the composition root; this package only accepts explicit values.
type Config struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	APIVersion     string
	APIBase        string
	Test           bool
}

// Provider implements provider.PaymentProvider for Stripe Checkout.
type Provider struct {
	secretKey     string
	publicKey     string
	webhookSecret string
	apiVersion    string
	apiBase       string
	test          bool
	client        *provider.ProviderHTTPClient
}

// New creates a Stripe payment provider from explicit credentials.
func New(cfg Config) (*Provider, error) {
	if cfg.SecretKey == "" {
		return nil, &provider.ConfigError{Provider: "stripe", Message: "secretKey is required"}
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return &Provider{
		secretKey:     cfg.SecretKey,
		publicKey:     cfg.PublishableKey,
		webhookSecret: cfg.WebhookSecret,
		apiVersion:    apiVersion,
		apiBase:       apiBase,
		test:          cfg.Test,
		client: provider.NewProviderHTTPClient(&provider.HTTPClientConfig{
			BaseURL: apiBase,
			Timeout: defaultTimeout,
			DefaultHeaders: map[string]string{
				"Accept": "application/json",
			},
		}),
	}, nil
}

// Name returns the registry name of the provider.
func (p *Provider) Name() string { return "stripe" }

// CreatePayment creates a hosted checkout session. Line items keep their
// raw minor-unit prices: Stripe's unit_amount convention matches the
// canonical model directly, unlike PayTR's decimal strings.
func (p *Provider) CreatePayment(ctx context.Context, request provider.CreatePaymentRequest) (*provider.CreatePaymentResponse, error) {
	if err := provider.ValidateCreateRequest(request); err != nil {
		return nil, err
	}

	form, err := buildCheckoutForm(request)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.SendForm(ctx, &provider.HTTPRequest{
		Endpoint: endpointCheckoutSessions,
		Headers:  p.authHeaders(),
		FormData: form,
	})
	if err != nil {
		return &provider.CreatePaymentResponse{Success: false, Reason: err.Error()}, nil
	}

	if !resp.IsSuccess() {
		reason, code := apiError(resp.Body)
		return &provider.CreatePaymentResponse{
			Success:   false,
			Reason:    reason,
			ErrorCode: code,
			Raw:       resp.Body,
		}, nil
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(resp.Body, &session); err != nil || session.ID == "" || session.URL == "" {
		return &provider.CreatePaymentResponse{
			Success: false,
			Reason:  "stripe did not return a checkout session",
			Raw:     resp.Body,
		}, nil
	}

	return &provider.CreatePaymentResponse{
		Success:    true,
		Token:      session.ID,
		PaymentURL: session.URL,
		Raw:        resp.Body,
	}, nil
}

// VerifyCallback checks the Stripe-Signature header against the webhook
// secret using the documented signed-timestamp scheme. An unset secret or
// missing header verifies nothing and returns false.
func (p *Provider) VerifyCallback(callback provider.Callback) bool {
	if p.webhookSecret == "" || len(callback.RawBody) == 0 {
		return false
	}

	signature := callback.Headers[signatureHeader]
	if signature == "" {
		return false
	}

	_, err := webhook.ConstructEventWithOptions(callback.RawBody, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	return err == nil
}

// Refund refunds a payment intent, fully when no amount is given.
func (p *Provider) Refund(ctx context.Context, request provider.RefundRequest) (map[string]any, error) {
	if request.OrderID == "" {
		return nil, &provider.OperationError{Provider: "stripe", Op: "refund", Message: "orderId is required"}
	}

	form := url.Values{}
	form.Set("payment_intent", request.OrderID)
	if request.Amount > 0 {
		form.Set("amount", strconv.FormatInt(request.Amount, 10))
	}

	resp, err := p.client.SendForm(ctx, &provider.HTTPRequest{
		Endpoint: endpointRefunds,
		Headers:  p.authHeaders(),
		FormData: form,
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: refund request failed: %w", err)
	}

	if !resp.IsSuccess() {
		reason, _ := apiError(resp.Body)
		return nil, &provider.OperationError{
			Provider:   "stripe",
			Op:         "refund",
			StatusCode: resp.StatusCode,
			Message:    reason,
			Raw:        resp.Body,
		}
	}

	var body map[string]any
	if err := p.client.ParseJSONResponse(resp, &body); err != nil {
		return nil, fmt.Errorf("stripe: failed to parse refund response: %w", err)
	}

	return body, nil
}

// QueryTransaction looks the id up as a payment intent first and falls back
// once to the checkout session resource. A single external id covers two
// resource kinds and the caller should not need to know which one it holds.
func (p *Provider) QueryTransaction(ctx context.Context, orderID string) (map[string]any, error) {
	if orderID == "" {
		return nil, &provider.OperationError{Provider: "stripe", Op: "query", Message: "orderId is required"}
	}

	resp, err := p.client.Get(ctx, &provider.HTTPRequest{
		Endpoint: fmt.Sprintf(endpointPaymentIntents, url.PathEscape(orderID)),
		Headers:  p.authHeaders(),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe: query request failed: %w", err)
	}

	if !resp.IsSuccess() {
		resp, err = p.client.Get(ctx, &provider.HTTPRequest{
			Endpoint: fmt.Sprintf(endpointCheckoutSession, url.PathEscape(orderID)),
			Headers:  p.authHeaders(),
		})
		if err != nil {
			return nil, fmt.Errorf("stripe: query request failed: %w", err)
		}
	}

	if !resp.IsSuccess() {
		reason, _ := apiError(resp.Body)
		return nil, &provider.OperationError{
			Provider:   "stripe",
			Op:         "query",
			StatusCode: resp.StatusCode,
			Message:    reason,
			Raw:        resp.Body,
		}
	}

	var body map[string]any
	if err := p.client.ParseJSONResponse(resp, &body); err != nil {
		return nil, fmt.Errorf("stripe: failed to parse query response: %w", err)
	}

	return body, nil
}

func (p *Provider) authHeaders() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + p.secretKey,
		"Stripe-Version": p.apiVersion,
	}
}

// buildCheckoutForm encodes the canonical request as Stripe's indexed
// checkout session parameters. An empty basket becomes one placeholder
// line item priced at the request amount so the checkout total still
// matches the request.
func buildCheckoutForm(request provider.CreatePaymentRequest) (url.Values, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", request.SuccessURL)
	form.Set("cancel_url", request.FailURL)
	form.Set("client_reference_id", request.OrderID)
	form.Set("customer_email", request.Email)
	form.Set("metadata[order_id]", request.OrderID)

	currency := strings.ToLower(request.CurrencyOrDefault())

	items := request.Basket
	if len(items) == 0 {
		items = []provider.BasketItem{{Name: "Payment", Price: request.Amount, Quantity: 1}}
	}

	for i, item := range items {
		if err := provider.ValidateBasketItem(item); err != nil {
			return nil, err
		}

		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.Price, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	return form, nil
}

// apiError extracts the message and code from a Stripe error envelope.
func apiError(body []byte) (message, code string) {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message, parsed.Error.Code
	}
	return "stripe request was not successful", ""
}
