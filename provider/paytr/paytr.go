package paytr

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ecommkit/payflow/provider"
)

const (
	defaultAPIBase = "https://www.paytr.com"

	// API Endpoints
	endpointGetToken = "/odeme/api/get-token"
	endpointRefund   = "/odeme/api/refund"
	endpointQuery    = "/odeme/api/get-payment"

	// Payment page for a successful token
	paymentPagePath = "/odeme/guvenlik/"

	// PayTR status values
	statusSuccess = "success"

	maxItemNameLen = 100
	defaultTimeout = 30 * time.Second
	defaultLang    = "tr"
)

// Config holds the PayTR merchant credentials. Credentials are captured at
// construction and never mutate; reading them from the environment is the
// composition root's job, not this package's.
type Config struct {
	MerchantID   string
	MerchantKey  string
	MerchantSalt string
	APIBase      string
	Test         bool
}

// Provider implements provider.PaymentProvider for PayTR's iFrame API.
type Provider struct {
	merchantID   string
	merchantKey  string
	merchantSalt string
	apiBase      string
	test         bool
	client       *provider.ProviderHTTPClient
}

// New creates a PayTR payment provider from explicit credentials.
func New(cfg Config) (*Provider, error) {
	if cfg.MerchantID == "" || cfg.MerchantKey == "" || cfg.MerchantSalt == "" {
		return nil, &provider.ConfigError{
			Provider: "paytr",
			Message:  "merchantId, merchantKey and merchantSalt are required",
		}
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}

	return &Provider{
		merchantID:   cfg.MerchantID,
		merchantKey:  cfg.MerchantKey,
		merchantSalt: cfg.MerchantSalt,
		apiBase:      apiBase,
		test:         cfg.Test,
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
func (p *Provider) Name() string { return "paytr" }

// CreatePayment requests an iFrame token from PayTR and maps the result to
// the browser-redirect flow. Validation and signing happen before any I/O;
// transport and provider-level failures come back as a failure response
// with a nil error.
func (p *Provider) CreatePayment(ctx context.Context, request provider.CreatePaymentRequest) (*provider.CreatePaymentResponse, error) {
	if err := provider.ValidateCreateRequest(request); err != nil {
		return nil, err
	}

	basket, err := encodeBasket(request.Basket)
	if err != nil {
		return nil, err
	}

	amountStr := strconv.FormatInt(request.Amount, 10)
	nonce := uuid.New().String()
	token := p.sign(p.merchantID + request.OrderID + amountStr + request.SuccessURL + request.FailURL + nonce)

	noInstallment, maxInstallment := installmentFields(request.Installment)
	fields := map[string]string{
		"merchant_id":       p.merchantID,
		"merchant_oid":      request.OrderID,
		"user_ip":           request.UserIP,
		"merchant_ok_url":   request.SuccessURL,
		"merchant_fail_url": request.FailURL,
		"payment_amount":    amountStr,
		"email":             request.Email,
		"user_name":         request.UserName,
		"user_address":      request.UserAddress,
		"user_phone":        request.UserPhone,
		"currency":          request.CurrencyOrDefault(),
		"user_basket":       basket,
		"paytr_token":       token,
		"debug_on":          boolField(p.test),
		"no_installment":    noInstallment,
		"max_installment":   maxInstallment,
		"rand":              nonce,
		"lang":              defaultLang,
	}

	form := url.Values{}
	for key, value := range fields {
		if value != "" {
			form.Set(key, value)
		}
	}

	resp, err := p.client.SendForm(ctx, &provider.HTTPRequest{Endpoint: endpointGetToken, FormData: form})
	if err != nil {
		return &provider.CreatePaymentResponse{Success: false, Reason: err.Error()}, nil
	}

	if !resp.IsSuccess() {
		return &provider.CreatePaymentResponse{
			Success: false,
			Reason:  fmt.Sprintf("paytr responded with HTTP %d", resp.StatusCode),
			Raw:     resp.Body,
		}, nil
	}

	return p.mapTokenResponse(resp.Body), nil
}

// VerifyCallback checks the payment notification hash. It is total: any
// missing field or mismatch returns false.
func (p *Provider) VerifyCallback(callback provider.Callback) bool {
	if callback.OrderID == "" || callback.Status == "" || callback.Amount == "" || callback.Hash == "" {
		return false
	}

	expected := p.sign(p.merchantID + callback.OrderID + callback.Status + callback.Amount + p.merchantSalt)
	return hmac.Equal([]byte(callback.Hash), []byte(expected))
}

// Refund issues a full or partial refund for a merchant order. The parsed
// provider body is returned unmodified; PayTR reports refund status in its
// own fields and the caller interprets them.
func (p *Provider) Refund(ctx context.Context, request provider.RefundRequest) (map[string]any, error) {
	if request.OrderID == "" {
		return nil, &provider.OperationError{Provider: "paytr", Op: "refund", Message: "orderId is required"}
	}

	message := p.merchantID + request.OrderID
	form := url.Values{}
	form.Set("merchant_id", p.merchantID)
	form.Set("merchant_oid", request.OrderID)

	if request.Amount > 0 {
		amountStr := strconv.FormatInt(request.Amount, 10)
		form.Set("refund_amount", amountStr)
		message += amountStr
	}
	form.Set("paytr_token", p.sign(message+p.merchantSalt))

	return p.sendOperation(ctx, "refund", endpointRefund, form)
}

// QueryTransaction looks up a payment by its merchant order id.
func (p *Provider) QueryTransaction(ctx context.Context, orderID string) (map[string]any, error) {
	if orderID == "" {
		return nil, &provider.OperationError{Provider: "paytr", Op: "query", Message: "orderId is required"}
	}

	form := url.Values{}
	form.Set("merchant_id", p.merchantID)
	form.Set("merchant_oid", orderID)
	form.Set("paytr_token", p.sign(p.merchantID+orderID+p.merchantSalt))

	return p.sendOperation(ctx, "query", endpointQuery, form)
}

// sendOperation posts a signed form and propagates non-2xx responses as
// operation errors embedding the provider's message.
func (p *Provider) sendOperation(ctx context.Context, op, endpoint string, form url.Values) (map[string]any, error) {
	resp, err := p.client.SendForm(ctx, &provider.HTTPRequest{Endpoint: endpoint, FormData: form})
	if err != nil {
		return nil, fmt.Errorf("paytr: %s request failed: %w", op, err)
	}

	if !resp.IsSuccess() {
		return nil, &provider.OperationError{
			Provider:   "paytr",
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    string(resp.Body),
			Raw:        resp.Body,
		}
	}

	var body map[string]any
	if err := p.client.ParseJSONResponse(resp, &body); err != nil {
		return nil, fmt.Errorf("paytr: failed to parse %s response: %w", op, err)
	}

	return body, nil
}

// mapTokenResponse interprets the get-token body. PayTR reports success as
// {"status":"success","token":...}; anything else carries a reason.
func (p *Provider) mapTokenResponse(body []byte) *provider.CreatePaymentResponse {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &provider.CreatePaymentResponse{
			Success: false,
			Reason:  "paytr returned an unparseable response",
			Raw:     body,
		}
	}

	response := &provider.CreatePaymentResponse{Raw: body}

	status, _ := parsed["status"].(string)
	token, _ := parsed["token"].(string)
	if status == statusSuccess && token != "" {
		response.Success = true
		response.Token = token
		response.PaymentURL = p.apiBase + paymentPagePath + token
		return response
	}

	response.Success = false
	if reason, ok := parsed["reason"].(string); ok && reason != "" {
		response.Reason = reason
	} else {
		response.Reason = "paytr did not return a token"
	}
	// err_no arrives as either a string or a JSON number.
	switch errNo := parsed["err_no"].(type) {
	case string:
		response.ErrorCode = errNo
	case float64:
		response.ErrorCode = strconv.FormatFloat(errNo, 'f', -1, 64)
	}

	return response
}

// sign computes the base64 HMAC-SHA256 digest of message keyed with the
// merchant key.
func (p *Provider) sign(message string) string {
	mac := hmac.New(sha256.New, []byte(p.merchantKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func installmentFields(installment int) (noInstallment, maxInstallment string) {
	if installment > 1 {
		return "0", strconv.Itoa(installment)
	}
	return "1", "0"
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
