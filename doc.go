// Package payflow provides shared payment-provider plumbing for web
// applications: a canonical payment request model, deterministic request
// validation, provider-specific basket encodings, HMAC signature
// computation and callback verification, and HTTP adapters for PayTR and
// Stripe behind one PaymentProvider interface.
//
// # Overview
//
// Every provider speaks a different dialect: PayTR wants form posts,
// base64 baskets with decimal-string prices and salted HMAC tokens;
// Stripe wants bearer-authenticated checkout sessions with integer
// minor-unit line items and signed-timestamp webhooks. payflow keeps one
// canonical request/result model and pushes each dialect into its adapter.
//
// # Packages
//
//   - provider: canonical models, the PaymentProvider interface, request
//     validation, the provider registry and the PaymentService facade
//   - provider/paytr, provider/stripe: the two adapters
//   - handler: a thin HTTP surface over the facade
//   - infra/...: configuration, logging, response envelope and the SQLite
//     order journal
//
// # Quick Start
//
//	p, err := paytr.New(paytr.Config{
//	    MerchantID:   "...",
//	    MerchantKey:  "...",
//	    MerchantSalt: "...",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service := provider.NewPaymentService(p)
//	resp, err := service.CreatePayment(ctx, provider.CreatePaymentRequest{
//	    OrderID:    "O-1001",
//	    Amount:     10000, // minor units
//	    Email:      "customer@example.com",
//	    SuccessURL: "https://shop.example/ok",
//	    FailURL:    "https://shop.example/fail",
//	})
//
// Transport and provider-declined failures come back in the response with
// Success=false; a non-nil error means the request never left the process.
// Inbound notifications must pass VerifyCallback before any state change:
//
//	if service.VerifyCallback(cb) {
//	    // trust cb.Status
//	}
//
// Amounts are integer minor currency units everywhere in the canonical
// model; adapters convert to their own wire representation when encoding.
package payflow
