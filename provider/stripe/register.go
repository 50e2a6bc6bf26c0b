package stripe

import "github.com/ecommkit/payflow/provider"

// Register Stripe provider with the gateway registry
func init() {
	provider.Register("stripe", func(config map[string]string) (provider.PaymentProvider, error) {
		return New(Config{
			SecretKey:      config["secretKey"],
			PublishableKey: config["publishableKey"],
			WebhookSecret:  config["webhookSecret"],
			APIVersion:     config["apiVersion"],
			APIBase:        config["apiBase"],
			Test:           config["test"] == "true",
		})
	})
}
