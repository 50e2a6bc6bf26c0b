package paytr

import "github.com/ecommkit/payflow/provider"

// Register PayTR provider with the gateway registry
func init() {
	provider.Register("paytr", func(config map[string]string) (provider.PaymentProvider, error) {
		return New(Config{
			MerchantID:   config["merchantId"],
			MerchantKey:  config["merchantKey"],
			MerchantSalt: config["merchantSalt"],
			APIBase:      config["apiBase"],
			Test:         config["test"] == "true",
		})
	})
}
