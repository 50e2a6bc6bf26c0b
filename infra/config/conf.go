package config

import (
	"os"
	"strconv"
)

// AppConfig represents the application configuration. All environment
// access happens in this package; the provider adapters only ever see
// explicit config values.
type AppConfig struct {
	Port           string
	OpenSearchURL  string
	OpenSearchUser string
	OpenSearchPass string
	EnableLogging  bool
	OrderStorePath string
}

var appConfigInstance *AppConfig

// GetAppConfig returns the application configuration.
func GetAppConfig() *AppConfig {
	if appConfigInstance == nil {
		appConfigInstance = &AppConfig{
			Port:           GetEnv("APP_PORT", "9999"),
			OpenSearchURL:  GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
			OpenSearchUser: GetEnv("OPENSEARCH_USER", ""),
			OpenSearchPass: GetEnv("OPENSEARCH_PASSWORD", ""),
			EnableLogging:  GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
			OrderStorePath: GetEnv("ORDER_STORE_PATH", "data/orders.db"),
		}
	}
	return appConfigInstance
}

// ProviderConfigsFromEnv builds per-provider configuration maps from the
// process environment. Only providers whose required credentials are
// present are returned; the maps feed the registry factories.
func ProviderConfigsFromEnv() map[string]map[string]string {
	configs := make(map[string]map[string]string)

	if os.Getenv("PAYTR_MERCHANT_ID") != "" {
		configs["paytr"] = map[string]string{
			"merchantId":   GetEnv("PAYTR_MERCHANT_ID", ""),
			"merchantKey":  GetEnv("PAYTR_KEY", ""),
			"merchantSalt": GetEnv("PAYTR_SALT", ""),
			"apiBase":      GetEnv("PAYTR_API_BASE", ""),
			"test":         strconv.FormatBool(GetBoolEnv("PAYTR_TEST", false)),
		}
	}

	if os.Getenv("STRIPE_SECRET_KEY") != "" {
		configs["stripe"] = map[string]string{
			"secretKey":      GetEnv("STRIPE_SECRET_KEY", ""),
			"publishableKey": GetEnv("STRIPE_PUBLISHABLE_KEY", ""),
			"webhookSecret":  GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			"apiVersion":     GetEnv("STRIPE_API_VERSION", ""),
			"test":           strconv.FormatBool(GetBoolEnv("STRIPE_TEST", false)),
		}
	}

	return configs
}

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value.
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value.
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
