package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/ecommkit/payflow/handler"
	"github.com/ecommkit/payflow/infra/config"
	"github.com/ecommkit/payflow/infra/logger"
	"github.com/ecommkit/payflow/infra/opensearch"
	"github.com/ecommkit/payflow/infra/store"
	"github.com/ecommkit/payflow/provider"

	// Provider self-registration
	_ "github.com/ecommkit/payflow/provider/paytr"
	_ "github.com/ecommkit/payflow/provider/stripe"
)

func main() {
	// Env reading stays here, at the composition root; the provider
	// packages only ever receive explicit configuration.
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("No .env file loaded, using process environment")
	}

	cfg := config.GetAppConfig()

	var logSink *opensearch.Logger
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize OpenSearch client, continuing without log sink",
				logger.LogContext{Fields: map[string]any{"error": err.Error()}})
		} else {
			logSink = opensearch.NewLogger(osClient)
		}
	}

	logger.InitGlobalLogger(logSink, logger.SystemLoggerConfig{
		EnableConsole: true,
		MinLevel:      logger.LevelInfo,
		Service:       "payflow",
		Environment:   config.GetEnv("ENVIRONMENT", "development"),
	})

	orders, err := store.NewOrderStore(cfg.OrderStorePath)
	if err != nil {
		logger.Fatal("Failed to open order store", err)
	}
	defer orders.Close()

	providerConfigs := config.ProviderConfigsFromEnv()
	if len(providerConfigs) == 0 {
		logger.Fatal("No payment provider configured", nil)
	}

	providers := make(map[string]provider.PaymentProvider, len(providerConfigs))
	for name, providerCfg := range providerConfigs {
		p, err := provider.CreateProvider(name, providerCfg)
		if err != nil {
			logger.Fatal("Failed to configure provider", err, logger.LogContext{Provider: name})
		}
		providers[name] = p
		logger.Info("Configured payment provider", logger.LogContext{Provider: name})
	}

	active := config.GetEnv("PAYMENT_PROVIDER", "paytr")
	activeProvider, ok := providers[active]
	if !ok {
		for name, p := range providers {
			activeProvider, active = p, name
			break
		}
	}

	paymentService := provider.NewPaymentService(activeProvider)
	if logSink != nil {
		paymentService.SetLogger(logSink)
	}
	logger.Info("Active payment provider selected", logger.LogContext{Provider: active})

	paymentHandler := handler.NewPaymentHandler(paymentService, providers, orders, validator.New())

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/payments", paymentHandler.CreatePayment)
		r.Get("/payments/{orderID}", paymentHandler.QueryTransaction)
		r.Post("/refunds", paymentHandler.Refund)
		r.Post("/callbacks/{provider}", paymentHandler.Callback)
		r.Get("/providers", paymentHandler.Providers)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", logger.LogContext{Fields: map[string]any{"port": cfg.Port}})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err)
	}
	logger.Info("Server stopped")
}
