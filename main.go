package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Govind-619/DishDash/config"
	"github.com/Govind-619/DishDash/metrics"
	"github.com/Govind-619/DishDash/payment"
	"github.com/Govind-619/DishDash/repository"
	"github.com/Govind-619/DishDash/routes"
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Initialize logger
	logFile, err := utils.InitLogger(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logFile.Close()

	// Initialize database
	db, err := config.OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		utils.LogError("Failed to connect to database: %v", err)
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.Migrate(db); err != nil {
		utils.LogError("Failed to migrate database: %v", err)
		log.Fatal("Failed to migrate database:", err)
	}
	store := repository.NewGormStore(db)
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	gateway, err := newGateway(cfg.Payment)
	if err != nil {
		utils.LogError("Failed to configure payments: %v", err)
		log.Fatal("Failed to configure payments:", err)
	}

	menu := services.NewMenuService(store)
	added, err := menu.SeedDefaults(context.Background())
	if err != nil {
		utils.LogError("Failed to seed menu: %v", err)
		log.Fatal("Failed to seed menu:", err)
	}
	if added > 0 {
		utils.LogInfo("Seeded %d menu items", added)
	}

	notifier := services.NewKitchenNotifier(cfg.SMTP)
	router := routes.SetupRouter(routes.Dependencies{
		Config:   cfg,
		Auth:     services.NewAuthService(store, cfg.JWTSecret),
		Menu:     menu,
		Orders:   services.NewOrderService(store, gateway, m, cfg.Payment.RedirectMode),
		Webhooks: services.NewWebhookService(store, gateway, notifier, m),
		Metrics:  m,
		DB:       store,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.LogInfo("Server starting on port %s (payments: %s, redirect mode: %s)", cfg.Port, gateway.Name(), cfg.Payment.RedirectMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError("Error starting server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError("Graceful shutdown failed: %v", err)
	}
	if kn, ok := notifier.(*services.KitchenNotifier); ok {
		kn.Wait()
	}
}

func newGateway(cfg config.PaymentConfig) (payment.Gateway, error) {
	var (
		gw            payment.Gateway
		webhookSecret string
	)
	switch cfg.Provider {
	case config.ProviderRazorpay:
		if cfg.RazorpayKey == "" || cfg.RazorpaySecret == "" {
			return nil, errors.New("RAZORPAY_KEY and RAZORPAY_SECRET are required")
		}
		gw = payment.NewRazorpayGateway(cfg.RazorpayKey, cfg.RazorpaySecret, cfg.RazorpayWebhookSecret)
		webhookSecret = cfg.RazorpayWebhookSecret
	default:
		if cfg.StripeSecretKey == "" {
			return nil, errors.New("STRIPE_SECRET_KEY is required")
		}
		gw = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripePublishableKey, nil)
		webhookSecret = cfg.StripeWebhookSecret
	}
	if webhookSecret == "" {
		utils.LogWarn("No %s webhook secret configured, every webhook delivery will be rejected", gw.Name())
	}
	return payment.NewRetryingGateway(gw, payment.RetryOptions{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}), nil
}
