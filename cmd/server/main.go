package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aserras/webfront/internal/billing"
	"github.com/aserras/webfront/internal/config"
	"github.com/aserras/webfront/internal/handlers"
	"github.com/aserras/webfront/internal/logger"
	"github.com/aserras/webfront/internal/middleware"
	"github.com/aserras/webfront/internal/services/brain"
	"github.com/aserras/webfront/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("brain_api_url", cfg.BrainAPIURL),
		zap.Int("rate_limit_requests", cfg.RateLimitRequests),
		zap.Duration("rate_limit_window", cfg.RateLimitWindow),
		zap.Bool("stripe_configured", cfg.HasStripeSecret()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	otelActive := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.Init(context.Background(), cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				otelActive = true
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Upstream client, limiter and billing state
	brainClient := brain.New(cfg.BrainAPIURL, cfg.BrainAPITimeout)
	limiter := middleware.NewMemoryRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	billingService := billing.NewService(&billing.StripeConfig{
		SecretKey:       cfg.StripeSecretKey,
		WebhookSecret:   cfg.StripeWebhookSecret,
		PricePro:        cfg.StripePricePro,
		PriceEnterprise: cfg.StripePriceEnterprise,
		SuccessURL:      cfg.CheckoutSuccessURL,
		CancelURL:       cfg.CheckoutCancelURL,
	}, billing.NewLedger(), zapLogger)

	cookieConfig := handlers.SessionCookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
		MaxAge: cfg.SessionCookieMaxAge,
	}

	healthHandler := handlers.NewHealthHandler(brainClient)
	authHandler := handlers.NewAuthHandler(brainClient, cookieConfig, zapLogger)
	aiHandler := handlers.NewAIHandler(brainClient, zapLogger)
	paymentsHandler := handlers.NewPaymentsHandler(billingService, zapLogger)

	r := mux.NewRouter()

	// Middleware runs in registration order; outermost first.
	if otelActive {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.Session(cfg.SessionCookieName))

	// Health stays outside the rate-limited subtree
	r.HandleFunc("/health", healthHandler.HealthCheck).Methods("GET")
	r.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.RateLimit(limiter, zapLogger))

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	authHandler.RegisterRoutes(authRouter)

	paymentsRouter := apiRouter.PathPrefix("/payments").Subrouter()
	paymentsHandler.RegisterRoutes(paymentsRouter)

	// Generation endpoints need a session token; /models is browsable
	// without one.
	apiRouter.HandleFunc("/models", aiHandler.Models).Methods("GET")

	protectedRouter := apiRouter.PathPrefix("").Subrouter()
	protectedRouter.Use(middleware.RequireToken)
	protectedRouter.HandleFunc("/chat", aiHandler.Chat).Methods("POST")
	protectedRouter.HandleFunc("/image", aiHandler.Image).Methods("POST")
	protectedRouter.HandleFunc("/code", aiHandler.Code).Methods("POST")
	protectedRouter.HandleFunc("/history", aiHandler.History).Methods("GET")
	protectedRouter.HandleFunc("/profile", aiHandler.Profile).Methods("GET")
	protectedRouter.HandleFunc("/profile", aiHandler.UpdateProfile).Methods("PATCH")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsHandler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
