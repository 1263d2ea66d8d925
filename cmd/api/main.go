// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpmesh/support-platform/internal/config"
	"github.com/helpmesh/support-platform/internal/events"
	"github.com/helpmesh/support-platform/internal/handler"
	"github.com/helpmesh/support-platform/internal/middleware"
	"github.com/helpmesh/support-platform/internal/quota"
	"github.com/helpmesh/support-platform/internal/service"
	"github.com/helpmesh/support-platform/internal/store"
	"github.com/helpmesh/support-platform/internal/token"
	"github.com/helpmesh/support-platform/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	ctx := context.Background()

	// MongoDB
	db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		os.Exit(1)
	}
	defer store.Disconnect(context.Background(), db)

	// Redis, backing refresh tokens
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to Redis", zap.Error(err))
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS
	natsClient, err := events.Connect(ctx, events.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsClient.Close()

	streamManager := events.NewStreamManager(natsClient)
	if err := streamManager.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", zap.Error(err))
		os.Exit(1)
	}

	// Stores
	tenantStore := store.NewTenantStore(db)
	userStore := store.NewUserStore(db)
	faqStore := store.NewFAQStore(db)
	sessionStore := store.NewSessionStore(db)

	// Tokens
	issuer := token.NewIssuer(token.Config{
		Secret:        cfg.JWTSecret,
		Expiry:        cfg.JWTExpiration,
		RefreshExpiry: cfg.RefreshExpiration,
	}, token.NewRedisRefreshStore(redisClient))

	// Services
	enforcer := quota.NewEnforcer(faqStore)
	authSvc := service.NewAuthService(userStore, issuer, log)
	userSvc := service.NewUserService(userStore, tenantStore, enforcer, log)
	tenantSvc := service.NewTenantService(tenantStore, userSvc, log)
	faqSvc := service.NewFAQService(faqStore, tenantStore, enforcer, log)
	chatSvc := service.NewChatService(sessionStore, tenantStore, faqSvc, streamManager, log)

	// Bootstrap superadmin on an empty deployment
	seeder := service.NewSeeder(userStore, log)
	if err := seeder.EnsureSuperAdmin(ctx, cfg.SeedSuperAdminEmail, cfg.SeedSuperAdminPassword); err != nil {
		log.Error("failed to seed superadmin", zap.Error(err))
		os.Exit(1)
	}

	// Handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	authHandler := handler.NewAuthHandler(authSvc, log)
	tenantHandler := handler.NewTenantHandler(tenantSvc, log)
	userHandler := handler.NewUserHandler(userSvc, log)
	faqHandler := handler.NewFAQHandler(faqSvc, log)
	chatHandler := handler.NewChatHandler(chatSvc, log)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints: login, refresh, and the customer chat widget.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.Refresh)

			r.Route("/public/tenants/{id}/chat/sessions", func(r chi.Router) {
				r.Post("/", chatHandler.Start)
				r.Post("/{sessionID}/messages", chatHandler.CustomerMessage)
				r.Post("/{sessionID}/request-human", chatHandler.RequestHuman)
			})
		})

		// Authenticated staff endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(issuer))
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", tenantHandler.List)
				r.Post("/", tenantHandler.Create)
				r.Post("/with-admin", tenantHandler.CreateWithAdmin)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", tenantHandler.Get)
					r.Put("/", tenantHandler.Update)
					r.Delete("/", tenantHandler.Delete)

					r.Get("/users", userHandler.ListByTenant)

					r.Route("/faqs", func(r chi.Router) {
						r.Get("/", faqHandler.List)
						r.Post("/", faqHandler.Create)
						r.Get("/search", faqHandler.Search)
						r.Get("/stats", faqHandler.Stats)
					})

					r.Get("/chat/sessions", chatHandler.ActiveSessions)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", userHandler.Get)
					r.Put("/", userHandler.Update)
					r.Put("/status", userHandler.UpdateStatus)
					r.Delete("/", userHandler.Delete)
				})
			})

			r.Route("/faqs/{id}", func(r chi.Router) {
				r.Get("/", faqHandler.Get)
				r.Put("/", faqHandler.Update)
				r.Delete("/", faqHandler.Delete)
			})

			r.Route("/chat/sessions", func(r chi.Router) {
				r.Get("/mine", chatHandler.MySessions)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", chatHandler.Get)
					r.Post("/assign", chatHandler.Assign)
					r.Post("/messages", chatHandler.AgentMessage)
					r.Post("/close", chatHandler.Close)
				})
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
