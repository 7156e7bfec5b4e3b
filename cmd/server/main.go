package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/handler"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/chain"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/logger"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/redis"
	"github.com/ProofINer/proofin-backend/internal/observability/metrics"
	"github.com/ProofINer/proofin-backend/internal/observability/tracing"
	"github.com/ProofINer/proofin-backend/internal/registry"
	"github.com/ProofINer/proofin-backend/internal/repository"
	"github.com/ProofINer/proofin-backend/internal/security/audit"
	"github.com/ProofINer/proofin-backend/internal/security/auth"
	"github.com/ProofINer/proofin-backend/internal/security/middleware"
	"github.com/ProofINer/proofin-backend/internal/security/ratelimit"
	"github.com/ProofINer/proofin-backend/internal/service"
	"github.com/ProofINer/proofin-backend/internal/worker"
	"github.com/ProofINer/proofin-backend/pkg/cache"
	"github.com/ProofINer/proofin-backend/pkg/config"
	"github.com/ProofINer/proofin-backend/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting ProofIn backend", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "proofin-backend", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// Optional backing stores; memory fallbacks keep local development
	// dependency-free.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	var dbPool *database.Pool
	if cfg.PostgresURL != "" {
		dbPool, err = database.NewPool(ctx, cfg.PostgresURL, log)
		if err != nil {
			log.Error("failed to connect to postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := repository.EnsureSchema(ctx, dbPool); err != nil {
			log.Error("failed to apply schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	var sessionStore domain.SessionStore
	if redisClient != nil {
		sessionStore = repository.NewRedisSessionStore(redisClient, log)
	} else {
		sessionStore = repository.NewMemorySessionStore()
	}

	var (
		identityStore     domain.IdentityStore
		profileStore      domain.ProfileStore
		notificationStore domain.NotificationStore
	)
	if dbPool != nil {
		identityStore = repository.NewPostgresIdentityStore(dbPool, log)
		profileStore = repository.NewPostgresProfileStore(dbPool, log)
		notificationStore = repository.NewPostgresNotificationStore(dbPool, log)
	} else {
		identityStore = repository.NewMemoryIdentityStore()
		profileStore = repository.NewMemoryProfileStore()
		notificationStore = repository.NewMemoryNotificationStore()
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, cfg.ChainID, cfg.BackendPrivateKey, log)
	if err != nil {
		log.Error("failed to connect to chain", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer chainClient.Close()

	contractGateway, err := registry.NewContractGateway(cfg.ContractRegistryAddress, chainClient, log)
	if err != nil {
		log.Error("failed to bind contract registry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	verifierGateway, err := registry.NewVerifierGateway(cfg.LandlordVerifierAddress, chainClient, log)
	if err != nil {
		log.Error("failed to bind landlord verifier", slog.String("error", err.Error()))
		os.Exit(1)
	}
	nftGateway, err := registry.NewNFTGateway(cfg.TenantNFTAddress, chainClient, log)
	if err != nil {
		log.Error("failed to bind tenant nft registry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	vaultGateway, err := registry.NewVaultGateway(cfg.DepositVaultAddress, chainClient, log)
	if err != nil {
		log.Error("failed to bind deposit vault", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hub := handler.NewNotificationHub(log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "proofin")
	signatureVerifier := service.NewEthereumVerifier(cfg.StrictSignatureVerification, log)
	if !cfg.StrictSignatureVerification {
		log.Warn("strict signature verification disabled, dev mode only")
	}

	notificationService := service.NewNotificationService(notificationStore, hub, log)
	authService := service.NewAuthService(
		sessionStore, identityStore, profileStore,
		signatureVerifier, tokenManager,
		time.Duration(cfg.SessionTTLHours)*time.Hour, log,
	)
	profileService := service.NewProfileService(profileStore, log)
	contractService := service.NewContractService(contractGateway, notificationService, cfg.AggregateMaxFanout, log)
	verifierService := service.NewVerifierService(verifierGateway, nftGateway, profileStore, notificationService, log)
	nftService := service.NewNFTService(nftGateway, cfg.AggregateMaxFanout, log)
	vaultService := service.NewVaultService(vaultGateway, log)

	authHandler := handler.NewAuthHandler(authService, log)
	profileHandler := handler.NewProfileHandler(profileService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	contractHandler := handler.NewContractHandler(contractService, log)
	verifierHandler := handler.NewVerifierHandler(verifierService, log)
	nftHandler := handler.NewNFTHandler(nftService, log)
	vaultHandler := handler.NewVaultHandler(vaultService, log)
	healthHandler := handler.NewHealthHandler(chainClient, redisClient, dbPool, log)
	streamHandler := handler.NewStreamHandler(hub, cfg.CORSAllowedOrigins, log)

	requireAuth := middleware.RequireAuth(authService, log)
	requireTenant := func(h http.Handler) http.Handler {
		return requireAuth(middleware.RequireRole(domain.RoleTenant)(h))
	}

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/validate", authHandler.Validate)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/user/{address}/{role}", authHandler.GetUser)
	mux.HandleFunc("GET /api/auth/users/{role}", authHandler.GetUsersByRole)

	// Profiles
	mux.HandleFunc("GET /api/profile/role/{role}", profileHandler.ListByRole)
	mux.HandleFunc("GET /api/profile/{role}/{address}", profileHandler.Get)
	mux.Handle("POST /api/profile/{role}/{address}", requireAuth(http.HandlerFunc(profileHandler.Create)))
	mux.Handle("PUT /api/profile/{role}/{address}", requireAuth(http.HandlerFunc(profileHandler.Update)))
	mux.Handle("DELETE /api/profile/{role}/{address}", requireAuth(http.HandlerFunc(profileHandler.Delete)))

	// Notifications
	mux.Handle("POST /api/notifications", requireAuth(http.HandlerFunc(notificationHandler.Create)))
	mux.Handle("GET /api/notifications/user/{address}", requireAuth(http.HandlerFunc(notificationHandler.ListForUser)))
	mux.Handle("GET /api/notifications/user/{address}/unread", requireAuth(http.HandlerFunc(notificationHandler.UnreadCount)))
	mux.Handle("PUT /api/notifications/user/{address}/read-all", requireAuth(http.HandlerFunc(notificationHandler.MarkAllRead)))
	mux.Handle("DELETE /api/notifications/user/{address}", requireAuth(http.HandlerFunc(notificationHandler.DeleteAllForUser)))
	mux.Handle("PUT /api/notifications/{id}/read", requireAuth(http.HandlerFunc(notificationHandler.MarkRead)))
	mux.Handle("DELETE /api/notifications/{id}", requireAuth(http.HandlerFunc(notificationHandler.Delete)))
	mux.Handle("GET /api/notifications/{address}", requireAuth(http.HandlerFunc(notificationHandler.ListForUser)))
	mux.Handle("GET /ws/notifications/{address}", streamHandler)

	// Contracts
	mux.Handle("POST /api/contracts", requireTenant(http.HandlerFunc(contractHandler.Create)))
	mux.HandleFunc("GET /api/contracts", contractHandler.ListAll)
	mux.HandleFunc("GET /api/contracts/tenant/{address}", contractHandler.ListByTenant)
	mux.HandleFunc("GET /api/contracts/landlord/{address}", contractHandler.ListByLandlord)
	mux.HandleFunc("GET /api/contracts/{id}", contractHandler.Get)
	mux.Handle("PUT /api/contracts/{id}", requireAuth(http.HandlerFunc(contractHandler.Update)))

	// Verification workflow
	mux.Handle("POST /api/verifier/verify", requireAuth(http.HandlerFunc(verifierHandler.Verify)))
	mux.HandleFunc("GET /api/verifier/status/{address}", verifierHandler.Status)
	mux.HandleFunc("GET /api/verifier/details/{address}", verifierHandler.Details)

	// NFTs
	mux.Handle("POST /api/nft/mint", requireAuth(http.HandlerFunc(nftHandler.Mint)))
	mux.HandleFunc("GET /api/nft/owner/{address}", nftHandler.TokensByOwner)
	mux.HandleFunc("GET /api/nft/{id}", nftHandler.TokenDetails)

	// Deposit escrow
	mux.Handle("POST /api/vault/deposit", requireAuth(http.HandlerFunc(vaultHandler.Deposit)))
	mux.Handle("POST /api/vault/release/{id}", requireAuth(http.HandlerFunc(vaultHandler.Release)))
	mux.Handle("POST /api/vault/refund/{id}", requireAuth(http.HandlerFunc(vaultHandler.Refund)))
	mux.HandleFunc("GET /api/vault/{id}", vaultHandler.DepositInfo)

	// Operational endpoints
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer rateLimiter.Stop()
	auditLogger := audit.NewLogger(log)

	// Request ID -> tracing -> metrics -> CORS -> optional session ->
	// rate limit -> audit -> routes. Sessions are resolved once up
	// front so limits key by wallet; route guards re-check.
	rootHandler := middleware.RequestIDMiddleware(
		otelhttp.NewHandler(
			metrics.HTTPMetricsMiddleware(
				middleware.CORSMiddleware(cfg.CORSAllowedOrigins)(
					middleware.OptionalAuth(authService, log)(
						middleware.RateLimitMiddleware(rateLimiter, log)(
							middleware.AuditMiddleware(auditLogger)(mux),
						),
					),
				),
			),
			"proofin-backend",
		),
	)

	if cfg.DepositWatchIntervalSeconds > 0 {
		watcher := worker.NewDepositWatcher(
			contractGateway, vaultGateway, notificationService,
			cache.New(), log,
			time.Duration(cfg.DepositWatchIntervalSeconds)*time.Second,
		)
		go watcher.Start(ctx)
	} else {
		log.Info("deposit watcher disabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.Bool("strict_signatures", cfg.StrictSignatureVerification),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	log.Info("server stopped")
}
