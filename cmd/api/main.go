package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	authadapter "github.com/wrenchwise/backend/internal/adapters/auth"
	"github.com/wrenchwise/backend/internal/adapters/cache"
	"github.com/wrenchwise/backend/internal/adapters/database"
	"github.com/wrenchwise/backend/internal/adapters/events"
	"github.com/wrenchwise/backend/internal/adapters/search"
	"github.com/wrenchwise/backend/internal/api/handlers"
	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/api/routes"
	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/redis"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/typesense"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(observability.LoggerOptions{
		Service:     cfg.OTEL.ServiceName,
		Version:     cfg.OTEL.ServiceVersion,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if cfg.Database.MigrateOnStart {
		if err := pgClient.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	// Redis backs caching, live updates and session revocation. The API keeps
	// serving without it.
	var (
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; caching and live updates disabled")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
	}

	var (
		searchRepo repositories.MechanicSearchRepository
		indexer    providers.MechanicIndexer
	)
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable; search falls back to storage")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchRepo = adapter
			indexer = adapter
		}
	}

	// Adapters
	userRepo := database.NewUserAdapter(pgClient)
	storedMechanics := database.NewMechanicAdapter(pgClient, metrics)
	var mechanicRepo repositories.MechanicRepository = storedMechanics
	if cacheProvider != nil {
		mechanicRepo = database.NewCachedMechanicAdapter(storedMechanics, cacheProvider, metrics)
		if cfg.Redis.WarmInterval > 0 {
			warmer := services.NewCacheWarmingService(storedMechanics, cacheProvider, cfg.Redis.WarmTopN)
			warmer.StartPeriodicWarming(ctx, cfg.Redis.WarmInterval)
		}
	}
	reviewRepo := database.NewReviewAdapter(pgClient)
	postRepo := database.NewPostAdapter(pgClient)
	conversationRepo := database.NewConversationAdapter(pgClient)
	messageRepo := database.NewMessageAdapter(pgClient)
	bookingRepo := database.NewBookingAdapter(pgClient)

	// Services
	authService := services.NewAuthService(
		userRepo,
		authadapter.NewBcryptHasher(cfg.Auth.BcryptCost),
		authadapter.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		cacheProvider,
		cfg.Auth,
		metrics,
	)
	mechanicService := services.NewMechanicService(mechanicRepo, searchRepo, cfg.Pagination, cfg.Discovery)
	reviewService := services.NewReviewService(reviewRepo, mechanicRepo, userRepo, eventBus, indexer, cfg.Pagination)
	postService := services.NewPostService(postRepo, userRepo, mechanicRepo, cfg.Pagination)
	messagingService := services.NewMessagingService(conversationRepo, messageRepo, userRepo, mechanicRepo, eventBus, metrics, cfg.Pagination)
	bookingService := services.NewBookingService(bookingRepo, mechanicRepo, eventBus, metrics, cfg.Pagination)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
			cacheInvalidationService = nil
		}
	}

	// Handlers
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Mechanic:  handlers.NewMechanicHandler(mechanicService),
		Review:    handlers.NewReviewHandler(reviewService),
		Feed:      handlers.NewFeedHandler(postService),
		Messaging: handlers.NewMessagingHandler(messagingService),
		Booking:   handlers.NewBookingHandler(bookingService),
	}
	if eventBus != nil {
		live := services.NewLiveUpdateService(eventBus, conversationRepo, metrics)
		h.Stream = handlers.NewStreamHandler(live, messagingService, cfg.Server.AllowedOrigins)
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	router := routes.NewRouter(h, routes.Options{
		Authenticator:   authService,
		Users:           userRepo,
		Mechanics:       mechanicRepo,
		SignInLimiter:   middleware.NewRateLimiter(cfg.Auth.SignInRatePerMinute, cfg.Auth.SignInBurst, proxies),
		CacheMiddleware: cacheMiddleware,
		Metrics:         metrics,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
	})

	// WriteTimeout stays zero when streams are served; they outlive any fixed deadline.
	writeTimeout := cfg.Server.WriteTimeout
	if h.Stream != nil {
		writeTimeout = 0
	}
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
