package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/menuboard/display-server-go/internal/broadcast"
	"github.com/menuboard/display-server-go/internal/config"
	"github.com/menuboard/display-server-go/internal/database"
	"github.com/menuboard/display-server-go/internal/handler"
	"github.com/menuboard/display-server-go/internal/jobs"
	"github.com/menuboard/display-server-go/internal/middleware"
	"github.com/menuboard/display-server-go/internal/redis"
	"github.com/menuboard/display-server-go/internal/repository"
	"github.com/menuboard/display-server-go/internal/service"
	"github.com/menuboard/display-server-go/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	media, err := storage.NewMediaStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise media store")
	}

	userRepo := repository.NewUserRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	itemRepo := repository.NewItemRepository(db)
	displayRepo := repository.NewDisplayRepository(db)

	broker := broadcast.NewBroker(redisClient)
	defer broker.Close()

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL(), cfg.BcryptCost)
	restaurantService := service.NewRestaurantService(restaurantRepo, broker, broker)
	menuService := service.NewMenuService(menuRepo, itemRepo, restaurantRepo, broker)
	itemService := service.NewItemService(itemRepo, restaurantRepo, broker)
	displayService := service.NewDisplayService(displayRepo, menuRepo, restaurantRepo, broker)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)
	authRateLimit := middleware.NewIPRateLimitMiddleware(redisClient.Client, config.AuthRateLimitPerMin)
	pairingRateLimit := middleware.NewIPRateLimitMiddleware(redisClient.Client, config.PairingRateLimitPerMin)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	authHandler := handler.NewAuthHandler(authService)
	restaurantsHandler := handler.NewRestaurantsHandler(restaurantService)
	menusHandler := handler.NewMenusHandler(menuService)
	itemsHandler := handler.NewItemsHandler(itemService, media)
	displaysHandler := handler.NewDisplaysHandler(displayService, media)
	eventsHandler := handler.NewEventsHandler(broker, authMiddleware, restaurantRepo, menuRepo)
	uploadsHandler := handler.NewUploadsHandler(media.Dir())

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"timestamp":   time.Now().UnixMilli(),
			"connections": broker.TotalClients(),
		})
	})

	r.Get("/events", eventsHandler.ServeHTTP)
	r.Get("/uploads/*", uploadsHandler.ServeHTTP)

	r.Route("/auth", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
		r.Use(bodyLimitMiddleware.Handler)
		r.Use(authRateLimit.Handler)
		r.Mount("/", authHandler.Routes())
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
		r.Use(bodyLimitMiddleware.Handler)
		r.Use(pairingRateLimit.Handler)
		r.Post("/displays/pair", displaysHandler.Pair)
		r.Get("/displays/pair/{pairingCode}", displaysHandler.ResolveCode)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
		r.Use(authMiddleware.Handler)

		// JSON endpoints sit behind the default body limit. Uploads get
		// their own per-endpoint size caps instead.
		r.Group(func(r chi.Router) {
			r.Use(bodyLimitMiddleware.Handler)
			r.Mount("/restaurants", restaurantsHandler.Routes())
			r.Mount("/menus", menusHandler.Routes())
			r.Mount("/items", itemsHandler.Routes())
			r.Mount("/displays", displaysHandler.Routes())
		})

		handler.UploadRoutes(r, itemsHandler, displaysHandler)
	})

	reconcileJob := jobs.NewMediaReconcileJob(displayRepo, itemRepo, media, config.MediaReconcileInterval)
	reconcileJob.Start()
	defer reconcileJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
