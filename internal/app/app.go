package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/config"
	"sidequest_portal/internal/handlers"
	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/metrics"
	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/routes"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/payment"
	"sidequest_portal/internal/session"
	"sidequest_portal/internal/store"
	"sidequest_portal/internal/validator"
	"sidequest_portal/internal/workers"
)

const (
	shutdownTimeout = 15 * time.Second
	checkoutTTL     = 10 * time.Minute
	sweepInterval   = 10 * time.Minute
)

// Deps - внешние зависимости, которые можно подменить (тесты).
// Пустые поля собираются из конфига.
type Deps struct {
	Repository store.Repository
	HTTPClient *http.Client
}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repo := initializeRepository(cfg)
	if mem, ok := repo.(*store.MemoryRepository); ok {
		workers.NewStateWorker(mem, sweepInterval).Start(ctx)
	}

	ginRouter := SetupRouter(cfg, Deps{Repository: repo})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 Portal starting", "address", cfg.Address(), "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down portal...")

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Portal stopped")
}

func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	validator.ConfigureGin()

	// 1. Кэш состояния сессий
	repo := deps.Repository
	if repo == nil {
		repo = initializeRepository(cfg)
	}
	states := store.NewManager(repo)

	// 2. Клиент backend и cookie-сессии
	client := backend.New(backend.Options{
		BaseURL:    cfg.Backend.BaseURL,
		BusinessID: cfg.Backend.BusinessID,
		Timeout:    cfg.Timeout(),
		Retry: backend.RetryPolicy{
			MaxRetries: cfg.Backend.RetryAttempts,
			BaseDelay:  cfg.RetryBaseDelay(),
		},
		BreakerMaxFailures: uint32(cfg.Backend.BreakerMaxFailures),
		HTTPClient:         deps.HTTPClient,
	})
	sessions := session.NewStore(session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.SessionTTL(),
		Secure:     cfg.Session.Secure,
		Domain:     cfg.Session.Domain,
	})

	// 3. Сервисы и хэндлеры
	serviceContainer := initializeServices(cfg)
	appHandlers := initializeHandlers(cfg, serviceContainer)

	// 4. Gin
	ginRouter := initializeGinRouter(middleware.Portal{
		Sessions: sessions,
		States:   states,
		Backend:  client,
	})

	routes.RegisterRoutes(ginRouter, appHandlers)
	return ginRouter
}

// initializeRepository - redis, если настроен и доступен, иначе память процесса
func initializeRepository(cfg *config.Config) store.Repository {
	if cfg.Cache.Driver != "redis" {
		logger.Info("State cache initialized", "driver", "memory")
		return store.NewMemoryRepository(cfg.CacheTTL())
	}

	rdb, err := store.NewRedisClient(context.Background(), cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory state cache",
			"addr", cfg.Cache.RedisAddr, "error", err)
		return store.NewMemoryRepository(cfg.CacheTTL())
	}
	logger.Info("State cache initialized", "driver", "redis", "addr", cfg.Cache.RedisAddr)
	return store.NewRedisRepository(rdb, cfg.CacheTTL())
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	square := payment.NewSquareService(cfg.Square.ApplicationID, cfg.Square.LocationID, cfg.Square.Environment)
	if !square.Configured() {
		logger.Warn("Square is not configured, checkout is disabled")
	}

	return services.NewServiceContainer(services.Settings{
		BusinessID:      cfg.Backend.BusinessID,
		AdminBusinessID: cfg.Backend.AdminBusinessID,
		Square:          square,
		CheckoutTTL:     checkoutTTL,
	})
}

func initializeHandlers(cfg *config.Config, svc *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	app := handlers.AppInfo{Name: cfg.App.Name, Description: cfg.App.Description}

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, svc.AuthService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, svc.SubscriptionService),
		PlanHandler:         handlers.NewPlanHandler(baseHandler, svc.PlanService),
		RedeemHandler:       handlers.NewRedeemHandler(baseHandler, svc.RedeemService, svc.SubscriptionService),
		PaymentHandler:      handlers.NewPaymentHandler(baseHandler, svc.PaymentService),
		AdminHandler:        handlers.NewAdminHandler(baseHandler, svc.AdminService, svc.PaymentService),
		NavigationHandler:   handlers.NewNavigationHandler(baseHandler, svc.NavigationService),
		PageHandler:         handlers.NewPageHandler(baseHandler, app, svc),
	}
}

func initializeGinRouter(portal middleware.Portal) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	router.Use(middleware.ScopeMiddleware(portal))
	router.Use(middleware.EdgeGate(middleware.DefaultEdgeMatcher))
	return router
}
