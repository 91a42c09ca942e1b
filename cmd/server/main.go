package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/claim-calculator/internal/config"
	"github.com/segyhp/claim-calculator/internal/handler"
	"github.com/segyhp/claim-calculator/internal/keyrate"
	"github.com/segyhp/claim-calculator/internal/repository"
	"github.com/segyhp/claim-calculator/internal/service"
	"github.com/segyhp/claim-calculator/pkg/logger"
	"github.com/segyhp/claim-calculator/pkg/response"
)

func main() {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	// Initialize database (optional)
	var db *sqlx.DB
	var calcRepo repository.CalculationRepository
	if cfg.HasDatabase() {
		db, err = initDB(cfg)
		if err != nil {
			log.Fatal("failed to initialize database", zap.Error(err))
		}
		defer db.Close()
		calcRepo = repository.NewCalculationRepository(db)
	} else {
		log.Warn("DATABASE_URL not set, calculations will not be recorded")
	}

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	keyRates := initKeyRates(cfg, redisClient, log)

	//Initialize service
	calculatorService := service.NewCalculatorService(calcRepo, keyRates, cfg, log)
	calculationHandler := handler.NewCalculationHandler(calculatorService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(calculationHandler, healthHandler, log)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// initKeyRates builds CBR -> Redis cache -> optional static fallback
func initKeyRates(cfg *config.Config, redisClient *redis.Client, log *zap.Logger) keyrate.Provider {
	cbr := keyrate.NewCBRClient(cfg.KeyRate.URL, cfg.GetKeyRateTimeout(), log)
	cached := keyrate.NewCachedProvider(cbr, repository.NewRedisCache(redisClient), cfg.GetKeyRateCacheTTL(), log)

	if rate, ok := cfg.GetKeyRateFallback(); ok {
		log.Info("static key rate fallback configured", zap.String("rate", rate.String()))
		return keyrate.WithFallback(cached, keyrate.Static{Rate: rate})
	}
	return cached
}

func setupRoutes(calculationHandler *handler.CalculationHandler, healthHandler *handler.HealthHandler, log *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(log))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	/// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/calculations/forced-absence", calculationHandler.CalculateForcedAbsence).Methods("POST")
	api.HandleFunc("/calculations/payoff", calculationHandler.CalculatePayoff).Methods("POST")
	api.HandleFunc("/calculations", calculationHandler.ListCalculations).Methods("GET")
	api.HandleFunc("/calculations/{id}", calculationHandler.GetCalculation).Methods("GET")
	api.HandleFunc("/key-rate", calculationHandler.GetKeyRate).Methods("GET")

	return router
}
