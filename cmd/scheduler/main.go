package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/claim-calculator/internal/config"
	"github.com/segyhp/claim-calculator/internal/keyrate"
	"github.com/segyhp/claim-calculator/internal/repository"
	"github.com/segyhp/claim-calculator/pkg/logger"
)

func main() {
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

	log.Info("starting key rate scheduler")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	cbr := keyrate.NewCBRClient(cfg.KeyRate.URL, cfg.GetKeyRateTimeout(), log)
	rates := keyrate.NewCachedProvider(cbr, repository.NewRedisCache(redisClient), cfg.GetKeyRateCacheTTL(), log)

	// Initialize cron scheduler
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(cfg.GetSchedulerLocation()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	// Schedule tasks
	if err := setupCronJobs(c, cfg, rates, log); err != nil {
		log.Fatal("failed to schedule jobs", zap.Error(err))
	}

	// Warm the cache right away instead of waiting for the first tick
	refreshKeyRate(cfg, rates, log)

	// Start the scheduler
	c.Start()
	log.Info("scheduler started", zap.String("schedule", cfg.Scheduler.KeyRateRefresh))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	<-c.Stop().Done()
	log.Info("scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, rates *keyrate.CachedProvider, log *zap.Logger) error {
	_, err := c.AddFunc(cfg.Scheduler.KeyRateRefresh, func() {
		refreshKeyRate(cfg, rates, log)
	})
	return err
}

// refreshKeyRate pulls the rate from the central bank into the cache
func refreshKeyRate(cfg *config.Config, rates *keyrate.CachedProvider, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetKeyRateTimeout())
	defer cancel()

	rate, err := rates.Refresh(ctx)
	if err != nil {
		log.Error("key rate refresh failed", zap.Error(err))
		return
	}
	log.Info("key rate refreshed", zap.String("rate", rate.String()))
}
