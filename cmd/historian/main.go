// cmd/historian/main.go is an asynchronous historian service that pops hand
// actions from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/swick/internal/cache"
	"github.com/jason-s-yu/swick/internal/config"
	"github.com/jason-s-yu/swick/internal/database"
	"github.com/jason-s-yu/swick/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}
	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL or PG_HOST must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
		logrus.Fatalf("database: %v", err)
	}
	defer database.Close()
	if err := database.Migrate(ctx, database.DB); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}

	rdb := cache.NewClient(cfg.RedisAddr, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("redis: %v", err)
	}

	hc := historian.DefaultConfig()
	hc.BatchSize = cfg.HistorianBatchSize
	hc.FlushDelay = cfg.HistorianFlush
	hc.Inactivity = cfg.HistorianInactivity

	svc := historian.NewService(
		historian.RedisQueue{Client: rdb, Name: cfg.QueueName},
		historian.PGWriter{Pool: database.DB},
		hc,
		nil,
	)
	logrus.Info("swick-historian service started.")
	svc.Run(ctx)
	logrus.Info("swick-historian shut down.")
}
