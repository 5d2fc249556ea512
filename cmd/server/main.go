// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/swick/internal/auth"
	"github.com/jason-s-yu/swick/internal/bot"
	"github.com/jason-s-yu/swick/internal/cache"
	"github.com/jason-s-yu/swick/internal/config"
	"github.com/jason-s-yu/swick/internal/database"
	"github.com/jason-s-yu/swick/internal/handlers"
	"github.com/jason-s-yu/swick/internal/middleware"
	"github.com/jason-s-yu/swick/internal/room"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if cfg.IsDev() {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)

	if err := auth.Init(cfg.TokenExpire); err != nil {
		logger.Fatalf("auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hand history is optional: without Redis the engine simply does not
	// publish, and the archive lives in cmd/historian.
	if cfg.RedisAddr != "" {
		cache.QueueName = cfg.QueueName
		if err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
			logger.Warnf("hand history disabled: %v", err)
		} else {
			defer cache.Rdb.Close()
			logger.Infof("publishing hand actions to %s/%s", cfg.RedisAddr, cfg.QueueName)
		}
	}
	if cfg.DatabaseURL != "" {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			logger.Warnf("database unavailable: %v", err)
		} else {
			defer database.Close()
			if err := database.Migrate(ctx, database.DB); err != nil {
				logger.Warnf("migrate: %v", err)
			}
		}
	}

	rooms := room.NewStore(ctx, room.Options{
		IdleTimeout:       cfg.RoomIdleTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		Bots:              bot.NewAgent(nil),
		Logger:            logrus.NewEntry(logger),
	})
	srv := handlers.NewServer(rooms, logger, wsOriginPatterns(cfg.AllowedOrigins))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LogMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	srv.Routes(r, cfg.Rules)

	httpServer := &http.Server{
		Addr:              addr(cfg),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Running on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}

// addr binds every interface in production and localhost otherwise.
func addr(cfg config.Config) string {
	if cfg.IsDev() {
		return "localhost:" + cfg.Port
	}
	return ":" + cfg.Port
}

// wsOriginPatterns turns CORS origins into the host patterns websocket.Accept
// matches against.
func wsOriginPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		out = append(out, o)
	}
	return out
}
