package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"boardfront/internal/config"
	"boardfront/internal/logger"
	"boardfront/internal/server"
	"boardfront/internal/session"
)

func main() {
	log := logger.New()
	logger.SetDefault(log)

	cfg := server.LoadConfigFromEnv()

	slog.Info("Starting board front server",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"session_store", config.GetEnvOrDefault("SESSION_STORE", "redis"),
	)

	store := newSessionStore()

	srv := server.NewHTTPServer(cfg, store)

	go func() {
		slog.Info("Front server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down front server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Front server stopped")
}

// newSessionStore selects the session backend. Redis is the default;
// SESSION_STORE=memory keeps everything in-process for local runs.
func newSessionStore() session.Store {
	switch config.GetEnvOrDefault("SESSION_STORE", "redis") {
	case "memory":
		slog.Info("Using in-memory session store")
		return session.NewMemoryStore()
	default:
		addr := config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379")
		password := config.GetEnvOrDefault("REDIS_PASSWORD", "")
		slog.Info("Using Redis session store", "addr", addr)
		return session.NewRedisStore(addr, password, 0)
	}
}
