package server

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"boardfront/internal/auth"
	"boardfront/internal/config"
	"boardfront/internal/proxy"
	"boardfront/internal/session"
	"boardfront/internal/token"
	"boardfront/internal/upstream"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg *Config

	sessions session.Manager
	bridge   *token.Bridge
	auth     *auth.Handler
	proxy    *proxy.Handler
}

// Config holds server configuration
type Config struct {
	Port          int
	APIBaseURL    string
	SessionSecret string
	SessionMaxAge int
	FrontendURL   string
	SecureCookies bool

	UpstreamTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables
func LoadConfigFromEnv() *Config {
	return &Config{
		Port:          config.GetEnvInt("PORT", 8080),
		APIBaseURL:    config.GetEnvOrDefault("API_BASE_URL", "http://localhost:4000"),
		SessionSecret: config.SessionSecret(),
		SessionMaxAge: config.GetEnvInt("SESSION_MAX_AGE", 86400),
		FrontendURL:   config.GetEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		SecureCookies: config.IsProduction(),

		UpstreamTimeout: config.GetEnvDuration("UPSTREAM_TIMEOUT", upstream.DefaultTimeout),
		ReadTimeout:     config.GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    config.GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     config.GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// New wires the handlers against the given session store.
func New(cfg *Config, store session.Store) *Server {
	sessions := session.NewManager(store)
	bridge := token.NewBridge()
	up := upstream.NewClient(cfg.APIBaseURL, cfg.UpstreamTimeout)

	authCfg := auth.Config{
		CookieSecret:  cfg.SessionSecret,
		SessionMaxAge: cfg.SessionMaxAge,
		SecureCookies: cfg.SecureCookies,
	}

	return &Server{
		cfg:      cfg,
		sessions: sessions,
		bridge:   bridge,
		auth:     auth.NewHandler(up, sessions, bridge, authCfg),
		proxy:    proxy.NewHandler(up, bridge, sessions),
	}
}

// NewHTTPServer creates and configures the HTTP server around the
// registered routes.
func NewHTTPServer(cfg *Config, store session.Store) *http.Server {
	appServer := New(cfg, store)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           appServer.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
