package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wealthed/portal/internal/backend"
	"github.com/wealthed/portal/internal/controller"
	"github.com/wealthed/portal/internal/metrics"
	connInmemory "github.com/wealthed/portal/internal/repository/connection/inmemory"
	sessionRedis "github.com/wealthed/portal/internal/repository/session/redis"
	"github.com/wealthed/portal/internal/service/rating"
	"github.com/wealthed/portal/internal/service/webinar"
	"github.com/wealthed/portal/pkg/ctxlogger"
	"github.com/wealthed/portal/pkg/redisclient"
)

// sessionTTL is how long an untouched watch session survives in redis; every
// read or update refreshes it.
const sessionTTL = 12 * time.Hour

type AppConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	LogLevel      string `json:"log_level"`
	BackendURL    string `json:"backend_url"`
	SiteKey       string `json:"-"`
	RootDomain    string `json:"root_domain"`
	RedisPort     int    `json:"redis_port"`
	RedisHost     string `json:"redis_host"`
	RedisPassword string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.BackendURL == "" {
		return fmt.Errorf("backend url must be set")
	}
	if cfg.SiteKey == "" {
		return fmt.Errorf("site key must be set")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	backendClient := backend.NewClient(&backend.Config{
		BaseURL:    cfg.BackendURL,
		SiteKey:    cfg.SiteKey,
		RootDomain: cfg.RootDomain,
	}, logger)

	met := metrics.New()
	sessionRepo := sessionRedis.NewRepo(rc, sessionTTL)
	connRepo := connInmemory.NewRepo()
	webinarService := webinar.NewService(sessionRepo, backendClient, met, &webinar.Config{}, logger)
	ratingService := rating.NewService(backendClient, logger)
	controller := controller.NewController(ratingService, webinarService, connRepo, met, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.Mux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
