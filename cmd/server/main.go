package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jmoreau/aeos-dashboard/internal/analytics"
	"github.com/jmoreau/aeos-dashboard/internal/api"
	"github.com/jmoreau/aeos-dashboard/internal/config"
	"github.com/jmoreau/aeos-dashboard/internal/poller"
	"github.com/jmoreau/aeos-dashboard/internal/source"
	ws "github.com/jmoreau/aeos-dashboard/internal/websocket"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event source: SOAP web service or SQL view, one interface.
	var (
		src  source.Source
		pool *pgxpool.Pool
	)
	switch cfg.SourceBackend {
	case config.BackendSQL:
		sqlSrc, err := source.NewSQL(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer sqlSrc.Close()
		src = sqlSrc
		pool = sqlSrc.Pool()
		logger.Info("using SQL view event source")
	default:
		src = source.NewSOAP(source.SOAPConfig{
			EndpointURL: cfg.AEOSEndpointURL,
			Username:    cfg.AEOSUsername,
			Password:    cfg.AEOSPassword,
		}, logger)
		logger.Info("using AEOS SOAP event source", "endpoint", cfg.AEOSEndpointURL)

		// The SOAP deployment can still point analytics at the view.
		if cfg.DatabaseURL != "" {
			pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				logger.Error("failed to connect to analytics database", "error", err)
				os.Exit(1)
			}
			defer pool.Close()
		}
	}

	// Watermark: persisted to Redis when configured, otherwise the
	// feed restarts from "now" and downtime events are skipped.
	watermark := poller.NewWatermark(time.Now().UTC())
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		watermark = poller.NewPersistentWatermark(ctx, redisClient, time.Now().UTC(), logger)
	}

	hub := ws.NewHub(logger)
	go hub.Run()

	p := poller.New(src, watermark, hub, logger, cfg.PollInterval, cfg.FetchLimit)
	go p.Run(ctx)

	var analyticsSvc *analytics.Service
	if pool != nil {
		analyticsSvc = analytics.NewService(pool)
	}

	router := api.NewRouter(src, hub, analyticsSvc, pool, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel() // stops the poller loop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
