package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"markdown-viewer-service/internal/adapters/primary/http/handlers"
	"markdown-viewer-service/internal/adapters/primary/http/middleware"
	"markdown-viewer-service/internal/adapters/primary/slackevents"
	"markdown-viewer-service/internal/adapters/secondary/markdown"
	"markdown-viewer-service/internal/adapters/secondary/memory"
	"markdown-viewer-service/internal/adapters/secondary/postgres"
	"markdown-viewer-service/internal/adapters/secondary/prometheus"
	"markdown-viewer-service/internal/adapters/secondary/redis"
	slackclient "markdown-viewer-service/internal/adapters/secondary/slack"
	"markdown-viewer-service/internal/config"
	output "markdown-viewer-service/internal/core/ports/output"
	"markdown-viewer-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports - Stores)
	stores, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("open stores: %v", err)
	}
	defer stores.Close()

	var background sync.WaitGroup
	if stores.sweeper != nil {
		background.Add(1)
		go func() {
			defer background.Done()
			stores.sweeper.RunSweeper(ctx, cfg.Storage.SweepInterval)
		}()
	}

	converter, err := markdown.NewConverter(markdown.DefaultStyle)
	if err != nil {
		log.Fatalf("init markdown converter: %v", err)
	}

	slackAPI := slackclient.NewClient(slackclient.ClientConfig{
		APIURL:   cfg.Slack.APIURL,
		Timeout:  cfg.Ingest.DownloadTimeout,
		MaxBytes: cfg.Ingest.DownloadMaxBytes,
	})

	// OAuth Exchanger (Optional - based on config)
	var exchanger output.OAuthExchanger
	if cfg.Slack.OAuthEnabled() {
		exchanger = slackclient.NewOAuthExchanger(slackAPI, cfg.Slack.ClientID, cfg.Slack.ClientSecret)
		log.Info("multi-workspace install enabled")
	} else {
		log.Info("multi-workspace install disabled")
	}

	observer, err := prometheus.NewObserver("", nil)
	if err != nil {
		log.Fatalf("init metrics: %v", err)
	}

	ingestOpts := []services.IngestOption{services.WithObserver(observer)}
	if cfg.Ingest.DedupTTL > 0 {
		deduper, err := services.NewEventDeduper(services.DefaultDedupCacheSize, cfg.Ingest.DedupTTL)
		if err != nil {
			log.Fatalf("init event deduper: %v", err)
		}
		ingestOpts = append(ingestOpts, services.WithDeduper(deduper))
	}

	// Core Services (Application Layer)
	resolver := services.NewTokenResolver(stores.installations, cfg.Slack.BotToken)
	ingestSvc := services.NewIngestService(resolver, slackAPI, converter, stores.artifacts, slackAPI, cfg.Server.BaseURL, ingestOpts...)
	installSvc := services.NewInstallationService(stores.installations, exchanger, services.OAuthSettings{
		ClientID:    cfg.Slack.ClientID,
		Scopes:      cfg.Slack.Scopes,
		RedirectURL: cfg.Slack.RedirectURL,
	})
	viewerSvc := services.NewViewerService(stores.artifacts, stores.installations)

	logInstallations(ctx, installSvc)

	// Primary Adapter (Socket Mode)
	if cfg.Slack.AppToken != "" {
		var opts []slack.Option
		if cfg.Slack.APIURL != "" {
			opts = append(opts, slack.OptionAPIURL(cfg.Slack.APIURL))
		}
		listener := slackevents.NewListener(
			slackevents.NewSocketClient(cfg.Slack.AppToken, cfg.Slack.BotToken, opts...),
			ingestSvc, resolver, slackAPI, installSvc,
		)
		background.Add(1)
		go func() {
			defer background.Done()
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("slack socket mode stopped")
			}
		}()
	} else {
		log.Warn("SLACK_APP_TOKEN not set; file shared events will not be received")
	}

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(viewerSvc, installSvc, converter.Stylesheet())

	tmpl, err := handlers.Templates()
	if err != nil {
		log.Fatalf("parse templates: %v", err)
	}

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())
	router.SetHTMLTemplate(tmpl)

	h.RegisterRoutes(router.Group("/"))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		log.Infof("base url: %s", cfg.Server.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced shutdown: %v", err)
	}
	background.Wait()

	log.Info("server stopped")
}

type storeSet struct {
	artifacts     output.ArtifactStore
	installations output.InstallationStore
	sweeper       *memory.ArtifactStore
	closers       []func()
}

func (s *storeSet) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores selects backends once at startup. Redis backs both stores when
// configured; Postgres takes over installations when configured; anything
// left falls back to local storage.
func openStores(ctx context.Context, cfg *config.Config) (*storeSet, error) {
	set := &storeSet{}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		set.closers = append(set.closers, func() { _ = client.Close() })
		set.artifacts = redis.NewArtifactStore(client, time.Duration(cfg.Storage.TTLSeconds())*time.Second)
		set.installations = redis.NewInstallationStore(client)
		log.Info("redis storage enabled")
	} else {
		store := memory.NewArtifactStore(cfg.Storage.TTL)
		set.artifacts = store
		set.sweeper = store
		log.Warn("REDIS_URL not set; artifacts are kept in memory and lost on restart")
	}

	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			set.Close()
			return nil, err
		}
		set.closers = append(set.closers, pool.Close)
		set.installations = postgres.NewInstallationRepository(pool)
		log.Info("postgres installation registry enabled")
	}

	if set.installations == nil {
		store, err := memory.NewInstallationStore(cfg.Storage.DataDir)
		if err != nil {
			set.Close()
			return nil, err
		}
		set.installations = store
		log.WithField("data_dir", cfg.Storage.DataDir).Info("local installation registry enabled")
	}

	return set, nil
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("database connection established")
	return pool, nil
}

func logInstallations(ctx context.Context, installSvc *services.InstallationService) {
	installs, err := installSvc.List(ctx)
	if err != nil {
		log.WithError(err).Warn("list installations failed")
		return
	}
	log.Infof("%d workspace installation(s) loaded", len(installs))
	for _, inst := range installs {
		log.WithFields(log.Fields{
			"team_id":   inst.TenantID,
			"team_name": inst.TenantName,
		}).Debug("workspace installation")
	}
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
