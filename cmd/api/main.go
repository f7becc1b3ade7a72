package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"surveypulse/api/internal/app"
	"surveypulse/api/internal/catalog"
	"surveypulse/api/internal/config"
	"surveypulse/api/internal/ingest"
	"surveypulse/api/internal/search"
	"surveypulse/api/internal/store"
	"surveypulse/api/internal/upstream"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var cacheStore app.Store
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		log.Printf("Using PostgreSQL for the durable cache")
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()
		if err := store.ApplyMigrations(ctx, db); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		cacheStore = store.NewPostgresStore(db)
	case strings.TrimSpace(cfg.RedisURL) != "":
		log.Printf("Using Redis for the durable cache")
		redisStore, err := store.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer redisStore.Close()
		cacheStore = redisStore
	default:
		log.Printf("No cache store configured, running in fetch-always mode")
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	searchService := search.NewService(meiliClient)

	client := upstream.NewClient(cfg.SurveyBaseURL, cfg.SurveyAPIKey)
	catalogs := catalog.NewBuilder(client, cfg.CatalogTTL, nil)

	var bundleStore ingest.BundleStore
	if cacheStore != nil {
		bundleStore = cacheStore
	}
	syncer := ingest.NewSyncer(client, catalogs, bundleStore, cfg.CollectorID)

	if !cfg.HasUpstreamCredentials() {
		log.Printf("WARNING: missing survey API credentials, serving mock data")
	}

	service := app.New(cfg, syncer, cacheStore, searchService)

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("SurveyPulse API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
