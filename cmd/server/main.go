package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nid-gateway/internal/allowlist"
	"nid-gateway/internal/assets"
	"nid-gateway/internal/audit"
	auditmetrics "nid-gateway/internal/audit/metrics"
	auditmemory "nid-gateway/internal/audit/store/memory"
	auditpostgres "nid-gateway/internal/audit/store/postgres"
	"nid-gateway/internal/audit/stream"
	httpapi "nid-gateway/internal/http"
	"nid-gateway/internal/platform/config"
	"nid-gateway/internal/platform/database"
	"nid-gateway/internal/platform/httpserver"
	"nid-gateway/internal/platform/logger"
	platformredis "nid-gateway/internal/platform/redis"
	"nid-gateway/internal/registry"
	registrymetrics "nid-gateway/internal/registry/metrics"
	"nid-gateway/internal/verification"
	verificationhandler "nid-gateway/internal/verification/handler"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	log.Info("starting nid-gateway", "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage. Without a DATABASE_URL the gateway runs on in-memory stores,
	// which is only suitable for local development.
	var auditStore audit.Store
	var allowlistStore allowlist.Store
	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.Migrate(ctx, db, "migrations", log); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}

		auditStore = auditpostgres.New(db)
		allowlistStore = allowlist.NewPostgresStore(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		auditStore = auditmemory.New()
		allowlistStore = allowlist.NewMemoryStore()
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		allowlistStore = allowlist.NewCachedStore(allowlistStore, redisClient.Client, cfg.AllowlistTTL(), log)
	}

	allowlistService, err := allowlist.NewService(allowlistStore)
	if err != nil {
		log.Error("allowlist service init failed", "error", err)
		os.Exit(1)
	}

	// Audit sink, optionally mirrored to Kafka.
	sinkOpts := []audit.SinkOption{
		audit.WithMetrics(auditmetrics.New()),
		audit.WithWorkers(cfg.AuditWorkers),
	}
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		publisher, err := stream.New(ctx, brokers, cfg.KafkaAuditTopic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		sinkOpts = append(sinkOpts, audit.WithStreamer(publisher))
	}
	sink := audit.NewSink(auditStore, log, cfg.AuditBuffer, sinkOpts...)

	sinkDone := make(chan struct{})
	go func() {
		defer close(sinkDone)
		if err := sink.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit sink stopped", "error", err)
		}
	}()

	// Outbound registry client.
	inliner := assets.New(cfg.AssetFetchTimeout())
	registryClient := registry.New(
		cfg.RegistryBaseURL,
		cfg.RegistryUsername,
		cfg.RegistryPassword,
		cfg.RegistryCallTimeout(),
		log,
		registry.WithInliner(inliner),
		registry.WithMetrics(registrymetrics.New()),
		registry.WithTokenTTL(cfg.TokenTTL()),
	)

	verificationService, err := verification.New(registryClient, sink, log)
	if err != nil {
		log.Error("verification service init failed", "error", err)
		os.Exit(1)
	}

	handler := verificationhandler.New(verificationService, auditStore, log)
	router := httpapi.NewRouter(handler, allowlistService, log)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// The sink drains its buffer once ctx is cancelled; give it a moment.
	select {
	case <-sinkDone:
	case <-time.After(5 * time.Second):
		log.Warn("audit sink drain timed out")
	}

	log.Info("stopped")
}
