package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dashboardHandler "afi/internal/dashboard/handler"
	dashboardService "afi/internal/dashboard/service"
	"afi/internal/dataset/cache"
	"afi/internal/dataset/events"
	datasetHandler "afi/internal/dataset/handler"
	"afi/internal/dataset/ingest"
	datasetMetrics "afi/internal/dataset/metrics"
	"afi/internal/dataset/store"
	"afi/internal/platform/config"
	"afi/internal/platform/httpserver"
	"afi/internal/platform/jwt"
	"afi/internal/platform/logger"
	"afi/internal/platform/metrics"
	"afi/internal/platform/postgres"
	"afi/internal/platform/redis"
)

// main wires dependencies, exposes the HTTP router and owns the server
// lifecycle. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// recordStore is what the server needs from either store implementation.
type recordStore interface {
	ingest.Store
	dashboardService.RecordStore
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close()

	dsMetrics := datasetMetrics.New()

	notifiers := events.Fanout{events.NewCacheInvalidator(infra.cache, log)}
	if infra.publisher != nil {
		notifiers = append(notifiers, infra.publisher)
	}

	pipeline := ingest.NewPipeline(infra.store,
		ingest.WithBatchSize(cfg.Ingest.BatchSize),
		ingest.WithWindowSize(cfg.Ingest.WindowSize),
		ingest.WithLogger(log),
		ingest.WithMetrics(dsMetrics),
	)
	tracker := ingest.NewTracker(pipeline,
		ingest.WithNotifier(notifiers),
		ingest.WithTrackerLogger(log),
	)
	dashboard := dashboardService.New(infra.store,
		dashboardService.WithCache(infra.cache),
		dashboardService.WithLogger(log),
		dashboardService.WithMetrics(dsMetrics),
		dashboardService.WithMockFallback(cfg.Dashboard.MockFallback),
	)
	tokens := jwt.New(cfg.Auth.SigningKey, cfg.Auth.Issuer)

	router := newRouter(cfg, log, metrics.New(), infra.health,
		dashboardHandler.New(dashboard, log),
		datasetHandler.New(tracker, tokens, log),
	)
	srv := httpserver.New(cfg.Server, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting afi dashboard api",
			"addr", cfg.Server.Addr,
			"postgres", infra.db != nil,
			"redis", infra.redis != nil,
			"kafka", infra.publisher != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := tracker.Wait(shutdownCtx); err != nil {
		log.Warn("ingestion job still running at shutdown", "error", err)
	}
	return nil
}

// infra groups the optional backing services selected by configuration.
type infra struct {
	db        closer
	redis     *redis.Client
	store     recordStore
	cache     dashboardService.RecordCache
	publisher *events.KafkaPublisher
	health    []healthCheck
}

type closer interface{ Close() error }

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	out := &infra{}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		out.db = db
		out.store = store.NewPostgresStore(db)
		out.health = append(out.health, healthCheck{name: "postgres", check: db.PingContext})
	} else {
		log.Warn("DATABASE_URL not set, using in-memory record store")
		out.store = store.NewInMemoryStore()
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		out.close()
		return nil, err
	}
	if redisClient != nil {
		out.redis = redisClient
		out.cache = cache.NewRedisCache(redisClient.Client, cfg.Dashboard.CacheTTL)
		out.health = append(out.health, healthCheck{name: "redis", check: redisClient.Health})
	} else {
		out.cache = cache.NewMemoryCache(cfg.Dashboard.CacheTTL)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			out.close()
			return nil, err
		}
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := publisher.EnsureTopic(ensureCtx, 1, 1); err != nil {
			log.Warn("kafka topic not ensured, publishing anyway", "topic", cfg.Kafka.Topic, "error", err)
		}
		cancel()
		out.publisher = publisher
		out.health = append(out.health, healthCheck{name: "kafka", check: publisher.Ping})
	}
	return out, nil
}

func (i *infra) close() {
	if i.publisher != nil {
		i.publisher.Close()
	}
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}
