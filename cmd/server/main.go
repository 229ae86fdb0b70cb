// Command server runs the procurement authorization service: the provider
// registry, clearance and exclusion administration, and reference lookups
// behind one HTTP listener.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	clearancehandler "procura/internal/clearance/handler"
	clearanceservice "procura/internal/clearance/service"
	clearancestore "procura/internal/clearance/store"
	exclusionhandler "procura/internal/exclusion/handler"
	exclusionservice "procura/internal/exclusion/service"
	exclusionstore "procura/internal/exclusion/store"
	"procura/internal/platform/config"
	"procura/internal/platform/httpserver"
	"procura/internal/platform/kafka"
	"procura/internal/platform/logger"
	"procura/internal/platform/metrics"
	platformredis "procura/internal/platform/redis"
	"procura/internal/platform/scopelock"
	providerhandler "procura/internal/provider/handler"
	providerservice "procura/internal/provider/service"
	providerstore "procura/internal/provider/store"
	"procura/internal/reference"
	referencehandler "procura/internal/reference/handler"
	transport "procura/internal/transport/http"
	auditmem "procura/pkg/platform/audit/store/memory"
	"procura/pkg/platform/audit/publisher"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: postgres when configured, in-memory otherwise. The in-memory
	// fallback keeps local development free of external dependencies.
	var db *sql.DB
	var (
		providerSt  providerstore.Store  = providerstore.NewInMemoryStore()
		clearanceSt clearancestore.Store = clearancestore.NewInMemoryStore()
		exclusionSt exclusionstore.Store = exclusionstore.NewInMemoryStore()
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		providerSt = providerstore.NewPostgres(db)
		clearanceSt = clearancestore.NewPostgres(db)
		exclusionSt = exclusionstore.NewPostgres(db)
		log.Info("postgres connected")
	} else {
		log.Warn("no postgres configured, using in-memory stores")
	}

	// Scope locks: redis lease when available, keyed mutex otherwise. The
	// lock is the only thing serializing overlap checks against writes, and
	// the keyed mutex covers a single process; run redis whenever more than
	// one instance serves writes.
	var locks scopelock.Locker = scopelock.NewMemoryLocker()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		locks = scopelock.NewRedisLocker(redisClient.Client, cfg.ScopeLockTTL)
		log.Info("redis connected, scope locks are distributed")
	}

	// Audit pipeline: store write is synchronous, kafka delivery is buffered.
	producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		return err
	}
	auditOpts := []publisher.Option{publisher.WithLogger(log)}
	if producer != nil {
		defer producer.Close()
		auditOpts = append(auditOpts, publisher.WithSink(producer), publisher.WithAsyncBuffer(256))
		log.Info("kafka connected", "topic", cfg.AuditTopic)
	}
	auditPub := publisher.NewPublisher(auditmem.NewInMemoryStore(), auditOpts...)
	defer auditPub.Close()

	providerSvc, err := providerservice.New(providerSt,
		providerservice.WithAudit(auditPub),
		providerservice.WithMetrics(m),
		providerservice.WithLogger(log),
	)
	if err != nil {
		return err
	}
	clearanceSvc, err := clearanceservice.New(clearanceSt, providerSvc, locks,
		clearanceservice.WithAudit(auditPub),
		clearanceservice.WithMetrics(m),
		clearanceservice.WithLogger(log),
	)
	if err != nil {
		return err
	}
	exclusionSvc, err := exclusionservice.New(exclusionSt, providerSvc, locks,
		exclusionservice.WithAudit(auditPub),
		exclusionservice.WithMetrics(m),
		exclusionservice.WithLogger(log),
	)
	if err != nil {
		return err
	}
	referenceSvc := reference.NewService(reference.WithMetrics(m))

	router := transport.NewRouter(transport.Handlers{
		Provider:  providerhandler.New(providerSvc, log),
		Clearance: clearancehandler.New(clearanceSvc, log),
		Exclusion: exclusionhandler.New(exclusionSvc, log),
		Reference: referencehandler.New(referenceSvc),
	}, log, transport.Options{
		AdminJWTKey: cfg.AdminJWTKey,
		Metrics:     m,
		Health: func() error {
			if db != nil {
				if err := db.Ping(); err != nil {
					return err
				}
			}
			if redisClient != nil {
				if err := redisClient.Health(context.Background()); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
