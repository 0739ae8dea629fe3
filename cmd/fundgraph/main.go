package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"FundGraph/internal/chain"
	"FundGraph/internal/config"
	"FundGraph/internal/core"
	"FundGraph/internal/ingestion"
	"FundGraph/internal/observability"
	"FundGraph/internal/repository"
	"FundGraph/internal/store"
)

func main() {
	log := observability.NewLogger("main")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if len(cfg.Funds) == 0 {
		log.Fatal().Msg("no tracked funds configured (set FUNDGRAPH_FUNDS)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// --- Postgres ---
	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres open")
	}
	defer db.Close()

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping")
	}

	pg := store.NewPostgresStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}
	log.Info().Msg("postgres connected")

	// --- Optional Redis read cache ---
	var entityStore store.Store = pg
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis ping")
		}
		defer rdb.Close()
		entityStore = store.NewCachedStore(pg, rdb, cfg.CacheTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache enabled")
	}

	// --- Observability ---
	metrics := observability.NewMetrics()

	// --- Chain gateway + repository ---
	gateway := chain.NewRPCGateway(cfg.RPCURL, cfg.RPCTimeout)
	repo := repository.New(entityStore, gateway, cfg.Strategies, observability.NewLogger("repository"))

	// --- Idempotency: LRU warmed from the durable tier ---
	dedup := core.NewIdempotencyChecker(cfg.DedupCapacity, pg)
	if keys, err := pg.RecentKeys(ctx, cfg.DedupCapacity); err != nil {
		log.Warn().Err(err).Msg("warm dedup lru failed, cold start")
	} else if len(keys) > 0 {
		dedup.Warm(keys)
		log.Info().Int("keys", len(keys)).Msg("dedup lru warmed")
	}

	// --- Core ---
	reconciler := core.NewReconciler(repo, dedup, pg, metrics, observability.NewLogger("reconciler"))
	sampler := core.NewSampler(repo, gateway, cfg.Funds, cfg.IsUSDCollateral, metrics, observability.NewLogger("sampler"))

	// --- NATS ---
	natsLog := observability.NewLogger("nats")
	nc, js, err := ingestion.ConnectNATS(cfg.NATSURL, natsLog)
	if err != nil {
		log.Fatal().Err(err).Msg("nats connect")
	}
	defer nc.Close()

	if err := ingestion.EnsureStreams(ctx, js, natsLog); err != nil {
		log.Fatal().Err(err).Msg("ensure nats streams")
	}
	if err := ingestion.EnsureUpdateStream(ctx, js, natsLog); err != nil {
		log.Fatal().Err(err).Msg("ensure update stream")
	}

	rawEventChan := make(chan ingestion.RawEvent, 4096)
	subscriber := ingestion.NewNATSSubscriber(js, rawEventChan, natsLog)
	if err := subscriber.Subscribe(ctx, ingestion.DefaultSubjects()); err != nil {
		log.Fatal().Err(err).Msg("nats subscribe")
	}

	updateChan := make(chan ingestion.EntityUpdate, 4096)
	publisher := ingestion.NewUpdatePublisher(js, updateChan, observability.NewLogger("publisher"))

	runner := ingestion.NewRunner(rawEventChan, reconciler, sampler, updateChan, observability.NewLogger("runner"))

	errChan := make(chan error, 4)

	go func() {
		errChan <- runner.Run(ctx)
	}()

	go func() {
		errChan <- publisher.Run(ctx)
	}()

	// --- Prometheus metrics server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			server.Shutdown(shutCtx)
		}()
		log.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	log.Info().
		Int("funds", len(cfg.Funds)).
		Str("nats", cfg.NATSURL).
		Str("rpc", cfg.RPCURL).
		Msg("fundgraph ready")

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("worker failed, shutting down")
		}
	}

	cancel()
	subscriber.Stop()
	close(updateChan)

	log.Info().Msg("fundgraph shutdown complete")
}
