// Command server runs the recircle HTTP API.
//
// With DATABASE_URL unset the service runs entirely in memory, which is how
// local development and most tests exercise it. Redis and Kafka are likewise
// optional: without them the reward catalog skips its cache and the audit
// trail is kept in memory only.
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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"recircle/internal/audit"
	"recircle/internal/collection"
	collectionmetrics "recircle/internal/collection/metrics"
	"recircle/internal/identity"
	"recircle/internal/ledger"
	ledgermetrics "recircle/internal/ledger/metrics"
	"recircle/internal/platform/config"
	"recircle/internal/platform/httpserver"
	"recircle/internal/platform/logger"
	"recircle/internal/platform/postgres"
	platformredis "recircle/internal/platform/redis"
	"recircle/internal/profile"
	"recircle/internal/residue"
	"recircle/internal/reward"
	transporthttp "recircle/internal/transport/http"
	"recircle/internal/workflow"
	"recircle/pkg/platform/tx"
)

const auditBuffer = 1024

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	// Storage. An empty DATABASE_URL selects the in-memory stores.
	var (
		db     *sql.DB
		runner tx.Runner
	)
	stores := struct {
		users       identity.Store
		profiles    profile.Store
		residues    residue.Store
		collections collection.Store
		ledger      ledger.Store
		rewards     reward.Store
		audit       audit.Sink
	}{}

	if cfg.Postgres.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		runner = tx.NewSQLRunner(db)
		stores.users = identity.NewPostgresStore(db)
		stores.profiles = profile.NewPostgresStore(db)
		stores.residues = residue.NewPostgresStore(db)
		stores.collections = collection.NewPostgresStore(db)
		stores.ledger = ledger.NewPostgresStore(db)
		stores.rewards = reward.NewPostgresStore(db)
		stores.audit = audit.NewPostgresStore(db)
		log.Info("storage ready", "backend", "postgres")
	} else {
		runner = tx.NewMemoryRunner()
		stores.users = identity.NewMemoryStore()
		stores.profiles = profile.NewMemoryStore()
		stores.residues = residue.NewMemoryStore()
		stores.collections = collection.NewMemoryStore()
		stores.ledger = ledger.NewMemoryStore()
		stores.rewards = reward.NewMemoryStore()
		stores.audit = audit.NewMemoryStore()
		log.Warn("storage ready", "backend", "memory")
	}

	// Audit trail: non-blocking publisher, worker drains to the sinks.
	publisher := audit.NewChannelPublisher(auditBuffer, log)
	sinks := []audit.Sink{stores.audit}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("audit kafka sink ready", "topic", cfg.Kafka.Topic)
	}
	worker := audit.NewWorker(publisher.Events(), log, sinks...)

	// Reward catalog cache, optional.
	var cache *reward.CatalogCache
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = reward.NewCatalogCache(redisClient.Client, cfg.Redis.CacheTTL, log)
		log.Info("reward catalog cache ready")
	}

	// Services.
	engine := collection.NewEngine(runner, stores.collections, stores.residues,
		collectionmetrics.New(), publisher, log)
	ledgerService := ledger.NewService(runner, stores.profiles, stores.ledger,
		ledgermetrics.New(), publisher, log)
	workflowService := workflow.NewService(runner, stores.residues, stores.collections,
		engine, ledgerService, ledger.PolicyFromConfig(cfg.Points), publisher, log)
	rewardService := reward.NewService(runner, stores.rewards, cache, ledgerService, publisher, log)
	identityService := identity.NewService(runner, stores.users, stores.profiles, publisher,
		[]byte(cfg.Auth.JWTSigningKey), cfg.Auth.TokenTTL, log)

	router := transporthttp.New(transporthttp.Handlers{
		Identity:   identity.NewHandler(identityService, log),
		Workflow:   workflow.NewHandler(workflowService, log),
		Collection: collection.NewHandler(engine, workflowService, log),
		Ledger:     ledger.NewHandler(ledgerService, log),
		Reward:     reward.NewHandler(rewardService, log),
	}, []byte(cfg.Auth.JWTSigningKey), log)

	srv := httpserver.New(cfg.Server.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
