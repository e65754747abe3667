package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/walletledger/internal/adapter/http"
	"github.com/iho/walletledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/walletledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/walletledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletledger/internal/adapter/repository/redis"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/eventpublisher"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
	"github.com/iho/walletledger/internal/infrastructure/redis"
	"github.com/iho/walletledger/internal/infrastructure/settlement"
	"github.com/iho/walletledger/internal/usecase"
)

// limiterIdle is how long a client's token bucket survives without traffic.
const limiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	checks := []handler.HealthCheck{{Name: "postgres", Check: pool.Ping}}

	var redisClient *goredis.Client
	if cfg.CacheEnabled() {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		checks = append(checks, handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	} else {
		log.Warn().Msg("REDIS_URL is empty, caching disabled")
	}
	cache := buildCache(redisClient, cfg.RedisPrefix)

	txManager := postgresRepo.NewTxManager(pool, cfg.DatabaseLockTimeout)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	statsRepo := postgresRepo.NewStatsRepository(pool)
	outboxRepo := buildOutbox(cfg, pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log, m)
	gateway := settlement.NewSimulatedGateway(cfg.SettlementSuccessRate, settlementSeed(cfg.SettlementSeed), log)

	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, transactionRepo,
		postgresRepo.NewTransferRequestRepository(), postgresRepo.NewWithdrawalRepository(),
		outboxRepo, gateway, cache, idGen, retrier, log, m)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, transactionRepo, outboxRepo, cache, idGen,
		usecase.AccountConfig{
			BalanceTTL: cfg.BalanceCacheTTL,
			HistoryTTL: cfg.HistoryCacheTTL,
			PageSize:   cfg.HistoryPageSize,
		}, log, m)
	adminUC := usecase.NewAdminUseCase(statsRepo, transactionRepo, cache, cfg.StatsCacheTTL, log, m)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled() {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("JWT_SECRET is empty, trusting identity headers")
	}

	var limiter *apimiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		go sweepLimiters(ctx, limiter, log)
	}

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  buildPublisher(redisClient, cfg.OutboxChannel, log),
			Logger:     log,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
		go func() {
			if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:  handler.NewLedgerHandler(ledgerUC),
		AccountHandler: handler.NewAccountHandler(accountUC),
		AdminHandler:   handler.NewAdminHandler(adminUC, accountUC),
		HealthHandler:  handler.NewHealthHandler(checks...),
		Logger:         log,
		JWTManager:     jwtManager,
		RateLimiter:    limiter,
		Metrics:        m,
		MetricsHandler: promhttp.Handler(),
	})

	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// settlementSeed keeps outcomes reproducible for a configured seed and
// varies them across restarts otherwise.
func settlementSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func listenAddr(port string) string {
	return ":" + port
}

func buildCache(client *goredis.Client, prefix string) usecase.Cache {
	if client == nil {
		return redisRepo.NewNoopCache()
	}
	return redisRepo.NewCache(client, prefix)
}

func buildOutbox(cfg *config.Config, pool *pgxpool.Pool) usecase.OutboxRepository {
	if !cfg.OutboxEnabled {
		return postgresRepo.NewNullOutboxRepository()
	}
	return postgresRepo.NewOutboxRepository(pool)
}

func buildPublisher(client *goredis.Client, channel string, log zerolog.Logger) eventpublisher.Publisher {
	if client == nil {
		return eventpublisher.NewLogPublisher(log)
	}
	return eventpublisher.NewRedisPublisher(client, channel)
}

func sweepLimiters(ctx context.Context, limiter *apimiddleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.CleanupLimiters(limiterIdle); n > 0 {
				log.Debug().Int("removed", n).Msg("evicted idle rate limiters")
			}
		}
	}
}
