package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/interop-settlement/src/internal/adapter/http/controller"
	"github.com/api-sage/interop-settlement/src/internal/adapter/http/middleware"
	"github.com/api-sage/interop-settlement/src/internal/adapter/http/router"
	"github.com/api-sage/interop-settlement/src/internal/adapter/lock"
	"github.com/api-sage/interop-settlement/src/internal/adapter/repository/implementations"
	"github.com/api-sage/interop-settlement/src/internal/adapter/repository/memory"
	"github.com/api-sage/interop-settlement/src/internal/config"
	"github.com/api-sage/interop-settlement/src/internal/domain"
	"github.com/api-sage/interop-settlement/src/internal/logger"
	"github.com/api-sage/interop-settlement/src/internal/usecase/services"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type storage struct {
	ledger      domain.LedgerRepository
	identifiers domain.IdentifierRepository
	notes       domain.NoteRepository
	currencies  domain.CurrencyRepository
	close       func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Configure(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("server stopped", err, nil)
		os.Exit(1)
	}
	logger.Info("server stopped", nil)
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.close() }()

	if err := seedAccounts(ctx, store.ledger, cfg.SeedAccounts); err != nil {
		return err
	}

	var rdb redis.UniversalClient
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
	}

	locker, err := newLocker(cfg, rdb)
	if err != nil {
		return err
	}

	validator := services.NewTransferValidator(store.ledger, store.identifiers, store.currencies)
	transfers := services.NewTransferService(store.ledger, store.notes, validator, locker, cfg.RoutingCode)
	identifiers := services.NewIdentifierService(store.identifiers, store.ledger)
	charges, err := services.NewChargesService(cfg.QuoteFeePercent)
	if err != nil {
		return err
	}
	monitor, err := services.NewHoldMonitor(store.ledger, cfg.HoldMonitorSchedule, cfg.HoldMonitorMaxAge)
	if err != nil {
		return err
	}

	middlewares := []mux.MiddlewareFunc{authMiddleware(cfg)}
	if rdb != nil {
		middlewares = append(middlewares, middleware.Idempotency(rdb))
	}

	handler := router.New([]router.RouteRegistrar{
		controller.NewTransferController(transfers),
		controller.NewQuoteController(services.NewQuoteService(validator, charges)),
		controller.NewTransactionRequestController(services.NewTransactionRequestService(validator)),
		controller.NewAccountController(services.NewAccountService(store.ledger), identifiers),
		controller.NewPartyController(identifiers),
	}, middlewares...)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", logger.Fields{
			"addr":    cfg.HTTPAddr,
			"storage": cfg.Storage,
			"lock":    cfg.LockBackend,
			"auth":    cfg.AuthMode,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if cfg.Storage != "postgres" {
		return storage{
			ledger:      memory.NewLedgerRepository(),
			identifiers: memory.NewIdentifierRepository(),
			notes:       memory.NewNoteRepository(),
			currencies:  memory.NewCurrencyRepository(),
			close:       func() error { return nil },
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := implementations.Open(connectCtx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return storage{}, err
	}
	if _, err := implementations.RunMigrations(connectCtx, db, cfg.MigrationsDir); err != nil {
		_ = db.Close()
		return storage{}, err
	}

	return storage{
		ledger:      implementations.NewLedgerRepository(db),
		identifiers: implementations.NewIdentifierRepository(db),
		notes:       implementations.NewNoteRepository(db),
		currencies:  implementations.NewCurrencyRepository(db),
		close:       db.Close,
	}, nil
}

// seedAccounts creates the configured accounts that do not exist yet.
func seedAccounts(ctx context.Context, accounts domain.AccountRepository, seeds []config.AccountSeed) error {
	for _, seed := range seeds {
		_, err := accounts.GetByExternalID(ctx, seed.ExternalID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}

		if _, err := accounts.Create(ctx, domain.Account{
			ExternalID:       seed.ExternalID,
			Currency:         seed.Currency,
			AvailableBalance: seed.Balance,
			Status:           domain.AccountStatusActive,
		}); err != nil {
			return err
		}
		logger.Info("seeded account", logger.Fields{"accountId": seed.ExternalID, "currency": seed.Currency})
	}
	return nil
}

func newLocker(cfg config.Config, rdb redis.UniversalClient) (services.AccountLocker, error) {
	if cfg.LockBackend == "redis" {
		redisLock, err := lock.NewRedis(rdb, lock.DefaultRedisOptions())
		if err != nil {
			return nil, err
		}
		return lock.NewBreaker("redis-lock", redisLock, lock.DefaultBreakerOptions()), nil
	}
	return lock.NewLocal(), nil
}

func authMiddleware(cfg config.Config) mux.MiddlewareFunc {
	if cfg.AuthMode == "jwt" {
		return middleware.BearerAuth([]byte(cfg.JWTSecret))
	}
	return middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKeyHash)
}
