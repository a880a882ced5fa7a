// Command server runs the commerce HTTP API.
//
// @title                       Commerce API
// @version                     1.0
// @description                 Checkout, invoicing, billing and account management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
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

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/storefront/commerce-api/docs"
	"github.com/storefront/commerce-api/internal/api"
	"github.com/storefront/commerce-api/internal/api/handler"
	"github.com/storefront/commerce-api/internal/core/ports"
	"github.com/storefront/commerce-api/internal/core/service"
	"github.com/storefront/commerce-api/internal/infrastructure/config"
	mongodb "github.com/storefront/commerce-api/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/commerce-api/internal/infrastructure/db/redis"
	"github.com/storefront/commerce-api/internal/infrastructure/mail"
	"github.com/storefront/commerce-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "commerce-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "commerce-api",
	})

	// Amounts leave the API as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(closeCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect error")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close error")
		}
	}()

	accounts := mongodb.NewAccountRepository(db)
	orders := mongodb.NewOrderRepository(db)
	invoices := mongodb.NewInvoiceRepository(db)
	bills := mongodb.NewBillRepository(db)
	if err := ensureIndexes(ctx, accounts, orders, invoices, bills); err != nil {
		return err
	}

	numbering, err := service.NewNumberingService(counterFor(cfg, db, rdb))
	if err != nil {
		return err
	}
	tx := mongodb.NewTransactor(mongoClient)
	lifecycle := service.NewLifecycle(service.LifecycleDeps{
		Orders:   orders,
		Invoices: invoices,
		Bills:    bills,
		Tx:       tx,
		Logger:   logger.Component("lifecycle"),
	})

	authService := service.NewAuthService(service.AuthServiceDeps{
		Accounts:   accounts,
		Mailer:     mail.NewLogMailer(logger.Component("mailer")),
		JWTSecret:  cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger.Component("auth"),
	})
	orderService := service.NewOrderService(service.OrderServiceDeps{
		Orders:         orders,
		Invoices:       invoices,
		Catalog:        mongodb.NewCatalogReader(db),
		Numbering:      numbering,
		Lifecycle:      lifecycle,
		Tx:             tx,
		Idempotency:    redisdb.NewIdempotencyStore(rdb, cfg.Commerce.IdempotencyTTL),
		InvoiceDueDays: cfg.Commerce.InvoiceDueDays,
		Logger:         logger.Component("orders"),
	})
	invoiceService := service.NewInvoiceService(service.InvoiceServiceDeps{
		Invoices:  invoices,
		Numbering: numbering,
		Lifecycle: lifecycle,
		Logger:    logger.Component("invoices"),
	})
	billService := service.NewBillService(service.BillServiceDeps{
		Bills:     bills,
		Orders:    orders,
		Numbering: numbering,
		Lifecycle: lifecycle,
		Logger:    logger.Component("bills"),
	})

	if cfg.Bootstrap.AdminEmail != "" {
		admin, err := authService.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Info().Str("account_id", admin.ID).Msg("admin account ready")
	}

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Orders:   orderService,
		Invoices: invoiceService,
		Bills:    billService,
		Health: map[string]handler.Pinger{
			"mongo": handler.PingFunc(mongodb.Ping(mongoClient)),
			"redis": handler.PingFunc(redisdb.Ping(rdb)),
		},
		Logger: logger.Component("http"),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("commerce api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	return nil
}

func counterFor(cfg *config.Config, db *mongo.Database, rdb *redis.Client) ports.Counter {
	if cfg.Commerce.NumberingBackend == config.NumberingRedis {
		return redisdb.NewCounter(rdb)
	}
	return mongodb.NewCounterRepository(db)
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, repos ...indexer) error {
	for _, r := range repos {
		if err := r.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}
