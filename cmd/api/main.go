package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	appfiscal "github.com/openretail/pos-backend/internal/application/fiscal"
	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/application/numbering"
	"github.com/openretail/pos-backend/internal/application/outbox"
	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/application/settings"
	infrafiscal "github.com/openretail/pos-backend/internal/infrastructure/fiscal"
	"github.com/openretail/pos-backend/internal/infrastructure/postgres"
	"github.com/openretail/pos-backend/internal/infrastructure/printer"
	"github.com/openretail/pos-backend/internal/infrastructure/rediscache"
	httpRouter "github.com/openretail/pos-backend/internal/interfaces/http"
	"github.com/openretail/pos-backend/pkg/config"
	"github.com/openretail/pos-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	// Pool-bound repositories (outside transactions).
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	fiscalRepo := postgres.NewFiscalRecordRepository(pool)
	counterRepo := postgres.NewCounterRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Worker.TxTimeout)

	// Settings: shared Redis cache when configured, otherwise process-local only.
	var settingsCache settings.Cache = rediscache.Noop{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		settingsCache = rediscache.NewSettingsCache(rdb)
	}
	settingsProvider := settings.NewStoreProvider(settingsRepo, settingsCache, 5*time.Minute)
	if _, err := settingsProvider.Reload(ctx); err != nil {
		log.Fatal().Err(err).Msg("load settings")
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, movementRepo, productRepo)
	issuer := numbering.NewIssuer(counterRepo, settingsProvider)

	authorityClient := infrafiscal.NewHTTPClient(cfg.Worker.FiscalHTTPTimeout)
	payloadSigner := infrafiscal.NewCertSigner()
	fiscalUC := appfiscal.NewSubmissionUseCase(
		fiscalRepo, saleRepo, settingsProvider, authorityClient, payloadSigner, log,
	)

	dispatcher := outbox.NewDispatcher(
		outboxRepo,
		fiscalUC,
		printer.NewLogPrinter(log),
		log,
		cfg.Worker.OutboxPollInterval,
		5,
	)

	postSaleUC := sales.NewPostSaleUseCase(
		txRunner, ledgerUC, issuer, settingsProvider,
		saleRepo, customerRepo, userRepo, dispatcher, log,
	)
	refundSaleUC := sales.NewRefundSaleUseCase(txRunner, ledgerUC, saleRepo, log)
	saleQueryUC := sales.NewQueryUseCase(saleRepo, customerRepo, userRepo)

	// Background workers.
	go dispatcher.Run(ctx)
	go fiscalUC.RunRetryLoop(ctx, cfg.Worker.FiscalRetryInterval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		PostSale:   postSaleUC,
		RefundSale: refundSaleUC,
		SaleQuery:  saleQueryUC,
		Ledger:     ledgerUC,
		Fiscal:     fiscalUC,
		Settings:   settingsProvider,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")
	cancel() // stop workers

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
