package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	billingapp "github.com/webconf/checkout/internal/application/billing"
	catalogapp "github.com/webconf/checkout/internal/application/catalog"
	identityapp "github.com/webconf/checkout/internal/application/identity"
	orderingapp "github.com/webconf/checkout/internal/application/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/infrastructure/afip"
	"github.com/webconf/checkout/internal/infrastructure/auth"
	"github.com/webconf/checkout/internal/infrastructure/cache"
	"github.com/webconf/checkout/internal/infrastructure/config"
	"github.com/webconf/checkout/internal/infrastructure/email"
	"github.com/webconf/checkout/internal/infrastructure/event"
	"github.com/webconf/checkout/internal/infrastructure/logger"
	"github.com/webconf/checkout/internal/infrastructure/payment"
	"github.com/webconf/checkout/internal/infrastructure/persistence"
	"github.com/webconf/checkout/internal/infrastructure/printing"
	"github.com/webconf/checkout/internal/infrastructure/scheduler"
	"github.com/webconf/checkout/internal/infrastructure/storage"
	"github.com/webconf/checkout/internal/interfaces/http/handler"
	"github.com/webconf/checkout/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting checkout backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected")

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	codeRepo := persistence.NewGormDiscountCodeRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	cancellationRepo := persistence.NewGormCancellationRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	refundRepo := persistence.NewGormRefundRepository(db.DB)

	// Webhook dedup ledger, redis-backed when configured
	var dedup shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		dedup = redisStore
	} else {
		dedup = cache.NewInMemoryIdempotencyStore()
		log.Warn("Redis disabled, webhook dedup is process-local")
	}

	// Payment provider
	gateway, err := payment.NewMercadoPagoAdapter(cfg.MercadoPago, log)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Tax authority client and its credential cache
	taxAuthority, err := afip.NewClient(cfg.AFIP, log)
	if err != nil {
		log.Fatal("Failed to initialize tax authority client", zap.Error(err))
	}
	credentials := afip.NewCredentialCache(taxAuthority)
	issuer, err := billingapp.NewIssuerConfig(cfg.AFIP)
	if err != nil {
		log.Fatal("Invalid invoicing configuration", zap.Error(err))
	}

	// Document rendering and storage
	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to load document templates", zap.Error(err))
	}
	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Printing.RenderTimeout,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer renderer.Close()

	var store storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		s3Store, err := storage.NewS3ObjectStorage(&cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		store = s3Store
	} else {
		store = storage.NewMemoryObjectStorage()
		log.Warn("Object storage not configured, documents are kept in memory")
	}

	var mailer email.Mailer
	if cfg.SMTP.Host != "" {
		smtpMailer, err := email.NewSMTPMailer(cfg.SMTP, log)
		if err != nil {
			log.Fatal("Failed to initialize mailer", zap.Error(err))
		}
		mailer = smtpMailer
	} else {
		mailer = email.NewRecordingMailer()
		log.Warn("SMTP not configured, outbound email is discarded")
	}

	// Event bus
	bus := event.NewInMemoryEventBus(log)

	// Application services
	tokenService := auth.NewCustomerTokenService(cfg.JWT)
	itemService := catalogapp.NewItemService(itemRepo)
	codeService := catalogapp.NewDiscountCodeService(codeRepo)
	customerService := identityapp.NewCustomerService(customerRepo, tokenService, log)

	orderService := orderingapp.NewOrderService(orderRepo, paymentRepo, itemRepo, codeRepo, gateway, orderingapp.PreferenceURLs{
		Success:      cfg.MercadoPago.SuccessURL,
		Failure:      cfg.MercadoPago.FailureURL,
		Pending:      cfg.MercadoPago.PendingURL,
		Notification: cfg.MercadoPago.NotificationURL,
	}, log)
	orderService.SetEventPublisher(bus)

	ipnService := orderingapp.NewIPNService(orderRepo, paymentRepo, gateway, dedup, shared.DefaultIdempotencyConfig(), log)
	ipnService.SetEventPublisher(bus)

	invoiceService := billingapp.NewInvoiceService(invoiceRepo, orderRepo, customerRepo,
		taxAuthority, credentials, templates, renderer, store, mailer, issuer, log)
	cancellationService := billingapp.NewCancellationService(orderRepo, cancellationRepo, refundRepo,
		creditNoteRepo, invoiceRepo, gateway, taxAuthority, credentials, templates, renderer, store, issuer, log)
	cancellationService.SetEventPublisher(bus)
	passEmails := billingapp.NewPassEmailHandler(orderRepo, itemRepo, mailer, log)

	// Invoicing and attendee emails follow payment confirmations
	bus.Subscribe(invoiceService)
	bus.Subscribe(passEmails)
	if err := bus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Invoices whose PDF or email failed are picked up again in the
	// background, without a new CAE request
	retrier := scheduler.NewDocumentRetryScheduler(invoiceRepo, invoiceService, scheduler.DefaultDocumentRetryConfig(), log)
	retrier.Start(context.Background())
	defer retrier.Stop()

	// HTTP interface
	handlers := router.Handlers{
		Catalog:  handler.NewCatalogHandler(itemService, codeService, log),
		Customer: handler.NewCustomerHandler(customerService, log),
		Order:    handler.NewOrderHandler(orderService, cancellationService, log),
		IPN:      handler.NewIPNHandler(ipnService, log),
		Health:   handler.NewHealthHandler(db),
	}
	engine := router.New(cfg, handlers, customerService, log)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	if err := bus.Stop(ctx); err != nil {
		log.Error("Event bus stop failed", zap.Error(err))
	}
	log.Info("Stopped")
}
