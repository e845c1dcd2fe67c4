package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/internal/domain/cae"
	infraafip "github.com/jhoicas/factura-afip/internal/infrastructure/afip"
	"github.com/jhoicas/factura-afip/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/factura-afip/internal/infrastructure/pdf"
	"github.com/jhoicas/factura-afip/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/factura-afip/internal/interfaces/http"
	"github.com/jhoicas/factura-afip/pkg/config"
	"github.com/jhoicas/factura-afip/pkg/logger"
)

// @title                       Factura AFIP API
// @version                     1.0
// @description                 Solicitud de CAE a AFIP (WSFEv1 / WSFEXv1) para órdenes del ERP sin factura.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("afip_env", cfg.AFIP.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	// Réplica del ERP: sólo lectura; si apunta a la misma base se reutiliza el pool.
	erpPool := pool
	if cfg.ERPDB.ConnectionString() != cfg.DB.ConnectionString() {
		var perr error
		erpPool, perr = postgres.NewPool(ctx, cfg.ERPDB)
		if perr != nil {
			log.Fatal().Err(perr).Msg("conexión a la base del ERP")
		}
		defer erpPool.Close()
	}

	tables, err := loadCodeTables(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("tablas de códigos AFIP")
	}

	clients, err := infraafip.NewClients(cfg.AFIP, log)
	if err != nil {
		log.Fatal().Err(err).Msg("clientes AFIP")
	}

	orderRepo := postgres.NewOrderRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	logRepo := postgres.NewAuthorizationLogRepository(pool)
	erpRepo := postgres.NewERPRepository(erpPool)

	// PDF: representación gráfica del comprobante autorizado
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.Reports.Dir, cfg.Reports.CompanyName, cfg.AFIP.CUIT, log)
	notifier := notify.NewSMTPNotifier(cfg.SMTP, cfg.App.Name, log)

	requestCAEUC := billing.NewRequestCAEUseCase(billing.Deps{
		ERP:      erpRepo,
		Taxes:    erpRepo,
		Orders:   orderRepo,
		Invoices: invoiceRepo,
		TxRunner: postgres.NewTxRunner(pool),
		Locker:   postgres.NewAdvisoryLocker(pool, log),
		Domestic: clients.Domestic,
		Export:   clients.Export,
		Tables:   tables,
		Reports:  pdfGenerator,
		Notifier: notifier,
		Log:      log,
	}, billing.Config{
		CompanyCUIT:          cfg.AFIP.CUIT,
		DocType:              cfg.AFIP.DocType,
		EnforceSequenceCheck: cfg.AFIP.EnforceSequenceCheck,
		ReportBaseURL:        cfg.Reports.BaseURL,
	})
	invoiceQueryUC := billing.NewInvoiceQueryUseCase(invoiceRepo, orderRepo, logRepo, cfg.Reports.BaseURL)
	receiptQueryUC := billing.NewReceiptQueryUseCase(clients.Receipts)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/swagger
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "swagger",
		Title:    "Factura AFIP API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "afip_env": cfg.AFIP.Env})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RequestCAE: requestCAEUC,
		Invoices:   invoiceQueryUC,
		Receipts:   receiptQueryUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// Las solicitudes en curso terminan antes de cerrar el pool: el CAE ya pedido debe registrarse.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.WriteTimeoutSec)*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func loadCodeTables(ctx context.Context, pool *pgxpool.Pool) (*cae.CodeTables, error) {
	set, err := postgres.NewCodeTableRepository(pool).Load(ctx)
	if err != nil {
		return nil, err
	}
	return cae.NewCodeTables(set), nil
}
