package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/ispstock-api/internal/application/analytics"
	"github.com/jhoicas/ispstock-api/internal/application/auth"
	"github.com/jhoicas/ispstock-api/internal/application/goodsout"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/application/usecase"
	"github.com/jhoicas/ispstock-api/internal/infrastructure/events"
	"github.com/jhoicas/ispstock-api/internal/infrastructure/metrics"
	"github.com/jhoicas/ispstock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ispstock-api/internal/interfaces/http"
	"github.com/jhoicas/ispstock-api/pkg/config"
	"github.com/jhoicas/ispstock-api/pkg/logger"

	_ "github.com/jhoicas/ispstock-api/docs"
)

// @title                       ISP Stock API
// @version                     1.0
// @description                 Inventario de equipos para ISP: ítems, ledger de movimientos y solicitudes de salida.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("events", cfg.Events.Driver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	m := metrics.New()

	sink, err := events.NewSink(ctx, cfg, log.Component("events"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Events.Driver).Msg("canal de eventos")
	}
	dispatcher := events.NewDispatcher(sink, cfg.Events.BufferSize, log.Component("events"), m)

	itemRepo := postgres.NewInventoryItemRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	requestRepo := postgres.NewGoodsOutRequestRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	itemUC := inventory.NewItemUseCase(txRunner, itemRepo, movementRepo, categoryRepo, supplierRepo, dispatcher, log.Component("inventory"))
	adjustUC := inventory.NewAdjustStockUseCase(txRunner, dispatcher, m, log.Component("stock"))
	goodsOutUC := goodsout.NewWorkflowUseCase(txRunner, itemRepo, requestRepo, dispatcher, m, log.Component("goods_out"))
	reportUC := analytics.NewReportUseCase(reportRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	errs := httpRouter.NewErrorWriter(cfg.App.IsDevelopment(), log.Component("http"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: errs.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	if cfg.Metrics.Enabled {
		app.Use(m.Middleware())
		app.Get(cfg.Metrics.Path, m.Handler())
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ISP Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:     itemUC,
		AdjustUC:   adjustUC,
		GoodsOutUC: goodsOutUC,
		ReportUC:   reportUC,
		CategoryUC: categoryUC,
		SupplierUC: supplierUC,
		AuthUC:     authUC,
		Errors:     errs,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// los eventos en cola se entregan antes de cerrar el sink
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre del canal de eventos")
	}

	log.Info().Msg("aplicación detenida")
}
