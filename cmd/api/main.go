package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/kardex-core/internal/application/kardex"
	"github.com/tu-usuario/kardex-core/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/kardex-core/internal/interfaces/http"
	"github.com/tu-usuario/kardex-core/pkg/config"
	"github.com/tu-usuario/kardex-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("tax_rate", cfg.Kardex.TaxRatePercent.String()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	kardexRepo := postgres.NewKardexRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	rate := cfg.Kardex.TaxRatePercent
	movementsUC := kardex.NewMovementUseCase(txRunner, userRepo, rate)
	bulkUC := kardex.NewBulkDiscountUseCase(txRunner, userRepo, rate)
	ledgerSvc := kardex.NewLedgerQueryService(kardexRepo)
	stockQueries := kardex.NewStockQueryService(productRepo, rate)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if mw := httpRouter.SwaggerMiddleware("./docs/swagger.json"); mw != nil {
		app.Use(mw)
	} else {
		log.Warn().Msg("docs/swagger.json no encontrado; Swagger UI deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: movementsUC,
		Bulk:      bulkUC,
		Ledger:    ledgerSvc,
		Queries:   stockQueries,
		JWTSecret: cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
