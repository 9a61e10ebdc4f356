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

	"github.com/jhoicas/material-stock-api/internal/application/inventory"
	"github.com/jhoicas/material-stock-api/internal/domain/repository"
	"github.com/jhoicas/material-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/material-stock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/material-stock-api/internal/interfaces/http"
	"github.com/jhoicas/material-stock-api/pkg/config"
	"github.com/jhoicas/material-stock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// El ledger es agnóstico al backend: mismos puertos sobre memoria o
	// PostgreSQL.
	var (
		txRunner inventory.TxRunner
		stocks   repository.MaterialStockRepository
		entries  repository.StockEntryRepository
	)
	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		stocks = postgres.NewMaterialStockRepository(pool)
		entries = postgres.NewStockEntryRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	default:
		store := memory.NewStore()
		stocks, entries, txRunner = store, store, store
	}

	inventoryUC := inventory.NewUseCase(txRunner, stocks, entries, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Material Stock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{InventoryUC: inventoryUC})

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
