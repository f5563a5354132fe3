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

	appalloc "github.com/rogerboy38/raven-ai-agent-sub002/internal/application/allocation"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/application/report"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/infrastructure/metrics"
	infrapdf "github.com/rogerboy38/raven-ai-agent-sub002/internal/infrastructure/pdf"
	"github.com/rogerboy38/raven-ai-agent-sub002/internal/infrastructure/postgres"
	httpRouter "github.com/rogerboy38/raven-ai-agent-sub002/internal/interfaces/http"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/config"
	"github.com/rogerboy38/raven-ai-agent-sub002/pkg/logger"
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
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	defaults, err := appalloc.DefaultsFromConfig(cfg.Alloc)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de asignación")
	}

	collector := metrics.NewCollector("batch_allocation")
	engine := appalloc.NewEngine(collector, cfg.Alloc.MaxAlternatives, log)
	allocationSvc := appalloc.NewService(postgres.NewSnapshotRunner(pool), engine, defaults, log)

	// PDF: lista de surtido por plan de asignación
	pickingUC := report.NewPickingListUseCase(allocationSvc, infrapdf.NewPickingListRenderer(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Batch Allocation API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Allocation:  allocationSvc,
		PickingList: pickingUC,
		Metrics:     collector,
		Log:         log,
		JWTSecret:   cfg.JWT.Secret,
		AppName:     cfg.App.Name,
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
