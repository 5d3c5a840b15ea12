// @title           Inventario Audit API
// @version         1.0
// @description     Conciliación de inventario físico contra existencias de sistema.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/inventario-audit/docs"
	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/application/dto"
	"github.com/jhoicas/inventario-audit/internal/application/location"
	"github.com/jhoicas/inventario-audit/internal/application/questionnaire"
	"github.com/jhoicas/inventario-audit/internal/application/report"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-audit/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/redislock"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-audit/internal/infrastructure/tabular"
	httpRouter "github.com/jhoicas/inventario-audit/internal/interfaces/http"
	"github.com/jhoicas/inventario-audit/pkg/config"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a persistencia")
	}
	defer repos.Close()

	collector := metrics.New()

	// Bloqueo de escaneo: Redis si hay varias estaciones contra la misma base, si no en memoria.
	var locker audit.Locker = audit.NewLocalLocker()
	if cfg.Redis.Enabled() {
		rdb, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = redislock.New(rdb, cfg.Redis.LockTTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.LockTTL).Msg("bloqueo de escaneo distribuido")
	}

	store := audit.NewStore(repos.Items, collector, log)
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("carga inicial de registros de auditoría")
	}

	importUC := audit.NewImportUseCase(store, cfg.Import.MaxRows, collector, log)
	scanUC := audit.NewScanProcessor(store, repos.Locations, locker, collector, log)
	countUC := audit.NewCountUseCase(store, repos.Locations, locker, log)
	queryUC := audit.NewQueryUseCase(store, repos.Locations)
	locationUC := location.NewUseCase(repos.Locations, store, log)
	questionnaireUC := questionnaire.NewUseCase(repos.Questions, repos.Answers, repos.Locations, repos.Tx, log)
	reportUC := report.NewUseCase(queryUC, map[string]report.Generator{
		report.FormatPDF:  infrapdf.NewReportGenerator(),
		report.FormatXLSX: tabular.NewXLSXReportGenerator(),
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    32 * 1024 * 1024, // archivos de importación
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.ObserveRequests(collector))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Inventario Audit API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db": repos.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Imports:       importUC,
		Scans:         scanUC,
		Counts:        countUC,
		Query:         queryUC,
		Locations:     locationUC,
		Questionnaire: questionnaireUC,
		Reports:       reportUC,
		ReadTable: func(filename string, r io.Reader) (dto.ImportTable, error) {
			return tabular.Read(filename, r, tabular.Options{Charset: cfg.Import.Charset})
		},
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
