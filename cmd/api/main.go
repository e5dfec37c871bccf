package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almoxarifado-api/internal/application/analytics"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/lock"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/messaging"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/metrics"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almoxarifado-api/internal/interfaces/http"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
	"github.com/jhoicas/almoxarifado-api/pkg/tracing"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("storage", cfg.App.Storage).
		Str("lock", cfg.Lock.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.App.Env,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.App.Env != "production",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	// Persistencia
	var (
		materialRepo repository.MaterialRepository
		movementRepo repository.MovementRepository
		txRunner     inventory.TxRunner
	)
	switch cfg.App.Storage {
	case "memory":
		store := memory.NewStore()
		materialRepo = memory.NewMaterialRepository(store)
		movementRepo = memory.NewMovementRepository(store)
		txRunner = memory.NewTxRunner(store)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
		}
		materialRepo = postgres.NewMaterialRepository(pool)
		movementRepo = postgres.NewMovementRepository(pool)
		txRunner = postgres.NewTxRunner(pool, cfg.DB.LockTimeout)
	}

	// Lock por material
	var locker inventory.Locker
	switch cfg.Lock.Driver {
	case "redis":
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, lock.RedisOptions{
			LeaseTTL: cfg.Lock.LeaseTTL,
			Wait:     cfg.Lock.WaitTimeout,
		}, log.Component("lock"))
	default:
		locker = lock.NewLocalLocker(cfg.Lock.WaitTimeout)
	}

	// Eventos MovementRecorded
	var publisher inventory.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log.Component("kafka"))
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("productor Kafka")
		}
		defer kp.Close()
		publisher = kp
	}

	var (
		ledgerMetrics inventory.Metrics
		promMetrics   *metrics.Ledger
	)
	if cfg.Telemetry.MetricsEnabled {
		promMetrics = metrics.New("almoxarifado")
		ledgerMetrics = promMetrics
	}

	registerMovementUC := inventory.NewRegisterMovementUseCase(inventory.Deps{
		TxRunner:  txRunner,
		Locker:    locker,
		Publisher: publisher,
		Metrics:   ledgerMetrics,
		Logger:    log.Component("ledger"),
		Limits: inventory.Limits{
			MutationTimeout: cfg.Ledger.MutationTimeout,
			MaxRetries:      cfg.Ledger.MaxRetries,
			RetryBackoff:    cfg.Ledger.RetryBackoff,
		},
	})
	materialUC := usecase.NewMaterialUseCase(materialRepo, movementRepo, registerMovementUC)
	movementUC := usecase.NewMovementUseCase(movementRepo, materialRepo)
	replenishmentUC := inventory.NewReplenishmentUseCase(materialRepo, movementRepo)
	statisticsUC := analytics.NewStatisticsUseCase(materialRepo, movementRepo, cfg.App.Location())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(httpRouter.TracingMiddleware())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	if promMetrics != nil {
		app.Use(promMetrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(promMetrics.Handler()))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Almoxarifado API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		MaterialUC:       materialUC,
		MovementUC:       movementUC,
		RegisterMovement: registerMovementUC,
		Replenishment:    replenishmentUC,
		StatisticsUC:     statisticsUC,
		JWTSecret:        cfg.JWT.Secret,
		JWTIssuer:        cfg.JWT.Issuer,
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
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciar trazas")
	}

	log.Info().Msg("aplicación detenida")
}
