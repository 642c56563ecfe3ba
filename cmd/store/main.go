package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/kippeer/go-store-api/internal/repository"
	"github.com/kippeer/go-store-api/internal/service"
	transport "github.com/kippeer/go-store-api/internal/transport/http"
	"github.com/kippeer/go-store-api/internal/transport/http/handler"
	"github.com/kippeer/go-store-api/pkg/config"
	"github.com/kippeer/go-store-api/pkg/db"
	"github.com/kippeer/go-store-api/pkg/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using system envs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tp, err := tracing.Init(ctx, "store-api")
	if err != nil {
		log.Fatalf("Error init tracer: %v", err)
	}

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("error creating postgres pool: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	userRepo := repository.NewUserRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	hasher := service.NewBcryptHasher()
	authz := service.NewAuthorizationService(userRepo, logger)
	authService := service.NewAuthService(userRepo, hasher, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)

	productService := service.NewCachedProductService(
		service.NewProductService(productRepo, logger),
		redisClient,
		cfg.Redis.CacheTTL,
	)

	stockService := service.NewStockService(productRepo, logger)
	orderCreation := service.NewOrderCreationService(pool, orderRepo, stockService, authz, logger)
	orderStatus := service.NewOrderStatusService(pool, orderRepo, authz, logger)
	orderUpdate := service.NewOrderUpdateService(pool, orderRepo, authz, logger)
	orderService := service.NewOrderService(orderRepo, authz, logger)
	reportService := service.NewReportService(orderRepo, logger)

	handlers := &transport.Handlers{
		Auth:    handler.NewAuthHandler(authService, authz, logger),
		Product: handler.NewProductHandler(productService, logger),
		Order:   handler.NewOrderHandler(orderCreation, orderStatus, orderUpdate, orderService, logger),
		Report:  handler.NewReportHandler(reportService, logger),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metricsServer := &http.Server{Addr: cfg.Metrics.Port}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			Registry: reg,
		}))
		metricsServer.Handler = mux

		log.Println("Metrics server is listening on " + cfg.Metrics.Port + " 📈")

		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics serving failed: %v", err)
		}
	}()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.Timeout,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limiter.Max,
		Expiration: cfg.Limiter.Expiration,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("Store API is alive!")
	})

	transport.RegisterRoutes(app, handlers, cfg.Auth.JWTSecret)

	go func() {
		log.Println("HTTP Server listening on port: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP: %v", err)
		}
	}()

	logger.Info("store api started!")

	<-ctx.Done()

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP: %v\n", err)
	} else {
		log.Printf("HTTP Server stopped")
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down metrics server: %v\n", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	pool.Close()
	log.Println("✅ Postgres pool closed")

	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Error closing telemetry: %v\n", err)
	} else {
		log.Println("✅ Telemetry closed")
	}
}
