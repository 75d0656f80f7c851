package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	created, err := LoadConfig(ConfigFileName)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}

	if created {
		log.Printf("wrote default config to %s, edit it and restart", ConfigFileName)
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	SetupLogger(ServiceConfig.Logging)

	HttpClient = NewHttpClient(ServiceConfig.External)

	if err := SetupDatabaseConnection(); err != nil {
		slog.Error("failed to set up database", "error", err)
		return 1
	}

	SetupRedisConnection()
	defer CloseConnections()

	if idx, ok := SearchIndex.(*redisIndex); ok {
		if err := idx.EnsureIndex(context.Background()); err != nil {
			slog.Warn("failed to create search index", "error", err)
		}
	}

	app := NewApp()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		slog.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "listen", ServiceConfig.Server.Listen)

	if err := app.Listen(ServiceConfig.Server.Listen); err != nil {
		slog.Error("server stopped", "error", err)
		return 1
	}

	return 0
}

func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:      ServiceConfig.Server.Prefork,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: ServiceConfig.Server.AllowOrigins,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	comicRoutes(app)
	explanationRoutes(app)
	preferenceRoutes(app)
	adminRoutes(app)

	return app
}

// ErrorHandler flattens every error into {"error": "..."}. Only errors raised
// as *fiber.Error keep their own status; everything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("error processing request", "method", c.Method(), "path", c.Path(), "error", err)
	} else {
		slog.Info("request rejected", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
	}

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
