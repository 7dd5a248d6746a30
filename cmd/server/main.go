package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"github.com/example/bloom/internal/config"
	"github.com/example/bloom/internal/database"
	"github.com/example/bloom/internal/routes"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName:      "Bloom Backend",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	outbox := routes.Register(app, db, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("Starting server on :%s", cfg.AppPort)
		return app.Listen(":" + cfg.AppPort)
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("fiber shutdown error: %v", err)
		}
		outbox.Close()
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// errorHandler keeps fiber errors as-is, maps store timeouts to 503, and
// hides everything else behind a generic 500.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"message": fiberErr.Message,
		})
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "store unavailable, retry shortly",
		})
	}

	log.Printf("unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "internal server error",
	})
}
