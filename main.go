package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"server/cmd/migration/initialize"
	"server/cmd/migration/seed"
	"server/internal/app"
	"server/internal/handlers"
	"server/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	seedData := flag.Bool("seed", false, "seed development data after migrating")
	flag.Parse()

	log := logger.New("main")

	application, err := app.New()
	if err != nil {
		log.Er("failed to initialize application", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := initialize.InitializeTables(application.Database.SQL, application.Config, log); err != nil {
		log.Er("failed to migrate database", err)
		os.Exit(1)
	}

	if *seedData {
		if err := seed.Seed(application.Database.SQL, application.Config, log); err != nil {
			log.Er("failed to seed database", err)
			os.Exit(1)
		}
	}

	fiberApp := fiber.New(fiber.Config{
		AppName: "case-management",
	})
	fiberApp.Use(recover.New())

	if err := handlers.Router(fiberApp, application); err != nil {
		log.Er("failed to register routes", err)
		os.Exit(1)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down server")
		_ = fiberApp.Shutdown()
	}()

	address := fmt.Sprintf(":%d", application.Config.ServerPort)
	log.Info("starting server", "address", address)
	if err := fiberApp.Listen(address); err != nil {
		log.Er("server stopped", err)
		os.Exit(1)
	}
}
