package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/database"
	"github.com/tasklane/backend/internal/datamigrate"
	"github.com/tasklane/backend/internal/logger"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status)")
	timeout := flag.Duration("timeout", 30*time.Minute, "command timeout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Log().WithError(err).Fatal("load config")
	}
	logger.Init(cfg.Debug, os.Stderr)
	log := logger.Component("migrate")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate schema")
	}

	deps, err := datamigrate.DepsFromConfig(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to configure object storage")
	}
	runner, err := datamigrate.NewRunner(db, deps)
	if err != nil {
		log.WithError(err).Fatal("failed to configure migration runner")
	}

	switch *command {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			log.WithError(err).WithField("applied", applied).Fatal("failed to apply migrations")
		}
		log.WithField("applied", applied).Info("migrations applied")
	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			log.WithError(err).Fatal("failed to fetch migration status")
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(statuses); err != nil {
			log.WithError(err).Fatal("failed to print migration status")
		}
	default:
		log.WithField("command", *command).Fatal("unsupported command")
	}

	log.WithField("command", *command).Info("migration command completed")
}
