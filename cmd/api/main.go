package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/database"
	"github.com/tasklane/backend/internal/datamigrate"
	"github.com/tasklane/backend/internal/logger"
	"github.com/tasklane/backend/internal/metrics"
	"github.com/tasklane/backend/internal/models"
	"github.com/tasklane/backend/internal/server"
	"github.com/tasklane/backend/internal/services"
	"github.com/tasklane/backend/internal/version"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		logger.Log().WithError(err).Fatal("load config")
	}

	// Setup logging with rotation
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		logger.Log().WithError(err).Fatal("create log directory")
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "tasklane.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Debug, io.MultiWriter(os.Stdout, rotator))
	log := logger.Log()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("migrate schema")
	}

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "reset-password" {
		if len(os.Args) != 4 {
			log.Fatalf("Usage: %s reset-password <email> <new-password>", os.Args[0])
		}
		resetPassword(db, os.Args[2], os.Args[3])
		return
	}

	log.WithField("version", version.Full()).Infof("starting %s backend", version.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := datamigrate.DepsFromConfig(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("configure object storage")
	}
	runner, err := datamigrate.NewRunner(db, deps)
	if err != nil {
		log.WithError(err).Fatal("configure data migrations")
	}
	if _, err := runner.Up(ctx); err != nil {
		log.WithError(err).Fatal("apply data migrations")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	mailer := services.NewMailService(cfg.SMTP)
	if mailer.IsConfigured() {
		dispatcher := services.NewEmailDispatcher(services.NewEmailLogService(db), mailer)
		if err := dispatcher.Start(cfg.EmailDispatchSchedule); err != nil {
			log.WithError(err).Fatal("start email dispatcher")
		}
		defer dispatcher.Stop()
	} else {
		log.Warn("SMTP not configured; email notifications stay queued")
	}

	srv, err := server.New(db, cfg, registry)
	if err != nil {
		log.WithError(err).Fatal("build server")
	}
	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Error("server error")
	}
	log.Info("shutdown complete")
}

func resetPassword(db *gorm.DB, email, password string) {
	log := logger.Log().WithField("email", email)

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		log.WithError(err).Fatal("user not found")
	}
	if err := user.SetPassword(password); err != nil {
		log.WithError(err).Fatal("failed to hash password")
	}
	user.IsActive = true

	if err := db.Save(&user).Error; err != nil {
		log.WithError(err).Fatal("failed to save user")
	}
	log.Info("password updated")
}
