package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"epi_notifier/internal/app"
	"epi_notifier/internal/infra/config"
	idb "epi_notifier/internal/infra/database"
	"epi_notifier/internal/infra/httpserver"
	"epi_notifier/internal/infra/logger"
	"epi_notifier/internal/infra/mail"
	"epi_notifier/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("EPI Expiration Notifier starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"mail_driver": cfg.MailDriver,
		"cron_spec":   cfg.CronSpecMonthly,
	}).Info("Configuration loaded")

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Repositories
	equipmentRepo := idb.NewPostgresEquipmentRepository(db)
	recipientRepo := idb.NewPostgresRecipientRepository(db)
	log.Info("Equipment and recipient repositories initialized.")

	// Initialize Mail Transport
	sender, err := mail.NewSenderFromConfig(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize mail transport")
	}

	// Initialize Notifier pipeline
	notifier := app.NewExpirationNotifier(
		equipmentRepo,
		recipientRepo,
		sender,
		log,
		cfg.MailSendTimeout,
		cfg.DispatchConcurrency,
		cfg.SubjectPrefix,
	)
	log.Info("Expiration notifier service initialized.")

	// Initialize recurring trigger
	expirationScheduler := scheduler.NewExpirationScheduler(notifier, log, cfg.CronSpecMonthly)
	if err := expirationScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not start expiration scheduler")
	}

	// Initialize HTTP surface (liveness, metrics, manual trigger)
	server := httpserver.New(cfg, notifier, log)
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	log.Info("Application setup complete. Scheduler and HTTP server are running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	expirationScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	// db.Close() is handled by defer
	log.Info("Application shut down gracefully.")
}
