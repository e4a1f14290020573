package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/karthn/budget-service/internal/config"
	"github.com/karthn/budget-service/internal/handler"
	"github.com/karthn/budget-service/internal/integrations/cbr"
	"github.com/karthn/budget-service/internal/repository"
	"github.com/karthn/budget-service/internal/scheduler"
	"github.com/karthn/budget-service/internal/service"
	"github.com/karthn/budget-service/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	store := repository.NewPostgresStore(db)
	repo := repository.NewRepository(store)
	engine := service.NewEngine(repo, logger)
	state := service.NewStateManager(repo, logger)
	defer state.Close()
	mail := email.NewSender(cfg, logger)
	rates := cbr.NewClient(cfg, logger)
	h := handler.NewHandler(engine, repo, state, rates)

	// Recurring jobs: carry-forward at month start, daily payment reminders
	jobs := scheduler.New(engine, repo, mail, cfg, logger)
	if err := jobs.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer jobs.Stop()

	// Setup router
	r := mux.NewRouter()
	h.Register(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
