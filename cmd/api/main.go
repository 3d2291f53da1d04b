package main

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/Dan9191/user-service/internal/config"
	"github.com/Dan9191/user-service/internal/handler"
	"github.com/Dan9191/user-service/internal/repository"
	"github.com/Dan9191/user-service/internal/service"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	dialect, err := repository.DialectFor(cfg.DBDriver)
	if err != nil {
		logger.Fatalf("Failed to select dialect: %v", err)
	}

	// Initialize database
	db, err := sql.Open(dialect.Name(), cfg.DSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, dialect)
	svc := service.NewService(repo, logger)
	h := handler.NewHandler(svc, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      h.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	logger.Infof("Server is listening on %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
