package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"powerplant_project/internal/api"
	"powerplant_project/internal/config"
	"powerplant_project/internal/repository"
	"powerplant_project/internal/service"
	"powerplant_project/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Dir:    cfg.LogDir,
		MaxAge: cfg.LogFileMaxAge,
	}); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	logger.Info("Starting battery registry")

	// Initialize database
	db, err := config.InitDatabase(context.Background(), cfg)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Failed to initialize database: %v", err))
	}
	defer db.Close()

	store, err := repository.NewStore(db)
	if err != nil {
		logger.Fatal(err.Error())
	}

	var ledger service.CapacityLedger
	if cfg.CapacityLedger {
		influx, err := config.InitInflux(cfg)
		if err != nil {
			logger.Fatal(fmt.Sprintf("Failed to initialize capacity ledger: %v", err))
		}
		defer influx.Close()
		logger.Infof("Capacity ledger: %s/%s (token %s)", cfg.InfluxURL, cfg.InfluxDatabase, config.MaskToken(cfg.InfluxToken))
		ledger = repository.NewInfluxLedger(influx)
	}

	svc := service.NewService(store, cfg, ledger)

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           api.NewRouter(svc, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on port %d (store: %s)", cfg.ServerPort, db.GetType())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("Server error: %v", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced shutdown: %v", err)
	}

	logger.Info("Server stopped gracefully")
}
