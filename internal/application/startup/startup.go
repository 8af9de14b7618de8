// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AzurNet/azurnet-go/internal/application/container"
	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/email"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/geo"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/persistence/database"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/persistence/snapshot"
	"github.com/AzurNet/azurnet-go/internal/presentation/http/server"
	"github.com/AzurNet/azurnet-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("\033[36m" + `
   ___                  _  __     __
  / _ |___ __ _________/ |/ /__  / /_
 / __ /_ // // / __/ - /    / -_) __/
/_/ |_/__/\_,_/_/ /_//_/|_/\__/\__/
` + "\033[97m" + `
  analytics engine
` + "\033[0m")

	// Step 1: Initialize logging
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("Channeled logging initialized")

	// Step 2: Initialize performance tracking
	perfTracker := performance.NewTracker()
	logger.Startup().Info("Performance tracker initialized")

	// Step 3: Initialize snapshot backend
	logger.Startup().Info("Initializing snapshot backend", "backend", config.SnapshotBackend)
	backend, err := buildSnapshotBackend(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize snapshot backend: %w", err)
	}

	// Step 4: Wire stores to persistence
	gateway := snapshot.NewGateway(backend, config.SaveDebounce, logger)
	classifier := intent.NewClassifier()
	cacheManager := manager.NewManager(classifier, gateway, logger)
	gateway.Bind(cacheManager.Visitors().Export, cacheManager.Chats().Export)

	// Step 5: Restore previous state
	loadStart := time.Now()
	if err := cacheManager.Load(); err != nil {
		logger.Startup().Warn("State restore failed, continuing with empty stores", "error", err.Error())
	}
	logger.LogStartupPhase("state_restore", time.Since(loadStart), true)

	// Step 6: Initialize geolocation resolver
	geoResolver := geo.NewClient(config.GeoEndpoint, config.GeoTimeout, logger)
	logger.Startup().Info("Geo resolver initialized", "endpoint", config.GeoEndpoint)

	// Step 7: Initialize lead notifications
	var emailService email.Service
	if config.ResendAPIKey != "" {
		emailService, err = email.NewService(config.ResendAPIKey, config.LeadEmailFrom, config.LeadEmailTo)
		if err != nil {
			logger.Startup().Warn("Lead notifications disabled", "error", err.Error())
			emailService = nil
		} else {
			logger.Startup().Info("Lead notifications enabled", "to", config.LeadEmailTo)
		}
	} else {
		logger.Startup().Info("Lead notifications disabled, no RESEND_API_KEY configured")
	}

	// Step 8: Create dependency injection container
	appContainer, err := container.NewContainer(cacheManager, classifier, geoResolver, emailService, logger, perfTracker)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 9: Start live stats broadcaster
	go appContainer.LiveBroadcaster.Run()
	logger.Startup().Info("Live stats broadcaster started", "interval", config.LiveBroadcastInterval)

	// Step 10: Start HTTP server
	httpServer := server.New(config.Port, appContainer)
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete", "totalDuration", time.Since(start), "port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown")

	shutdownStart := time.Now()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	// Final synchronous snapshot so nothing accepted before the signal is
	// lost to the debounce window.
	if err := cacheManager.Flush(); err != nil {
		logger.Shutdown().Error("Final snapshot flush failed", "error", err.Error())
	} else {
		logger.Shutdown().Info("Final snapshot flushed")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return logger.Close()
}

// buildSnapshotBackend selects the configured persistence backend.
func buildSnapshotBackend(logger *logging.ChanneledLogger) (snapshot.Backend, error) {
	switch config.SnapshotBackend {
	case "sql":
		dsn := config.DBPath
		if config.DBDriver == "libsql" {
			dsn = config.LibSQLURL
		}
		db, err := database.NewConnectionWithLogger(config.DBDriver, dsn, logger)
		if err != nil {
			return nil, err
		}
		return snapshot.NewSQLStore(db.DB, logger)
	default:
		return snapshot.NewFileStore(config.DataDir, logger)
	}
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
