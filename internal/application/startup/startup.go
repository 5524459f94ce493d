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

	"github.com/gin-gonic/gin"

	"github.com/upskillhq/upskill-go/internal/application/container"
	"github.com/upskillhq/upskill-go/internal/infrastructure/caching/cleanup"
	"github.com/upskillhq/upskill-go/internal/infrastructure/observability/logging"
	"github.com/upskillhq/upskill-go/internal/infrastructure/persistence/database"
	"github.com/upskillhq/upskill-go/internal/presentation/http/server"
	"github.com/upskillhq/upskill-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  __  __ ___  ___ | | __(_) | |
 | | | | '_ \/ __|| |/ /| | | |
 | |_| | |_) \__ \|   < | | | |
  \__,_| .__/|___/|_|\_\|_|_|_|
       |_|
` + "\033[97m" + `
  upskill backend
` + "\033[0m")

	// Step 1: Channeled logger
	log.Println("Initializing logging...")
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Step 2: Database connection + schema
	logger.Startup().Info("Connecting to database", "driver", config.DBDriver)
	driverName, dsn := database.DataSourceName()
	db, err := database.NewConnectionWithLogger(driverName, dsn, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.NewTableCreator().CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Startup().Info("Database schema ready")

	// Step 3: Dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer, err := container.NewContainer(db, logger)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger.Startup().Info("Container initialization complete")

	// Step 4: Ops broadcaster
	go appContainer.Broadcaster.Run(ctx)

	// Step 5: Cache warming
	if config.WarmOnStartup {
		logger.Startup().Info("Starting cache warming...")
		warmStart := time.Now()
		if err := appContainer.CacheWarmer.WarmStartup(ctx); err != nil {
			logger.Startup().Error("Cache warming failed", "error", err.Error(), "duration", time.Since(warmStart))
		} else {
			logger.Startup().Info("Cache warming completed", "duration", time.Since(warmStart))
		}
	}

	// Step 6: Background cleanup worker
	logger.Startup().Info("Starting background cleanup worker...")
	cleanupWorker := cleanup.NewWorker(appContainer.Collector, cleanup.NewConfig(), appContainer.Broadcaster)
	go cleanupWorker.Start(ctx)

	// Step 7: HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)
	logger.Startup().Info("HTTP server initialized", "port", port)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port)

	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	}

	// Flush queued cache writes before the DB handle closes.
	logger.Shutdown().Info("Draining cache write queue...")
	if err := appContainer.CacheManager.Close(shutdownCtx); err != nil {
		logger.Shutdown().Error("Cache write queue drain failed", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
