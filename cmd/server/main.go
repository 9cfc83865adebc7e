package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"provenance-workflow-service/internal/adapters/primary/http/handlers"
	"provenance-workflow-service/internal/adapters/primary/http/middleware"
	"provenance-workflow-service/internal/adapters/secondary/kubescheduler"
	"provenance-workflow-service/internal/adapters/secondary/postgres"
	"provenance-workflow-service/internal/config"
	output "provenance-workflow-service/internal/core/ports/output"
	"provenance-workflow-service/internal/core/services"
	"provenance-workflow-service/internal/engine"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports - Repositories)
	nodeRepo := postgres.NewNodeRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	computerRepo := postgres.NewComputerRepository(pool)
	codeRepo := postgres.NewCodeRepository(pool)
	calcJobRepo := postgres.NewCalcJobRepository(pool)
	checkpointRepo := postgres.NewCheckpointRepository(pool)

	// Scheduler Client (Optional - based on config)
	var schedulerClient output.SchedulerClient
	if cfg.Kubernetes.Enabled {
		client, err := kubescheduler.NewKubeScheduler(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("scheduler client init failed (continuing without K8s integration): %v", err)
		} else {
			schedulerClient = client
			log.Info("scheduler client initialized")
		}
	} else {
		log.Info("scheduler integration disabled")
	}

	// Core Services (Application Layer)
	nodeSvc := services.NewNodeService(nodeRepo, commentRepo)
	graphSvc := services.NewGraphService(nodeRepo)
	computerSvc := services.NewComputerService(computerRepo)
	codeSvc := services.NewCodeService(codeRepo, computerRepo)
	calcJobSvc := services.NewCalcJobService(calcJobRepo, nodeRepo, codeRepo, computerRepo, schedulerClient)
	processSvc := services.NewProcessService(checkpointRepo, nodeRepo, calcJobRepo)
	inlineSvc := services.NewInlineService(nodeRepo)
	inlineSvc.RegisterBuiltins()

	// Engine poller: wakes WAITING processes whose awaited job reached a
	// terminal state.
	engineCtx, stopEngine := context.WithCancel(context.Background())
	defer stopEngine()
	poller := engine.NewPoller(processSvc, calcJobSvc, checkpointRepo, cfg.Engine.PollInterval, cfg.Engine.BatchSize)
	go poller.Run(engineCtx)

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(nodeSvc, graphSvc, computerSvc, codeSvc, calcJobSvc, processSvc, inlineSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/provenance")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stopEngine()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
