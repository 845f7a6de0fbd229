package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/nutrigraph-worker/internal/app"
	"github.com/yungbote/nutrigraph-worker/internal/data/graph"
	"github.com/yungbote/nutrigraph-worker/internal/db"
	"github.com/yungbote/nutrigraph-worker/internal/jobs/worker"
	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/modules/customer"
	"github.com/yungbote/nutrigraph-worker/internal/platform/neo4jdb"
	"github.com/yungbote/nutrigraph-worker/internal/platform/shutdown"
	"github.com/yungbote/nutrigraph-worker/internal/repos"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	log.Info("Starting customer graph worker",
		"batch_size", cfg.BatchSize,
		"max_attempts", cfg.MaxAttempts,
		"poll_interval", cfg.PollInterval,
		"concurrency", cfg.Concurrency,
	)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Neo4j
	neo4jClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Error("Neo4j init failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := shutdown.NotifyContext(context.Background())
	defer cancel()

	graph.EnsureSchema(ctx, neo4jClient, log)

	// Repos
	outboxRepo := repos.NewOutboxEventRepo(thePG, log)
	readerRepo := repos.NewCustomerReadRepo(thePG, log)

	// Pipeline + worker
	graphWriter := graph.NewWriter(neo4jClient, log)
	pipeline := customer.NewPipeline(thePG, log, readerRepo, graphWriter)
	outboxWorker := worker.NewWorker(thePG, log, outboxRepo, pipeline, cfg)
	outboxWorker.Start(ctx)

	<-ctx.Done()
	log.Info("Shutdown signal received; draining in-flight events")
	outboxWorker.Wait()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := neo4jClient.Close(closeCtx); err != nil {
		log.Warn("Neo4j close failed", "error", err)
	}
	log.Info("Worker stopped")
}
