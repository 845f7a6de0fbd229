package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/nutrigraph-worker/internal/app"
	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/repos"
	"github.com/yungbote/nutrigraph-worker/internal/types"
)

// Handler processes one claimed event. A nil return acks the event; an error
// nacks it (the event retries until max attempts).
type Handler interface {
	HandleEvent(ctx context.Context, event *types.OutboxEvent) error
}

// Worker drains the outbox: claim a batch, process each event in claim order,
// ack or nack per event, sleep when idle. Multiple instances can run against
// the same table; the claim's row locks keep them from stepping on each other.
type Worker struct {
	db      *gorm.DB
	log     *logger.Logger
	repo    repos.OutboxEventRepo
	handler Handler
	cfg     app.Config
	wg      sync.WaitGroup
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.OutboxEventRepo, handler Handler, cfg app.Config) *Worker {
	return &Worker{
		db:      db,
		log:     baseLog.With("component", "OutboxWorker"),
		repo:    repo,
		handler: handler,
		cfg:     cfg,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting outbox worker", "concurrency", w.cfg.Concurrency, "batch_size", w.cfg.BatchSize)
	for i := 0; i < w.cfg.Concurrency; i++ {
		workerID := i + 1
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.runLoop(ctx, workerID)
		}()
	}
}

// Wait blocks until every loop has finished its in-flight event and exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	for {
		if ctx.Err() != nil {
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		}

		events, err := w.repo.ClaimPending(
			ctx,
			w.db,
			w.cfg.BatchSize,
			w.cfg.MaxAttempts,
			w.cfg.StaleProcessing,
			w.cfg.WatchedTables,
			w.cfg.WatchedAggregateTypes,
		)
		if err != nil {
			w.log.Warn("ClaimPending failed", "worker_id", workerID, "error", err)
			w.idle(ctx)
			continue
		}
		if len(events) == 0 {
			w.idle(ctx)
			continue
		}

		w.processBatch(ctx, workerID, events)
	}
}

// processBatch handles each event independently and in claim order, which is
// created_at order, so two events for the same aggregate within a batch never
// project an older snapshot over a newer one. On shutdown the in-flight event
// always completes; events claimed but not yet started stay processing and
// are reclaimed after the stale window.
func (w *Worker) processBatch(ctx context.Context, workerID int, events []*types.OutboxEvent) {
	// Detached so a shutdown signal never cancels a projection mid-write.
	eventCtx := context.WithoutCancel(ctx)

	for i, event := range events {
		if ctx.Err() != nil {
			w.log.Info("Shutdown requested; leaving remaining events for reclaim",
				"worker_id", workerID,
				"remaining", len(events)-i,
			)
			return
		}
		w.processEvent(eventCtx, workerID, event)
	}
}

func (w *Worker) processEvent(ctx context.Context, workerID int, event *types.OutboxEvent) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Event handler panic",
				"worker_id", workerID,
				"event_id", event.ID,
				"aggregate_type", event.AggregateType,
				"aggregate_id", event.AggregateID,
				"panic", r,
			)
			w.nack(ctx, event, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := w.handler.HandleEvent(ctx, event); err != nil {
		w.log.Error("Failed processing outbox event",
			"worker_id", workerID,
			"event_id", event.ID,
			"aggregate_type", event.AggregateType,
			"aggregate_id", event.AggregateID,
			"attempts", event.Attempts,
			"error", err,
		)
		w.nack(ctx, event, err)
		return
	}

	if err := w.repo.MarkProcessed(ctx, w.db, event.ID); err != nil {
		// The projection landed; a stale-reclaim replay is idempotent.
		w.log.Warn("MarkProcessed failed", "worker_id", workerID, "event_id", event.ID, "error", err)
	}
}

func (w *Worker) nack(ctx context.Context, event *types.OutboxEvent, cause error) {
	if err := w.repo.MarkFailed(ctx, w.db, event.ID, cause.Error(), w.cfg.MaxAttempts); err != nil {
		w.log.Warn("MarkFailed failed", "event_id", event.ID, "error", err)
	}
}

func (w *Worker) idle(ctx context.Context) {
	timer := time.NewTimer(w.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
