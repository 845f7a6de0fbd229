package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/types"
)

type OutboxEventRepo interface {
	ClaimPending(ctx context.Context, tx *gorm.DB, limit, maxAttempts int, staleProcessing time.Duration, tables, aggregateTypes []string) ([]*types.OutboxEvent, error)
	MarkProcessed(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, errText string, maxAttempts int) error
}

type outboxEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOutboxEventRepo(db *gorm.DB, baseLog *logger.Logger) OutboxEventRepo {
	return &outboxEventRepo{
		db:  db,
		log: baseLog.With("repo", "OutboxEventRepo"),
	}
}

// ClaimPending selects up to limit eligible events and advances them to
// processing inside one transaction. Row locks with SKIP LOCKED make the
// claim exclusive across concurrent workers: a row visible to one claim is
// invisible to every concurrent one.
//
// Eligible means pending, or processing whose claim is older than the stale
// window (a worker died between claim and ack), in both cases with attempts
// still under maxAttempts. Rows are claimed in created_at order so events for
// the same aggregate keep their causal order within a batch.
func (r *outboxEventRepo) ClaimPending(ctx context.Context, tx *gorm.DB, limit, maxAttempts int, staleProcessing time.Duration, tables, aggregateTypes []string) ([]*types.OutboxEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		return nil, nil
	}
	now := time.Now()
	staleCutoff := now.Add(-staleProcessing)

	var claimed []*types.OutboxEvent
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var events []*types.OutboxEvent
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
				(
					status = ?
					OR (
						status = ?
						AND claimed_at IS NOT NULL
						AND claimed_at < ?
					)
				)
				AND attempts < ?
			`, types.EventStatusPending, types.EventStatusProcessing, staleCutoff, maxAttempts).
			Order("created_at ASC").
			Limit(limit)
		if len(tables) > 0 {
			q = q.Where("table_name IN ?", tables)
		}
		if len(aggregateTypes) > 0 {
			q = q.Where("aggregate_type IN ?", aggregateTypes)
		}
		if err := q.Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
		}
		if err := txx.Model(&types.OutboxEvent{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     types.EventStatusProcessing,
				"attempts":   gorm.Expr("attempts + 1"),
				"claimed_at": now,
			}).Error; err != nil {
			return err
		}

		for _, e := range events {
			e.Status = types.EventStatusProcessing
			e.Attempts++
			claimedAt := now
			e.ClaimedAt = &claimedAt
		}
		claimed = events
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *outboxEventRepo) MarkProcessed(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       types.EventStatusProcessed,
			"processed_at": time.Now(),
		}).Error
}

// MarkFailed records the error and returns the event to pending for another
// claim, unless attempts (already incremented at claim time) has reached
// maxAttempts, in which case the event is terminally failed and excluded
// from future claims.
func (r *outboxEventRepo) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, errText string, maxAttempts int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        gorm.Expr("CASE WHEN attempts >= ? THEN ? ELSE ? END", maxAttempts, types.EventStatusFailed, types.EventStatusPending),
			"last_error":    errText,
			"last_error_at": now,
		}).Error
}
