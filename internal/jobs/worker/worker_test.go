package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yungbote/nutrigraph-worker/internal/app"
	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/repos"
	"github.com/yungbote/nutrigraph-worker/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func testConfig() app.Config {
	return app.Config{
		BatchSize:       10,
		MaxAttempts:     3,
		PollInterval:    time.Millisecond,
		StaleProcessing: time.Minute,
		Concurrency:     1,
	}
}

type failedCall struct {
	ID          uuid.UUID
	ErrText     string
	MaxAttempts int
}

type fakeOutboxRepo struct {
	mu        sync.Mutex
	batches   [][]*types.OutboxEvent
	processed []uuid.UUID
	failed    []failedCall
	claims    int
}

var _ repos.OutboxEventRepo = (*fakeOutboxRepo)(nil)

func (f *fakeOutboxRepo) ClaimPending(_ context.Context, _ *gorm.DB, _, _ int, _ time.Duration, _, _ []string) ([]*types.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims++
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeOutboxRepo) MarkProcessed(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(_ context.Context, _ *gorm.DB, id uuid.UUID, errText string, maxAttempts int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, failedCall{ID: id, ErrText: errText, MaxAttempts: maxAttempts})
	return nil
}

type scriptedHandler struct {
	fail  map[uuid.UUID]error
	panic map[uuid.UUID]bool
	seen  []uuid.UUID
}

func (h *scriptedHandler) HandleEvent(_ context.Context, event *types.OutboxEvent) error {
	h.seen = append(h.seen, event.ID)
	if h.panic[event.ID] {
		panic("handler exploded")
	}
	return h.fail[event.ID]
}

func event(aggType string) *types.OutboxEvent {
	return &types.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: aggType,
		AggregateID:   uuid.New(),
		Op:            types.OpUpdate,
		Status:        types.EventStatusProcessing,
		Attempts:      1,
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	e1 := event(types.AggregateB2CCustomer)
	e2 := event(types.AggregateB2CCustomer)
	e3 := event(types.AggregateHousehold)

	repo := &fakeOutboxRepo{}
	handler := &scriptedHandler{fail: map[uuid.UUID]error{e2.ID: errors.New("boom")}}
	w := NewWorker(nil, testLogger(), repo, handler, testConfig())

	w.processBatch(context.Background(), 1, []*types.OutboxEvent{e1, e2, e3})

	if len(handler.seen) != 3 {
		t.Fatalf("all events must be attempted, seen=%d", len(handler.seen))
	}
	if len(repo.processed) != 2 || repo.processed[0] != e1.ID || repo.processed[1] != e3.ID {
		t.Fatalf("processed: %v", repo.processed)
	}
	if len(repo.failed) != 1 || repo.failed[0].ID != e2.ID {
		t.Fatalf("failed: %+v", repo.failed)
	}
	if repo.failed[0].ErrText != "boom" {
		t.Fatalf("nack must carry the error text, got %q", repo.failed[0].ErrText)
	}
	if repo.failed[0].MaxAttempts != 3 {
		t.Fatalf("nack must pass the configured max attempts, got %d", repo.failed[0].MaxAttempts)
	}
}

func TestProcessBatchPreservesClaimOrder(t *testing.T) {
	e1 := event(types.AggregateB2CCustomer)
	e2 := event(types.AggregateB2CCustomer)
	// Same aggregate: e1 precedes e2 in claim (created_at) order and must be
	// handled first so an older snapshot never lands after a newer one.
	e2.AggregateID = e1.AggregateID

	repo := &fakeOutboxRepo{}
	handler := &scriptedHandler{}
	w := NewWorker(nil, testLogger(), repo, handler, testConfig())

	w.processBatch(context.Background(), 1, []*types.OutboxEvent{e1, e2})

	if len(handler.seen) != 2 || handler.seen[0] != e1.ID || handler.seen[1] != e2.ID {
		t.Fatalf("batch order violated: %v", handler.seen)
	}
}

func TestProcessEventPanicNacks(t *testing.T) {
	e := event(types.AggregateB2BCustomer)

	repo := &fakeOutboxRepo{}
	handler := &scriptedHandler{panic: map[uuid.UUID]bool{e.ID: true}}
	w := NewWorker(nil, testLogger(), repo, handler, testConfig())

	w.processBatch(context.Background(), 1, []*types.OutboxEvent{e})

	if len(repo.processed) != 0 {
		t.Fatalf("panicking event must not ack")
	}
	if len(repo.failed) != 1 || repo.failed[0].ID != e.ID {
		t.Fatalf("panicking event must nack, failed=%+v", repo.failed)
	}
}

func TestProcessBatchStopsBetweenEventsOnShutdown(t *testing.T) {
	e1 := event(types.AggregateB2CCustomer)
	e2 := event(types.AggregateB2CCustomer)

	ctx, cancel := context.WithCancel(context.Background())
	repo := &fakeOutboxRepo{}
	handler := &cancellingHandler{cancel: cancel, inner: &scriptedHandler{}}
	w := NewWorker(nil, testLogger(), repo, handler, testConfig())

	w.processBatch(ctx, 1, []*types.OutboxEvent{e1, e2})

	// The first event completed (and acked) even though it triggered the
	// shutdown; the second was never started.
	if len(repo.processed) != 1 || repo.processed[0] != e1.ID {
		t.Fatalf("processed: %v", repo.processed)
	}
	if len(handler.inner.seen) != 1 {
		t.Fatalf("second event must be left for reclaim, seen=%v", handler.inner.seen)
	}
}

type cancellingHandler struct {
	cancel context.CancelFunc
	inner  *scriptedHandler
}

func (h *cancellingHandler) HandleEvent(ctx context.Context, event *types.OutboxEvent) error {
	h.cancel()
	return h.inner.HandleEvent(ctx, event)
}

func TestStartDrainsAndStops(t *testing.T) {
	e := event(types.AggregateHousehold)
	repo := &fakeOutboxRepo{batches: [][]*types.OutboxEvent{{e}}}
	handler := &scriptedHandler{}
	w := NewWorker(nil, testLogger(), repo, handler, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		repo.mu.Lock()
		done := len(repo.processed) == 1
		repo.mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("event was never processed")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	stopped := make(chan struct{})
	go func() {
		w.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop after cancellation")
	}
}
