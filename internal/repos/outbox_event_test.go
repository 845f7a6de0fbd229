package repos

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/types"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               gormLogger.Default.LogMode(gormLogger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db, mock
}

// timeNear matches a timestamp argument within a minute of want, so claim
// cutoffs and write timestamps can be asserted without freezing the clock.
type timeNear struct{ want time.Time }

func (m timeNear) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	d := ts.Sub(m.want)
	if d < 0 {
		d = -d
	}
	return d < time.Minute
}

const claimSelectPattern = `(?s)SELECT \* FROM "outbox_events" WHERE.*` +
	`status = \$1.*OR.*status = \$2.*AND claimed_at IS NOT NULL.*AND claimed_at < \$3.*` +
	`AND attempts < \$4.*table_name IN \(\$5\).*aggregate_type IN \(\$6\).*` +
	`ORDER BY created_at ASC LIMIT \$7 FOR UPDATE SKIP LOCKED`

func TestClaimPendingAdvancesClaimedRows(t *testing.T) {
	db, mock := mockDB(t)
	repo := NewOutboxEventRepo(db, testLogger())

	e1 := uuid.New()
	e2 := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(claimSelectPattern).
		WithArgs(
			types.EventStatusPending,
			types.EventStatusProcessing,
			timeNear{want: now.Add(-30 * time.Minute)},
			5,
			"b2c_customers",
			"b2c_customer",
			2,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "table_name", "aggregate_type", "aggregate_id", "op", "status", "attempts", "created_at"}).
			AddRow(e1.String(), "b2c_customers", "b2c_customer", uuid.New().String(), types.OpUpdate, types.EventStatusPending, 0, now.Add(-time.Hour)).
			AddRow(e2.String(), "b2c_customers", "b2c_customer", uuid.New().String(), types.OpInsert, types.EventStatusPending, 1, now.Add(-time.Minute)))
	mock.ExpectExec(`UPDATE "outbox_events" SET "attempts"=attempts \+ 1,"claimed_at"=\$1,"status"=\$2 WHERE id IN \(\$3,\$4\)`).
		WithArgs(timeNear{want: now}, types.EventStatusProcessing, e1, e2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	events, err := repo.ClaimPending(context.Background(), nil, 2, 5, 30*time.Minute, []string{"b2c_customers"}, []string{"b2c_customer"})
	if err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("claimed events: want=2 got=%d", len(events))
	}
	for i, e := range events {
		if e.Status != types.EventStatusProcessing {
			t.Fatalf("event %d status: %s", i, e.Status)
		}
		if e.ClaimedAt == nil {
			t.Fatalf("event %d claimed_at not set", i)
		}
	}
	if events[0].Attempts != 1 || events[1].Attempts != 2 {
		t.Fatalf("attempts must be incremented: %d, %d", events[0].Attempts, events[1].Attempts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// The eligibility predicate does the exclusion work: a processing row inside
// the stale window fails `claimed_at < cutoff`, and any row at the attempt
// cap fails `attempts < max`. Both bounds are asserted here, the cutoff as
// now minus the configured window and the cap as the configured max.
func TestClaimPendingEligibilityBounds(t *testing.T) {
	db, mock := mockDB(t)
	repo := NewOutboxEventRepo(db, testLogger())

	staleWindow := 45 * time.Minute
	mock.ExpectBegin()
	mock.ExpectQuery(claimSelectPattern).
		WithArgs(
			types.EventStatusPending,
			types.EventStatusProcessing,
			timeNear{want: time.Now().Add(-staleWindow)},
			3,
			"households",
			"household",
			10,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	events, err := repo.ClaimPending(context.Background(), nil, 10, 3, staleWindow, []string{"households"}, []string{"household"})
	if err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("empty claim must return no events, got %d", len(events))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClaimPendingZeroLimitShortCircuits(t *testing.T) {
	db, mock := mockDB(t)
	repo := NewOutboxEventRepo(db, testLogger())

	events, err := repo.ClaimPending(context.Background(), nil, 0, 5, time.Minute, nil, nil)
	if err != nil {
		t.Fatalf("ClaimPending: %v", err)
	}
	if events != nil {
		t.Fatalf("zero limit must claim nothing")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("zero limit must not touch the database: %v", err)
	}
}

// The pending/failed branch lives in the statement itself: attempts at or
// above the cap land on the terminal status, anything below goes back to
// pending for another claim.
func TestMarkFailedTerminalOnlyAtAttemptCap(t *testing.T) {
	db, mock := mockDB(t)
	repo := NewOutboxEventRepo(db, testLogger())

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_events" SET "last_error"=\$1,"last_error_at"=\$2,"status"=CASE WHEN attempts >= \$3 THEN \$4 ELSE \$5 END WHERE id = \$6`).
		WithArgs("boom", timeNear{want: time.Now()}, 5, types.EventStatusFailed, types.EventStatusPending, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.MarkFailed(context.Background(), nil, id, "boom", 5); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkProcessedSetsStatusAndTimestamp(t *testing.T) {
	db, mock := mockDB(t)
	repo := NewOutboxEventRepo(db, testLogger())

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "outbox_events" SET "processed_at"=\$1,"status"=\$2 WHERE id = \$3`).
		WithArgs(timeNear{want: time.Now()}, types.EventStatusProcessed, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.MarkProcessed(context.Background(), nil, id); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
