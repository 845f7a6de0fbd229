package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/platform/neo4jdb"
	"github.com/yungbote/nutrigraph-worker/internal/types"
)

// Writer is the narrow surface the pipeline projects through. Each Upsert is
// one idempotent, relationship-replacing projection of a full snapshot;
// DetachDelete is the tombstone path.
type Writer interface {
	UpsertB2CCustomer(ctx context.Context, snap *types.B2CSnapshot) error
	UpsertB2BCustomer(ctx context.Context, snap *types.B2BSnapshot) error
	UpsertHousehold(ctx context.Context, snap *types.HouseholdSnapshot) error
	DetachDelete(ctx context.Context, label string, id uuid.UUID) error
}

type neo4jWriter struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewWriter(client *neo4jdb.Client, baseLog *logger.Logger) Writer {
	return &neo4jWriter{
		client: client,
		log:    baseLog.With("component", "GraphWriter"),
	}
}

func (w *neo4jWriter) UpsertB2CCustomer(ctx context.Context, snap *types.B2CSnapshot) error {
	if snap == nil || snap.Customer.ID == uuid.Nil {
		return fmt.Errorf("graph: empty b2c snapshot")
	}
	return w.run(ctx, b2cStatements(snap))
}

func (w *neo4jWriter) UpsertB2BCustomer(ctx context.Context, snap *types.B2BSnapshot) error {
	if snap == nil || snap.Customer.ID == uuid.Nil {
		return fmt.Errorf("graph: empty b2b snapshot")
	}
	return w.run(ctx, b2bStatements(snap))
}

func (w *neo4jWriter) UpsertHousehold(ctx context.Context, snap *types.HouseholdSnapshot) error {
	if snap == nil || snap.Household.ID == uuid.Nil {
		return fmt.Errorf("graph: empty household snapshot")
	}
	return w.run(ctx, householdStatements(snap))
}

func (w *neo4jWriter) DetachDelete(ctx context.Context, label string, id uuid.UUID) error {
	if !allowedDeleteLabel(label) {
		return fmt.Errorf("graph: detach delete on unexpected label %q", label)
	}
	if id == uuid.Nil {
		return fmt.Errorf("graph: detach delete requires an id")
	}
	return w.run(ctx, []Statement{detachDeleteStatement(label, id)})
}

// run executes every statement inside one managed write transaction, so a
// failure anywhere aborts the whole projection and no partial relationship
// replacement ever becomes visible.
func (w *neo4jWriter) run(ctx context.Context, stmts []Statement) error {
	if w.client == nil || w.client.Driver == nil {
		return fmt.Errorf("graph: neo4j client not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := w.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: w.client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range stmts {
			res, err := tx.Run(ctx, stmt.Query, stmt.Params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// schemaStatements backs every label this package MERGEs by id with a
// uniqueness constraint, grouping and catalog labels included.
var schemaStatements = []string{
	`CREATE CONSTRAINT b2c_customer_id_unique IF NOT EXISTS FOR (c:B2CCustomer) REQUIRE c.id IS UNIQUE`,
	`CREATE CONSTRAINT b2b_customer_id_unique IF NOT EXISTS FOR (c:B2BCustomer) REQUIRE c.id IS UNIQUE`,
	`CREATE CONSTRAINT household_id_unique IF NOT EXISTS FOR (h:Household) REQUIRE h.id IS UNIQUE`,
	`CREATE CONSTRAINT vendor_id_unique IF NOT EXISTS FOR (v:Vendor) REQUIRE v.id IS UNIQUE`,
	`CREATE CONSTRAINT b2c_health_profile_id_unique IF NOT EXISTS FOR (n:B2CHealthProfile) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT b2b_health_profile_id_unique IF NOT EXISTS FOR (n:B2BHealthProfile) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT health_condition_id_unique IF NOT EXISTS FOR (n:HealthCondition) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT allergen_id_unique IF NOT EXISTS FOR (n:Allergen) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT dietary_preference_id_unique IF NOT EXISTS FOR (n:DietaryPreference) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT household_preference_id_unique IF NOT EXISTS FOR (n:HouseholdPreference) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT household_budget_id_unique IF NOT EXISTS FOR (n:HouseholdBudget) REQUIRE n.id IS UNIQUE`,
}

// EnsureSchema creates the uniqueness constraints every MERGE in this package
// keys on. Best-effort: a failure is logged and startup continues, since
// another writer may own the constraints already.
func EnsureSchema(ctx context.Context, client *neo4jdb.Client, log *logger.Logger) {
	if client == nil || client.Driver == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	for _, q := range schemaStatements {
		if res, err := session.Run(ctx, q, nil); err != nil {
			if log != nil {
				log.Warn("neo4j schema init failed (continuing)", "error", err)
			}
		} else {
			_, _ = res.Consume(ctx)
		}
	}
}

func allowedDeleteLabel(label string) bool {
	switch label {
	case LabelB2CCustomer, LabelB2BCustomer, LabelHousehold:
		return true
	default:
		return false
	}
}
