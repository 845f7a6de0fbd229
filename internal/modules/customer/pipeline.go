package customer

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/nutrigraph-worker/internal/data/graph"
	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/repos"
	"github.com/yungbote/nutrigraph-worker/internal/types"
)

// Pipeline re-derives one customer aggregate per outbox event and projects it
// into the graph: load the full current state from Postgres, hand it to the
// graph writer as a single replace-semantics upsert. Deletion events whose
// row is already gone become tombstones; any other missing-row case is a
// benign skip.
type Pipeline struct {
	db     *gorm.DB
	log    *logger.Logger
	reader repos.CustomerReadRepo
	graph  graph.Writer
}

func NewPipeline(db *gorm.DB, baseLog *logger.Logger, reader repos.CustomerReadRepo, graphWriter graph.Writer) *Pipeline {
	return &Pipeline{
		db:     db,
		log:    baseLog.With("component", "CustomerPipeline"),
		reader: reader,
		graph:  graphWriter,
	}
}

// HandleEvent routes on the event's aggregate type. Unknown types are logged
// and dropped (returning nil acks the event): retrying would never make the
// type known.
func (p *Pipeline) HandleEvent(ctx context.Context, event *types.OutboxEvent) error {
	if event == nil {
		return nil
	}
	switch strings.ToLower(event.AggregateType) {
	case types.AggregateB2CCustomer:
		return p.handleB2C(ctx, event)
	case types.AggregateB2BCustomer:
		return p.handleB2B(ctx, event)
	case types.AggregateHousehold:
		return p.handleHousehold(ctx, event)
	default:
		p.log.Warn("Unhandled aggregate type",
			"aggregate_type", event.AggregateType,
			"event_id", event.ID,
		)
		return nil
	}
}

func (p *Pipeline) handleB2C(ctx context.Context, event *types.OutboxEvent) error {
	snap, err := p.loadB2C(ctx, event.AggregateID)
	if err != nil {
		return fmt.Errorf("load b2c aggregate: %w", err)
	}
	if snap == nil {
		if isDelete(event.Op) {
			p.log.Info("Deleting B2C customer from graph", "aggregate_id", event.AggregateID)
			return p.graph.DetachDelete(ctx, graph.LabelB2CCustomer, event.AggregateID)
		}
		p.log.Warn("B2C customer missing in Postgres; skipping",
			"aggregate_id", event.AggregateID,
			"op", event.Op,
		)
		return nil
	}
	if err := p.graph.UpsertB2CCustomer(ctx, snap); err != nil {
		return fmt.Errorf("project b2c aggregate: %w", err)
	}
	p.log.Info("Upserted B2C customer aggregate",
		"aggregate_id", event.AggregateID,
		"conditions", len(snap.Conditions),
		"allergens", len(snap.Allergens),
		"diet_prefs", len(snap.Diets),
		"hh_prefs", len(snap.HouseholdPrefs),
		"hh_budgets", len(snap.HouseholdBudgets),
	)
	return nil
}

func (p *Pipeline) handleB2B(ctx context.Context, event *types.OutboxEvent) error {
	snap, err := p.loadB2B(ctx, event.AggregateID)
	if err != nil {
		return fmt.Errorf("load b2b aggregate: %w", err)
	}
	if snap == nil {
		if isDelete(event.Op) {
			p.log.Info("Deleting B2B customer from graph", "aggregate_id", event.AggregateID)
			return p.graph.DetachDelete(ctx, graph.LabelB2BCustomer, event.AggregateID)
		}
		p.log.Warn("B2B customer missing in Postgres; skipping",
			"aggregate_id", event.AggregateID,
			"op", event.Op,
		)
		return nil
	}
	if err := p.graph.UpsertB2BCustomer(ctx, snap); err != nil {
		return fmt.Errorf("project b2b aggregate: %w", err)
	}
	p.log.Info("Upserted B2B customer aggregate",
		"aggregate_id", event.AggregateID,
		"conditions", len(snap.Conditions),
		"allergens", len(snap.Allergens),
		"diet_prefs", len(snap.Diets),
	)
	return nil
}

func (p *Pipeline) handleHousehold(ctx context.Context, event *types.OutboxEvent) error {
	snap, err := p.loadHousehold(ctx, event.AggregateID)
	if err != nil {
		return fmt.Errorf("load household aggregate: %w", err)
	}
	if snap == nil {
		if isDelete(event.Op) {
			p.log.Info("Deleting household from graph", "aggregate_id", event.AggregateID)
			return p.graph.DetachDelete(ctx, graph.LabelHousehold, event.AggregateID)
		}
		p.log.Warn("Household missing in Postgres; skipping",
			"aggregate_id", event.AggregateID,
			"op", event.Op,
		)
		return nil
	}
	if err := p.graph.UpsertHousehold(ctx, snap); err != nil {
		return fmt.Errorf("project household aggregate: %w", err)
	}
	p.log.Info("Upserted household",
		"aggregate_id", event.AggregateID,
		"prefs", len(snap.Prefs),
		"budgets", len(snap.Budgets),
	)
	return nil
}

func isDelete(op string) bool {
	return strings.EqualFold(op, types.OpDelete)
}
