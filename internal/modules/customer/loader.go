package customer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutrigraph-worker/internal/types"
)

/*
Loaders assemble one aggregate snapshot per event. The primary row is read
first; only if it exists are the dependent sets read, all inside the same
transaction so the snapshot is never torn (an association added concurrently
never shows up without its owning row). A nil snapshot with a nil error means
the primary row is absent; the caller decides tombstone vs. skip from the
event's op.

Household data is re-read on every load even though households are shared
across members: redundant reads are cheaper than a cache that can go stale
between events.
*/

// readTx runs fn inside one read transaction. A nil db (unit tests with fake
// readers) degrades to a direct call.
func (p *Pipeline) readTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if p.db == nil {
		return fn(nil)
	}
	return p.db.WithContext(ctx).Transaction(fn)
}

func (p *Pipeline) loadB2C(ctx context.Context, id uuid.UUID) (*types.B2CSnapshot, error) {
	var snap *types.B2CSnapshot
	err := p.readTx(ctx, func(tx *gorm.DB) error {
		cust, err := p.reader.GetB2CCustomer(ctx, tx, id)
		if err != nil {
			return err
		}
		if cust == nil {
			return nil
		}

		household, err := p.reader.GetHousehold(ctx, tx, cust.HouseholdID)
		if err != nil {
			return err
		}
		if household == nil {
			// FK guarantees this only happens mid-race; retrying via nack is
			// the right response.
			return fmt.Errorf("b2c customer %s references missing household %s", cust.ID, cust.HouseholdID)
		}

		profile, err := p.reader.GetB2CHealthProfile(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		conditions, err := p.reader.GetB2CConditions(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		allergens, err := p.reader.GetB2CAllergens(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		diets, err := p.reader.GetB2CDiets(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		prefs, err := p.reader.GetHouseholdPreferences(ctx, tx, household.ID)
		if err != nil {
			return err
		}
		budgets, err := p.reader.GetHouseholdBudgets(ctx, tx, household.ID)
		if err != nil {
			return err
		}

		snap = &types.B2CSnapshot{
			Customer:         *cust,
			Household:        *household,
			Profile:          profile,
			Conditions:       conditions,
			Allergens:        allergens,
			Diets:            diets,
			HouseholdPrefs:   prefs,
			HouseholdBudgets: budgets,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (p *Pipeline) loadB2B(ctx context.Context, id uuid.UUID) (*types.B2BSnapshot, error) {
	var snap *types.B2BSnapshot
	err := p.readTx(ctx, func(tx *gorm.DB) error {
		cust, err := p.reader.GetB2BCustomer(ctx, tx, id)
		if err != nil {
			return err
		}
		if cust == nil {
			return nil
		}

		vendor, err := p.reader.GetVendor(ctx, tx, cust.VendorID)
		if err != nil {
			return err
		}
		if vendor == nil {
			return fmt.Errorf("b2b customer %s references missing vendor %s", cust.ID, cust.VendorID)
		}

		profile, err := p.reader.GetB2BHealthProfile(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		conditions, err := p.reader.GetB2BConditions(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		allergens, err := p.reader.GetB2BAllergens(ctx, tx, cust.ID)
		if err != nil {
			return err
		}
		diets, err := p.reader.GetB2BDiets(ctx, tx, cust.ID)
		if err != nil {
			return err
		}

		snap = &types.B2BSnapshot{
			Customer:   *cust,
			Vendor:     *vendor,
			Profile:    profile,
			Conditions: conditions,
			Allergens:  allergens,
			Diets:      diets,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (p *Pipeline) loadHousehold(ctx context.Context, id uuid.UUID) (*types.HouseholdSnapshot, error) {
	var snap *types.HouseholdSnapshot
	err := p.readTx(ctx, func(tx *gorm.DB) error {
		household, err := p.reader.GetHousehold(ctx, tx, id)
		if err != nil {
			return err
		}
		if household == nil {
			return nil
		}

		prefs, err := p.reader.GetHouseholdPreferences(ctx, tx, household.ID)
		if err != nil {
			return err
		}
		budgets, err := p.reader.GetHouseholdBudgets(ctx, tx, household.ID)
		if err != nil {
			return err
		}

		snap = &types.HouseholdSnapshot{
			Household: *household,
			Prefs:     prefs,
			Budgets:   budgets,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
