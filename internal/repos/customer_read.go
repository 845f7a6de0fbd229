package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/nutrigraph-worker/internal/logger"
	"github.com/yungbote/nutrigraph-worker/internal/types"
)

// CustomerReadRepo is the read side of the projection: per-aggregate lookups
// against the source tables. Every method accepts an optional tx so the
// loader can run all reads for one aggregate inside a single transaction and
// never assemble a torn view. No method writes.
type CustomerReadRepo interface {
	GetHousehold(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Household, error)
	GetHouseholdPreferences(ctx context.Context, tx *gorm.DB, householdID uuid.UUID) ([]types.HouseholdPreference, error)
	GetHouseholdBudgets(ctx context.Context, tx *gorm.DB, householdID uuid.UUID) ([]types.HouseholdBudget, error)

	GetB2CCustomer(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.B2CCustomer, error)
	GetB2CHealthProfile(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*types.B2CHealthProfile, error)
	GetB2CConditions(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.ConditionAssociation, error)
	GetB2CAllergens(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.AllergenAssociation, error)
	GetB2CDiets(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.DietAssociation, error)

	GetB2BCustomer(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.B2BCustomer, error)
	GetVendor(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Vendor, error)
	GetB2BHealthProfile(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*types.B2BHealthProfile, error)
	GetB2BConditions(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.ConditionAssociation, error)
	GetB2BAllergens(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.AllergenAssociation, error)
	GetB2BDiets(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.DietAssociation, error)
}

type customerReadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCustomerReadRepo(db *gorm.DB, baseLog *logger.Logger) CustomerReadRepo {
	return &customerReadRepo{
		db:  db,
		log: baseLog.With("repo", "CustomerReadRepo"),
	}
}

func (r *customerReadRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *customerReadRepo) GetHousehold(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Household, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Household
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *customerReadRepo) GetHouseholdPreferences(ctx context.Context, tx *gorm.DB, householdID uuid.UUID) ([]types.HouseholdPreference, error) {
	var out []types.HouseholdPreference
	if householdID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Where("household_id = ?", householdID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerReadRepo) GetHouseholdBudgets(ctx context.Context, tx *gorm.DB, householdID uuid.UUID) ([]types.HouseholdBudget, error) {
	var out []types.HouseholdBudget
	if householdID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Where("household_id = ?", householdID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerReadRepo) GetB2CCustomer(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.B2CCustomer, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.B2CCustomer
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *customerReadRepo) GetB2CHealthProfile(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*types.B2CHealthProfile, error) {
	if customerID == uuid.Nil {
		return nil, nil
	}
	var row types.B2CHealthProfile
	err := r.conn(tx).WithContext(ctx).
		Where("b2c_customer_id = ?", customerID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *customerReadRepo) GetB2CConditions(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.ConditionAssociation, error) {
	var out []types.ConditionAssociation
	if customerID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Table("b2c_customer_health_conditions AS ch").
		Select("ch.condition_id, hc.name, ch.severity, ch.diagnosis_date, ch.is_active, ch.notes").
		Joins("JOIN health_conditions hc ON hc.id = ch.condition_id").
		Where("ch.b2c_customer_id = ?", customerID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerReadRepo) GetB2CAllergens(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.AllergenAssociation, error) {
	var out []types.AllergenAssociation
	if customerID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Table("b2c_customer_allergens AS ca").
		Select("ca.allergen_id, a.name, ca.severity, ca.diagnosis_date, ca.is_active, ca.reaction_description").
		Joins("JOIN allergens a ON a.id = ca.allergen_id").
		Where("ca.b2c_customer_id = ?", customerID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerReadRepo) GetB2CDiets(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.DietAssociation, error) {
	var out []types.DietAssociation
	if customerID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Table("b2c_customer_dietary_preferences AS dp").
		Select("dp.diet_id, d.name, dp.strictness, dp.start_date, dp.is_active").
		Joins("JOIN dietary_preferences d ON d.id = dp.diet_id").
		Where("dp.b2c_customer_id = ?", customerID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerReadRepo) GetB2BCustomer(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.B2BCustomer, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.B2BCustomer
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *customerReadRepo) GetVendor(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Vendor, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Vendor
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *customerReadRepo) GetB2BHealthProfile(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*types.B2BHealthProfile, error) {
	if customerID == uuid.Nil {
		return nil, nil
	}
	var row types.B2BHealthProfile
	err := r.conn(tx).WithContext(ctx).
		Where("b2b_customer_id = ?", customerID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *customerReadRepo) GetB2BConditions(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.ConditionAssociation, error) {
	var out []types.ConditionAssociation
	if customerID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Table("b2b_customer_health_conditions AS ch").
		Select("ch.condition_id, hc.name, ch.severity, ch.diagnosis_date, ch.is_active, ch.notes").
		Joins("JOIN health_conditions hc ON hc.id = ch.condition_id").
		Where("ch.b2b_customer_id = ?", customerID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerReadRepo) GetB2BAllergens(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.AllergenAssociation, error) {
	var out []types.AllergenAssociation
	if customerID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Table("b2b_customer_allergens AS ca").
		Select("ca.allergen_id, a.name, ca.severity, ca.diagnosis_date, ca.is_active, ca.reaction_description").
		Joins("JOIN allergens a ON a.id = ca.allergen_id").
		Where("ca.b2b_customer_id = ?", customerID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *customerReadRepo) GetB2BDiets(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) ([]types.DietAssociation, error) {
	var out []types.DietAssociation
	if customerID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Table("b2b_customer_dietary_preferences AS dp").
		Select("dp.diet_id, d.name, dp.strictness, dp.start_date, dp.is_active").
		Joins("JOIN dietary_preferences d ON d.id = dp.diet_id").
		Where("dp.b2b_customer_id = ?", customerID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
