package types

import (
	"time"

	"github.com/google/uuid"
)

type B2BCustomer struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"vendor_id"`
	FullName      string     `gorm:"column:full_name" json:"full_name"`
	Email         *string    `gorm:"column:email" json:"email,omitempty"`
	Phone         *string    `gorm:"column:phone" json:"phone,omitempty"`
	ExternalID    *string    `gorm:"column:external_id" json:"external_id,omitempty"`
	AccountStatus string     `gorm:"column:account_status" json:"account_status"`
	DateOfBirth   *time.Time `gorm:"column:date_of_birth" json:"date_of_birth,omitempty"`
	Gender        *string    `gorm:"column:gender" json:"gender,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (B2BCustomer) TableName() string { return "b2b_customers" }

type B2BHealthProfile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	B2BCustomerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"b2b_customer_id"`
	HeightCm       *float64  `gorm:"column:height_cm" json:"height_cm,omitempty"`
	WeightKg       *float64  `gorm:"column:weight_kg" json:"weight_kg,omitempty"`
	BMI            *float64  `gorm:"column:bmi" json:"bmi,omitempty"`
	BMR            *float64  `gorm:"column:bmr" json:"bmr,omitempty"`
	TDEE           *float64  `gorm:"column:tdee" json:"tdee,omitempty"`
	ActivityLevel  *string   `gorm:"column:activity_level" json:"activity_level,omitempty"`
	HealthGoal     *string   `gorm:"column:health_goal" json:"health_goal,omitempty"`
	TargetWeightKg *float64  `gorm:"column:target_weight_kg" json:"target_weight_kg,omitempty"`
	TargetCalories *float64  `gorm:"column:target_calories" json:"target_calories,omitempty"`
	TargetProteinG *float64  `gorm:"column:target_protein_g" json:"target_protein_g,omitempty"`
	TargetCarbsG   *float64  `gorm:"column:target_carbs_g" json:"target_carbs_g,omitempty"`
	TargetFatG     *float64  `gorm:"column:target_fat_g" json:"target_fat_g,omitempty"`
	TargetFiberG   *float64  `gorm:"column:target_fiber_g" json:"target_fiber_g,omitempty"`
	TargetSodiumMg *float64  `gorm:"column:target_sodium_mg" json:"target_sodium_mg,omitempty"`
	TargetSugarG   *float64  `gorm:"column:target_sugar_g" json:"target_sugar_g,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (B2BHealthProfile) TableName() string { return "b2b_customer_health_profiles" }

type B2BCustomerHealthCondition struct {
	B2BCustomerID uuid.UUID  `gorm:"type:uuid;not null;index:idx_b2b_condition,unique,priority:1" json:"b2b_customer_id"`
	ConditionID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_b2b_condition,unique,priority:2" json:"condition_id"`
	Severity      *string    `gorm:"column:severity" json:"severity,omitempty"`
	DiagnosisDate *time.Time `gorm:"column:diagnosis_date" json:"diagnosis_date,omitempty"`
	IsActive      bool       `gorm:"column:is_active;default:true" json:"is_active"`
	Notes         *string    `gorm:"column:notes" json:"notes,omitempty"`
}

func (B2BCustomerHealthCondition) TableName() string { return "b2b_customer_health_conditions" }

type B2BCustomerAllergen struct {
	B2BCustomerID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_b2b_allergen,unique,priority:1" json:"b2b_customer_id"`
	AllergenID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_b2b_allergen,unique,priority:2" json:"allergen_id"`
	Severity            *string    `gorm:"column:severity" json:"severity,omitempty"`
	DiagnosisDate       *time.Time `gorm:"column:diagnosis_date" json:"diagnosis_date,omitempty"`
	IsActive            bool       `gorm:"column:is_active;default:true" json:"is_active"`
	ReactionDescription *string    `gorm:"column:reaction_description" json:"reaction_description,omitempty"`
}

func (B2BCustomerAllergen) TableName() string { return "b2b_customer_allergens" }

type B2BCustomerDietaryPreference struct {
	B2BCustomerID uuid.UUID  `gorm:"type:uuid;not null;index:idx_b2b_diet,unique,priority:1" json:"b2b_customer_id"`
	DietID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_b2b_diet,unique,priority:2" json:"diet_id"`
	Strictness    *string    `gorm:"column:strictness" json:"strictness,omitempty"`
	StartDate     *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	IsActive      bool       `gorm:"column:is_active;default:true" json:"is_active"`
}

func (B2BCustomerDietaryPreference) TableName() string { return "b2b_customer_dietary_preferences" }
