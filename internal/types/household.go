package types

import (
	"time"

	"github.com/google/uuid"
)

type Household struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdName      string    `gorm:"column:household_name;not null" json:"household_name"`
	HouseholdType      string    `gorm:"column:household_type" json:"household_type"`
	AccountStatus      string    `gorm:"column:account_status" json:"account_status"`
	TotalMembers       int       `gorm:"column:total_members" json:"total_members"`
	LocationCountry    *string   `gorm:"column:location_country" json:"location_country,omitempty"`
	LocationRegion     *string   `gorm:"column:location_region" json:"location_region,omitempty"`
	LocationCity       *string   `gorm:"column:location_city" json:"location_city,omitempty"`
	LocationPostalCode *string   `gorm:"column:location_postal_code" json:"location_postal_code,omitempty"`
	CreatedAt          time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Household) TableName() string { return "households" }

type HouseholdPreference struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID     uuid.UUID `gorm:"type:uuid;not null;index" json:"household_id"`
	PreferenceType  string    `gorm:"column:preference_type;not null" json:"preference_type"`
	PreferenceValue string    `gorm:"column:preference_value" json:"preference_value"`
	Priority        int       `gorm:"column:priority" json:"priority"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (HouseholdPreference) TableName() string { return "household_preferences" }

type HouseholdBudget struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HouseholdID uuid.UUID  `gorm:"type:uuid;not null;index" json:"household_id"`
	BudgetType  string     `gorm:"column:budget_type;not null" json:"budget_type"`
	Amount      float64    `gorm:"column:amount" json:"amount"`
	Currency    string     `gorm:"column:currency" json:"currency"`
	Period      string     `gorm:"column:period" json:"period"`
	StartDate   *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	IsActive    bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (HouseholdBudget) TableName() string { return "household_budgets" }
