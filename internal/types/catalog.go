package types

import (
	"github.com/google/uuid"
)

// Catalog rows are shared reference data. The worker only ever reads them
// through the association joins; their graph nodes are merged
// non-destructively so a projection carrying no name never blanks one
// written earlier.

type HealthCondition struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null" json:"name"`
}

func (HealthCondition) TableName() string { return "health_conditions" }

type Allergen struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null" json:"name"`
}

func (Allergen) TableName() string { return "allergens" }

type DietaryPreference struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"column:name;not null" json:"name"`
}

func (DietaryPreference) TableName() string { return "dietary_preferences" }

type Vendor struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	VendorType *string   `gorm:"column:vendor_type" json:"vendor_type,omitempty"`
	Slug       *string   `gorm:"column:slug" json:"slug,omitempty"`
}

func (Vendor) TableName() string { return "vendors" }
