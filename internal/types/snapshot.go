package types

import (
	"time"

	"github.com/google/uuid"
)

/*
Aggregate snapshots are the unit handed from the loader to the graph writer:
one fully assembled, read-once view of everything the projection needs for a
single aggregate. A snapshot belongs to exactly one event's processing and is
discarded afterwards; nothing caches or shares one across events.

Each aggregate kind gets its own struct rather than a generic map so the
statement builders can be checked exhaustively against the shape they project.
*/

// ConditionAssociation is a customer→condition edge plus the catalog entry it
// points at (Name may be nil when the catalog row vanished mid-read).
type ConditionAssociation struct {
	ConditionID   uuid.UUID
	Name          *string
	Severity      *string
	DiagnosisDate *time.Time
	IsActive      bool
	Notes         *string
}

type AllergenAssociation struct {
	AllergenID          uuid.UUID
	Name                *string
	Severity            *string
	DiagnosisDate       *time.Time
	IsActive            bool
	ReactionDescription *string
}

type DietAssociation struct {
	DietID     uuid.UUID
	Name       *string
	Strictness *string
	StartDate  *time.Time
	IsActive   bool
}

type B2CSnapshot struct {
	Customer         B2CCustomer
	Household        Household
	Profile          *B2CHealthProfile
	Conditions       []ConditionAssociation
	Allergens        []AllergenAssociation
	Diets            []DietAssociation
	HouseholdPrefs   []HouseholdPreference
	HouseholdBudgets []HouseholdBudget
}

type B2BSnapshot struct {
	Customer   B2BCustomer
	Vendor     Vendor
	Profile    *B2BHealthProfile
	Conditions []ConditionAssociation
	Allergens  []AllergenAssociation
	Diets      []DietAssociation
}

type HouseholdSnapshot struct {
	Household Household
	Prefs     []HouseholdPreference
	Budgets   []HouseholdBudget
}
