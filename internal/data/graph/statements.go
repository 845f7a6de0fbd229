package graph

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nutrigraph-worker/internal/types"
)

const (
	LabelB2CCustomer = "B2CCustomer"
	LabelB2BCustomer = "B2BCustomer"
	LabelHousehold   = "Household"
)

// Statement is one parameterized cypher unit. A projection is an ordered
// list of statements executed inside a single managed write transaction;
// order matters because every collection relationship is deleted before it
// is recreated.
type Statement struct {
	Query  string
	Params map[string]any
}

/*
Statement builders are pure: snapshot in, statements out. All upserts MERGE
on the stable relational id, so replaying the same snapshot converges to the
same graph. Scalar attributes of primary and grouping nodes are set with
`+=` (last write wins, null clears); catalog nodes use coalesce so a
projection that carries no name never blanks one written earlier.
*/

func b2cStatements(snap *types.B2CSnapshot) []Statement {
	customerID := snap.Customer.ID.String()
	householdID := snap.Household.ID.String()

	stmts := []Statement{
		{
			Query: `
MERGE (h:Household {id: $household.id})
SET h += $household
MERGE (c:B2CCustomer {id: $customer.id})
SET c += $customer
MERGE (c)-[:BELONGS_TO_HOUSEHOLD]->(h)
`,
			Params: map[string]any{
				"household": householdProps(snap.Household),
				"customer":  b2cCustomerProps(snap.Customer),
			},
		},
	}

	stmts = append(stmts, profileReplaceStatements(
		LabelB2CCustomer, "B2CHealthProfile", customerID, b2cProfileProps(snap.Profile),
	)...)
	stmts = append(stmts, conditionReplaceStatements(LabelB2CCustomer, customerID, snap.Conditions)...)
	stmts = append(stmts, allergenReplaceStatements(LabelB2CCustomer, customerID, snap.Allergens)...)
	stmts = append(stmts, dietReplaceStatements(LabelB2CCustomer, customerID, snap.Diets)...)
	stmts = append(stmts, householdPrefReplaceStatements(householdID, snap.HouseholdPrefs)...)
	stmts = append(stmts, householdBudgetReplaceStatements(householdID, snap.HouseholdBudgets)...)
	return stmts
}

func b2bStatements(snap *types.B2BSnapshot) []Statement {
	customerID := snap.Customer.ID.String()

	stmts := []Statement{
		{
			Query: `
MERGE (v:Vendor {id: $vendor.id})
SET v.name = coalesce($vendor.name, v.name),
    v.vendor_type = coalesce($vendor.vendor_type, v.vendor_type),
    v.slug = coalesce($vendor.slug, v.slug)
MERGE (c:B2BCustomer {id: $customer.id})
SET c += $customer
MERGE (c)-[:BELONGS_TO_VENDOR]->(v)
`,
			Params: map[string]any{
				"vendor":   vendorProps(snap.Vendor),
				"customer": b2bCustomerProps(snap.Customer),
			},
		},
	}

	stmts = append(stmts, profileReplaceStatements(
		LabelB2BCustomer, "B2BHealthProfile", customerID, b2bProfileProps(snap.Profile),
	)...)
	stmts = append(stmts, conditionReplaceStatements(LabelB2BCustomer, customerID, snap.Conditions)...)
	stmts = append(stmts, allergenReplaceStatements(LabelB2BCustomer, customerID, snap.Allergens)...)
	stmts = append(stmts, dietReplaceStatements(LabelB2BCustomer, customerID, snap.Diets)...)
	return stmts
}

func householdStatements(snap *types.HouseholdSnapshot) []Statement {
	householdID := snap.Household.ID.String()

	stmts := []Statement{
		{
			Query: `
MERGE (h:Household {id: $household.id})
SET h += $household
`,
			Params: map[string]any{"household": householdProps(snap.Household)},
		},
	}
	stmts = append(stmts, householdPrefReplaceStatements(householdID, snap.Prefs)...)
	stmts = append(stmts, householdBudgetReplaceStatements(householdID, snap.Budgets)...)
	return stmts
}

func detachDeleteStatement(label string, id uuid.UUID) Statement {
	return Statement{
		Query:  "MATCH (n:" + label + " {id: $id}) DETACH DELETE n",
		Params: map[string]any{"id": id.String()},
	}
}

// profileReplaceStatements always deletes the existing HAS_PROFILE edge and
// recreates it only when the snapshot carries a profile, so profile absence
// is reflected rather than left stale. The orphaned profile node (if any) is
// left behind deliberately: a later projection for the same profile id would
// re-attach it, and tombstones detach-delete the whole neighborhood anyway.
func profileReplaceStatements(ownerLabel, profileLabel, ownerID string, profile map[string]any) []Statement {
	stmts := []Statement{
		{
			Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
OPTIONAL MATCH (c)-[oldHp:HAS_PROFILE]->(:` + profileLabel + `)
DELETE oldHp
`,
			Params: map[string]any{"owner_id": ownerID},
		},
	}
	if profile == nil {
		return stmts
	}
	return append(stmts, Statement{
		Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
MERGE (p:` + profileLabel + ` {id: $profile.id})
SET p += $profile
MERGE (c)-[:HAS_PROFILE]->(p)
`,
		Params: map[string]any{"owner_id": ownerID, "profile": profile},
	})
}

func conditionReplaceStatements(ownerLabel, ownerID string, conditions []types.ConditionAssociation) []Statement {
	stmts := []Statement{
		{
			Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
OPTIONAL MATCH (c)-[old:HAS_CONDITION]->(:HealthCondition)
DELETE old
`,
			Params: map[string]any{"owner_id": ownerID},
		},
	}
	if len(conditions) == 0 {
		return stmts
	}
	rows := make([]map[string]any, 0, len(conditions))
	for _, con := range conditions {
		rows = append(rows, map[string]any{
			"id":             con.ConditionID.String(),
			"name":           optional(con.Name),
			"severity":       optional(con.Severity),
			"diagnosis_date": optionalTime(con.DiagnosisDate),
			"is_active":      con.IsActive,
			"notes":          optional(con.Notes),
		})
	}
	return append(stmts, Statement{
		Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
UNWIND $conditions AS con
MERGE (hc:HealthCondition {id: con.id})
SET hc.name = coalesce(con.name, hc.name)
MERGE (c)-[rel:HAS_CONDITION]->(hc)
SET rel.severity = con.severity,
    rel.diagnosis_date = con.diagnosis_date,
    rel.is_active = con.is_active,
    rel.notes = con.notes
`,
		Params: map[string]any{"owner_id": ownerID, "conditions": rows},
	})
}

func allergenReplaceStatements(ownerLabel, ownerID string, allergens []types.AllergenAssociation) []Statement {
	stmts := []Statement{
		{
			Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
OPTIONAL MATCH (old:Allergen)<-[oldRel:ALLERGIC_TO]-(c)
DELETE oldRel
`,
			Params: map[string]any{"owner_id": ownerID},
		},
	}
	if len(allergens) == 0 {
		return stmts
	}
	rows := make([]map[string]any, 0, len(allergens))
	for _, al := range allergens {
		rows = append(rows, map[string]any{
			"id":                   al.AllergenID.String(),
			"name":                 optional(al.Name),
			"severity":             optional(al.Severity),
			"diagnosis_date":       optionalTime(al.DiagnosisDate),
			"is_active":            al.IsActive,
			"reaction_description": optional(al.ReactionDescription),
		})
	}
	return append(stmts, Statement{
		Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
UNWIND $allergens AS al
MERGE (a:Allergen {id: al.id})
SET a.name = coalesce(al.name, a.name)
MERGE (c)-[rel:ALLERGIC_TO]->(a)
SET rel.severity = al.severity,
    rel.diagnosis_date = al.diagnosis_date,
    rel.is_active = al.is_active,
    rel.reaction_description = al.reaction_description
`,
		Params: map[string]any{"owner_id": ownerID, "allergens": rows},
	})
}

func dietReplaceStatements(ownerLabel, ownerID string, diets []types.DietAssociation) []Statement {
	stmts := []Statement{
		{
			Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
OPTIONAL MATCH (c)-[old:FOLLOWS_DIET]->(:DietaryPreference)
DELETE old
`,
			Params: map[string]any{"owner_id": ownerID},
		},
	}
	if len(diets) == 0 {
		return stmts
	}
	rows := make([]map[string]any, 0, len(diets))
	for _, d := range diets {
		rows = append(rows, map[string]any{
			"id":         d.DietID.String(),
			"name":       optional(d.Name),
			"strictness": optional(d.Strictness),
			"start_date": optionalTime(d.StartDate),
			"is_active":  d.IsActive,
		})
	}
	return append(stmts, Statement{
		Query: `
MATCH (c:` + ownerLabel + ` {id: $owner_id})
UNWIND $diets AS d
MERGE (dp:DietaryPreference {id: d.id})
SET dp.name = coalesce(d.name, dp.name)
MERGE (c)-[rel:FOLLOWS_DIET]->(dp)
SET rel.strictness = d.strictness,
    rel.start_date = d.start_date,
    rel.is_active = d.is_active
`,
		Params: map[string]any{"owner_id": ownerID, "diets": rows},
	})
}

func householdPrefReplaceStatements(householdID string, prefs []types.HouseholdPreference) []Statement {
	stmts := []Statement{
		{
			Query: `
MATCH (h:Household {id: $household_id})
OPTIONAL MATCH (h)-[old:HAS_PREFERENCE]->(:HouseholdPreference)
DELETE old
`,
			Params: map[string]any{"household_id": householdID},
		},
	}
	if len(prefs) == 0 {
		return stmts
	}
	rows := make([]map[string]any, 0, len(prefs))
	for _, p := range prefs {
		rows = append(rows, map[string]any{
			"id":               p.ID.String(),
			"preference_type":  p.PreferenceType,
			"preference_value": p.PreferenceValue,
			"priority":         p.Priority,
			"created_at":       fmtTime(p.CreatedAt),
		})
	}
	return append(stmts, Statement{
		Query: `
MATCH (h:Household {id: $household_id})
UNWIND $prefs AS pref
MERGE (hp:HouseholdPreference {id: pref.id})
SET hp += pref
MERGE (h)-[:HAS_PREFERENCE]->(hp)
`,
		Params: map[string]any{"household_id": householdID, "prefs": rows},
	})
}

func householdBudgetReplaceStatements(householdID string, budgets []types.HouseholdBudget) []Statement {
	stmts := []Statement{
		{
			Query: `
MATCH (h:Household {id: $household_id})
OPTIONAL MATCH (h)-[old:HAS_BUDGET]->(:HouseholdBudget)
DELETE old
`,
			Params: map[string]any{"household_id": householdID},
		},
	}
	if len(budgets) == 0 {
		return stmts
	}
	rows := make([]map[string]any, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, map[string]any{
			"id":          b.ID.String(),
			"budget_type": b.BudgetType,
			"amount":      b.Amount,
			"currency":    b.Currency,
			"period":      b.Period,
			"start_date":  optionalTime(b.StartDate),
			"end_date":    optionalTime(b.EndDate),
			"is_active":   b.IsActive,
			"created_at":  fmtTime(b.CreatedAt),
		})
	}
	return append(stmts, Statement{
		Query: `
MATCH (h:Household {id: $household_id})
UNWIND $budgets AS b
MERGE (hb:HouseholdBudget {id: b.id})
SET hb += b
MERGE (h)-[:HAS_BUDGET]->(hb)
`,
		Params: map[string]any{"household_id": householdID, "budgets": rows},
	})
}

func householdProps(h types.Household) map[string]any {
	return map[string]any{
		"id":                   h.ID.String(),
		"household_name":       h.HouseholdName,
		"household_type":       h.HouseholdType,
		"account_status":       h.AccountStatus,
		"total_members":        h.TotalMembers,
		"location_country":     optional(h.LocationCountry),
		"location_region":      optional(h.LocationRegion),
		"location_city":        optional(h.LocationCity),
		"location_postal_code": optional(h.LocationPostalCode),
		"created_at":           fmtTime(h.CreatedAt),
		"updated_at":           fmtTime(h.UpdatedAt),
	}
}

func b2cCustomerProps(c types.B2CCustomer) map[string]any {
	return map[string]any{
		"id":               c.ID.String(),
		"full_name":        c.FullName,
		"first_name":       optional(c.FirstName),
		"last_name":        optional(c.LastName),
		"email":            optional(c.Email),
		"phone":            optional(c.Phone),
		"household_role":   optional(c.HouseholdRole),
		"birth_year":       optional(c.BirthYear),
		"birth_month":      optional(c.BirthMonth),
		"date_of_birth":    optionalTime(c.DateOfBirth),
		"age":              optional(c.Age),
		"gender":           optional(c.Gender),
		"is_profile_owner": c.IsProfileOwner,
		"account_status":   c.AccountStatus,
		"created_at":       fmtTime(c.CreatedAt),
		"updated_at":       fmtTime(c.UpdatedAt),
	}
}

func b2bCustomerProps(c types.B2BCustomer) map[string]any {
	return map[string]any{
		"id":             c.ID.String(),
		"full_name":      c.FullName,
		"email":          optional(c.Email),
		"phone":          optional(c.Phone),
		"external_id":    optional(c.ExternalID),
		"account_status": c.AccountStatus,
		"date_of_birth":  optionalTime(c.DateOfBirth),
		"gender":         optional(c.Gender),
		"created_at":     fmtTime(c.CreatedAt),
		"updated_at":     fmtTime(c.UpdatedAt),
	}
}

func vendorProps(v types.Vendor) map[string]any {
	return map[string]any{
		"id":          v.ID.String(),
		"name":        v.Name,
		"vendor_type": optional(v.VendorType),
		"slug":        optional(v.Slug),
	}
}

func b2cProfileProps(p *types.B2CHealthProfile) map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"id":               p.ID.String(),
		"height_cm":        optional(p.HeightCm),
		"weight_kg":        optional(p.WeightKg),
		"bmi":              optional(p.BMI),
		"bmr":              optional(p.BMR),
		"tdee":             optional(p.TDEE),
		"activity_level":   optional(p.ActivityLevel),
		"health_goal":      optional(p.HealthGoal),
		"target_weight_kg": optional(p.TargetWeightKg),
		"target_calories":  optional(p.TargetCalories),
		"target_protein_g": optional(p.TargetProteinG),
		"target_carbs_g":   optional(p.TargetCarbsG),
		"target_fat_g":     optional(p.TargetFatG),
		"target_fiber_g":   optional(p.TargetFiberG),
		"target_sodium_mg": optional(p.TargetSodiumMg),
		"target_sugar_g":   optional(p.TargetSugarG),
		"created_at":       fmtTime(p.CreatedAt),
		"updated_at":       fmtTime(p.UpdatedAt),
	}
}

func b2bProfileProps(p *types.B2BHealthProfile) map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"id":               p.ID.String(),
		"height_cm":        optional(p.HeightCm),
		"weight_kg":        optional(p.WeightKg),
		"bmi":              optional(p.BMI),
		"bmr":              optional(p.BMR),
		"tdee":             optional(p.TDEE),
		"activity_level":   optional(p.ActivityLevel),
		"health_goal":      optional(p.HealthGoal),
		"target_weight_kg": optional(p.TargetWeightKg),
		"target_calories":  optional(p.TargetCalories),
		"target_protein_g": optional(p.TargetProteinG),
		"target_carbs_g":   optional(p.TargetCarbsG),
		"target_fat_g":     optional(p.TargetFatG),
		"target_fiber_g":   optional(p.TargetFiberG),
		"target_sodium_mg": optional(p.TargetSodiumMg),
		"target_sugar_g":   optional(p.TargetSugarG),
		"created_at":       fmtTime(p.CreatedAt),
		"updated_at":       fmtTime(p.UpdatedAt),
	}
}

func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
