package graph

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nutrigraph-worker/internal/types"
)

func strPtr(s string) *string { return &s }

func testB2CSnapshot() *types.B2CSnapshot {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &types.B2CSnapshot{
		Customer: types.B2CCustomer{
			ID:            uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			HouseholdID:   uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			FullName:      "Ada Example",
			AccountStatus: "active",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Household: types.Household{
			ID:            uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			HouseholdName: "Example Household",
			AccountStatus: "active",
			TotalMembers:  2,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		Conditions: []types.ConditionAssociation{
			{ConditionID: uuid.MustParse("33333333-3333-3333-3333-333333333333"), Name: strPtr("diabetes"), IsActive: true},
			{ConditionID: uuid.MustParse("44444444-4444-4444-4444-444444444444"), Name: strPtr("hypertension"), IsActive: true},
		},
		Diets: []types.DietAssociation{
			{DietID: uuid.MustParse("55555555-5555-5555-5555-555555555555"), Name: strPtr("vegan"), IsActive: true},
		},
	}
}

func findStatement(t *testing.T, stmts []Statement, substr string) (int, Statement) {
	t.Helper()
	for i, s := range stmts {
		if strings.Contains(s.Query, substr) {
			return i, s
		}
	}
	t.Fatalf("no statement containing %q", substr)
	return -1, Statement{}
}

func countStatements(stmts []Statement, substr string) int {
	n := 0
	for _, s := range stmts {
		if strings.Contains(s.Query, substr) {
			n++
		}
	}
	return n
}

func TestB2CStatementsDeleteEdgesBeforeRecreate(t *testing.T) {
	stmts := b2cStatements(testB2CSnapshot())

	delIdx, _ := findStatement(t, stmts, "[old:HAS_CONDITION]")
	recIdx, rec := findStatement(t, stmts, "UNWIND $conditions")
	if delIdx >= recIdx {
		t.Fatalf("condition delete (idx=%d) must precede recreate (idx=%d)", delIdx, recIdx)
	}

	rows, ok := rec.Params["conditions"].([]map[string]any)
	if !ok {
		t.Fatalf("conditions param type: %T", rec.Params["conditions"])
	}
	if len(rows) != 2 {
		t.Fatalf("condition rows: want=2 got=%d", len(rows))
	}
	if rows[0]["id"] != "33333333-3333-3333-3333-333333333333" {
		t.Fatalf("unexpected first condition id: %v", rows[0]["id"])
	}
}

func TestB2CStatementsShrunkSetProjectsExactly(t *testing.T) {
	snap := testB2CSnapshot()
	snap.Conditions = snap.Conditions[:1]

	_, rec := findStatement(t, b2cStatements(snap), "UNWIND $conditions")
	rows := rec.Params["conditions"].([]map[string]any)
	if len(rows) != 1 {
		t.Fatalf("condition rows after shrink: want=1 got=%d", len(rows))
	}
}

func TestB2CStatementsEmptyCollectionsStillDelete(t *testing.T) {
	snap := testB2CSnapshot()
	snap.Conditions = nil
	snap.Diets = nil

	stmts := b2cStatements(snap)
	findStatement(t, stmts, "[old:HAS_CONDITION]")
	findStatement(t, stmts, "[old:FOLLOWS_DIET]")
	if n := countStatements(stmts, "UNWIND $conditions"); n != 0 {
		t.Fatalf("empty condition set must not emit a recreate, got %d", n)
	}
	if n := countStatements(stmts, "UNWIND $diets"); n != 0 {
		t.Fatalf("empty diet set must not emit a recreate, got %d", n)
	}
	// Allergens were empty from the start: delete still runs so a previously
	// projected set is cleared.
	findStatement(t, stmts, "ALLERGIC_TO")
}

func TestB2CStatementsProfileAbsenceEmitsDeleteOnly(t *testing.T) {
	snap := testB2CSnapshot()
	snap.Profile = nil

	stmts := b2cStatements(snap)
	findStatement(t, stmts, "[oldHp:HAS_PROFILE]")
	if n := countStatements(stmts, "MERGE (p:B2CHealthProfile"); n != 0 {
		t.Fatalf("nil profile must not emit a profile merge, got %d", n)
	}
}

func TestB2CStatementsProfilePresenceRecreatesEdge(t *testing.T) {
	snap := testB2CSnapshot()
	height := 180.0
	snap.Profile = &types.B2CHealthProfile{
		ID:            uuid.MustParse("66666666-6666-6666-6666-666666666666"),
		B2CCustomerID: snap.Customer.ID,
		HeightCm:      &height,
	}

	stmts := b2cStatements(snap)
	delIdx, _ := findStatement(t, stmts, "[oldHp:HAS_PROFILE]")
	recIdx, rec := findStatement(t, stmts, "MERGE (p:B2CHealthProfile")
	if delIdx >= recIdx {
		t.Fatalf("profile delete (idx=%d) must precede recreate (idx=%d)", delIdx, recIdx)
	}
	profile := rec.Params["profile"].(map[string]any)
	if profile["height_cm"] != 180.0 {
		t.Fatalf("profile height: %v", profile["height_cm"])
	}
}

func TestCatalogNodesMergeNonDestructively(t *testing.T) {
	_, rec := findStatement(t, b2cStatements(testB2CSnapshot()), "UNWIND $conditions")
	if !strings.Contains(rec.Query, "coalesce(con.name, hc.name)") {
		t.Fatalf("catalog name must be set with coalesce, query:\n%s", rec.Query)
	}

	_, vend := findStatement(t, b2bStatements(testB2BSnapshot()), "MERGE (v:Vendor")
	if !strings.Contains(vend.Query, "coalesce($vendor.name, v.name)") {
		t.Fatalf("vendor name must be set with coalesce, query:\n%s", vend.Query)
	}
}

func TestStatementsAreDeterministic(t *testing.T) {
	a := b2cStatements(testB2CSnapshot())
	b := b2cStatements(testB2CSnapshot())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same snapshot must build identical statements")
	}
}

func testB2BSnapshot() *types.B2BSnapshot {
	return &types.B2BSnapshot{
		Customer: types.B2BCustomer{
			ID:       uuid.MustParse("77777777-7777-7777-7777-777777777777"),
			VendorID: uuid.MustParse("88888888-8888-8888-8888-888888888888"),
			FullName: "Grace Example",
		},
		Vendor: types.Vendor{
			ID:   uuid.MustParse("88888888-8888-8888-8888-888888888888"),
			Name: "Example Catering",
		},
	}
}

func TestB2BStatementsScopeVendorAndCollections(t *testing.T) {
	stmts := b2bStatements(testB2BSnapshot())
	findStatement(t, stmts, "BELONGS_TO_VENDOR")
	findStatement(t, stmts, "[old:HAS_CONDITION]")
	if n := countStatements(stmts, "HAS_PREFERENCE"); n != 0 {
		t.Fatalf("b2b projection must not touch household preferences")
	}
}

func TestHouseholdStatementsReplacePrefsAndBudgets(t *testing.T) {
	hhID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	snap := &types.HouseholdSnapshot{
		Household: types.Household{ID: hhID, HouseholdName: "Example Household"},
		Prefs: []types.HouseholdPreference{
			{ID: uuid.MustParse("99999999-9999-9999-9999-999999999999"), HouseholdID: hhID, PreferenceType: "cuisine", PreferenceValue: "thai"},
		},
	}

	stmts := householdStatements(snap)
	delIdx, _ := findStatement(t, stmts, "[old:HAS_PREFERENCE]")
	recIdx, rec := findStatement(t, stmts, "UNWIND $prefs")
	if delIdx >= recIdx {
		t.Fatalf("preference delete (idx=%d) must precede recreate (idx=%d)", delIdx, recIdx)
	}
	rows := rec.Params["prefs"].([]map[string]any)
	if len(rows) != 1 || rows[0]["preference_value"] != "thai" {
		t.Fatalf("unexpected pref rows: %+v", rows)
	}
	// No budgets in the snapshot: the delete still runs, nothing is recreated.
	findStatement(t, stmts, "[old:HAS_BUDGET]")
	if n := countStatements(stmts, "UNWIND $budgets"); n != 0 {
		t.Fatalf("empty budget set must not emit a recreate")
	}
}

func TestDetachDeleteStatement(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	stmt := detachDeleteStatement(LabelB2CCustomer, id)
	if !strings.Contains(stmt.Query, "DETACH DELETE") {
		t.Fatalf("query: %s", stmt.Query)
	}
	if stmt.Params["id"] != id.String() {
		t.Fatalf("id param: %v", stmt.Params["id"])
	}
}

func TestAllowedDeleteLabels(t *testing.T) {
	for _, label := range []string{LabelB2CCustomer, LabelB2BCustomer, LabelHousehold} {
		if !allowedDeleteLabel(label) {
			t.Fatalf("label %s should be deletable", label)
		}
	}
	if allowedDeleteLabel("HealthCondition") {
		t.Fatalf("catalog labels must never be detach-deleted")
	}
}
