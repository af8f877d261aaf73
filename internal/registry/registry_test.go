package registry

import "testing"

func TestDefaultRegistryShape(t *testing.T) {
	r := Default()

	regions := r.Regions()
	if len(regions) != 17 {
		t.Fatalf("regions = %d, want 17", len(regions))
	}
	for i := 1; i < len(regions); i++ {
		if regions[i-1].ID >= regions[i].ID {
			t.Fatalf("regions not ordered by id: %v then %v", regions[i-1].ID, regions[i].ID)
		}
	}

	categories := r.Categories()
	if len(categories) != 5 {
		t.Fatalf("categories = %d, want 5", len(categories))
	}
	if categories[0].Slug != "rice" || categories[0].Path != "/tbl_rice.php" {
		t.Fatalf("first category = %+v", categories[0])
	}

	if err := r.Validate(); err != nil {
		t.Fatalf("default registry must validate: %v", err)
	}
}

func TestApplyOverrides(t *testing.T) {
	r := Default()

	err := r.ApplyOverrides(
		map[string]string{"fish": "/tbl_fish_v2.php"},
		map[string]string{"5": "05"},
	)
	if err != nil {
		t.Fatalf("ApplyOverrides: %v", err)
	}

	cat, _ := r.CategoryBySlug("fish")
	if cat.Path != "/tbl_fish_v2.php" {
		t.Fatalf("category path = %q", cat.Path)
	}
	reg, _ := r.RegionByID(5)
	if reg.Param != "05" {
		t.Fatalf("region param = %q", reg.Param)
	}

	// The slice views must see the override too.
	for _, c := range r.Categories() {
		if c.Slug == "fish" && c.Path != "/tbl_fish_v2.php" {
			t.Fatalf("categories slice stale: %+v", c)
		}
	}
}

func TestApplyOverridesRejectsUnknownKeys(t *testing.T) {
	if err := Default().ApplyOverrides(map[string]string{"bread": "/x"}, nil); err == nil {
		t.Fatal("unknown category slug must be rejected")
	}
	if err := Default().ApplyOverrides(nil, map[string]string{"99": "x"}); err == nil {
		t.Fatal("unknown region id must be rejected")
	}
	if err := Default().ApplyOverrides(nil, map[string]string{"abc": "x"}); err == nil {
		t.Fatal("non-numeric region key must be rejected")
	}
}

func TestValidateFailsOnEmptyMappings(t *testing.T) {
	r := Default()
	if err := r.ApplyOverrides(map[string]string{"rice": ""}, nil); err != nil {
		t.Fatalf("override: %v", err)
	}
	if err := r.Validate(); err == nil {
		t.Fatal("empty category path must fail validation")
	}

	r = Default()
	if err := r.ApplyOverrides(nil, map[string]string{"3": ""}); err != nil {
		t.Fatalf("override: %v", err)
	}
	if err := r.Validate(); err == nil {
		t.Fatal("empty region param must fail validation")
	}
}

func TestUnitFor(t *testing.T) {
	r := Default()
	if got := r.UnitFor("Chicken Egg"); got != "pc" {
		t.Fatalf("UnitFor(Chicken Egg) = %q, want pc", got)
	}
	if got := r.UnitFor("Nonexistent"); got != "" {
		t.Fatalf("unknown commodity unit = %q, want empty", got)
	}
}
