package registry

import (
	"fmt"
	"sort"
	"strconv"
)

// RegionID is the stable identifier the monitoring site uses in its query
// parameters (1..17).
type RegionID int

// Region is one administrative region tracked by the source site.
type Region struct {
	ID    RegionID
	Name  string
	Param string
}

// Category is one commodity category page on the source site.
type Category struct {
	Slug  string
	Label string
	Path  string
}

// Commodity is a canonical commodity name with its default retail unit.
type Commodity struct {
	Name     string
	Category string
	Unit     string
}

// Registry is the immutable set of regions, categories, and commodities the
// pipeline operates on. It is built once at startup; lookups elsewhere go
// through stable identifiers rather than string literals.
type Registry struct {
	regions     []Region
	categories  []Category
	commodities []Commodity

	regionByID     map[RegionID]Region
	categoryBySlug map[string]Category
	unitByName     map[string]string
}

// Default returns the registry with the compiled-in source mappings. Category
// paths and region parameters may be overridden from configuration before
// validation.
func Default() *Registry {
	r := &Registry{
		regions:     append([]Region(nil), defaultRegions...),
		categories:  append([]Category(nil), defaultCategories...),
		commodities: append([]Commodity(nil), defaultCommodities...),
	}
	r.reindex()
	return r
}

func (r *Registry) reindex() {
	r.regionByID = make(map[RegionID]Region, len(r.regions))
	for _, reg := range r.regions {
		r.regionByID[reg.ID] = reg
	}
	r.categoryBySlug = make(map[string]Category, len(r.categories))
	for _, cat := range r.categories {
		r.categoryBySlug[cat.Slug] = cat
	}
	r.unitByName = make(map[string]string, len(r.commodities))
	for _, c := range r.commodities {
		r.unitByName[c.Name] = c.Unit
	}
}

// ApplyOverrides replaces category paths and region query parameters with
// externally supplied mappings. Keys must reference known slugs/ids; the
// upstream site renames paths without notice, so these live in configuration.
func (r *Registry) ApplyOverrides(categoryPaths map[string]string, regionParams map[string]string) error {
	for slug, path := range categoryPaths {
		cat, ok := r.categoryBySlug[slug]
		if !ok {
			return fmt.Errorf("registry: unknown category %q in category_paths", slug)
		}
		cat.Path = path
		r.categoryBySlug[slug] = cat
		for i := range r.categories {
			if r.categories[i].Slug == slug {
				r.categories[i].Path = path
			}
		}
	}
	for key, param := range regionParams {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("registry: region_params key %q is not a region id", key)
		}
		reg, ok := r.regionByID[RegionID(id)]
		if !ok {
			return fmt.Errorf("registry: unknown region id %d in region_params", id)
		}
		reg.Param = param
		r.regionByID[RegionID(id)] = reg
		for i := range r.regions {
			if r.regions[i].ID == RegionID(id) {
				r.regions[i].Param = param
			}
		}
	}
	return nil
}

// Validate fails fast when any region or category is missing the mapping the
// extractor needs to build a request.
func (r *Registry) Validate() error {
	for _, cat := range r.categories {
		if cat.Path == "" {
			return fmt.Errorf("registry: category %q has no url path", cat.Slug)
		}
	}
	for _, reg := range r.regions {
		if reg.Param == "" {
			return fmt.Errorf("registry: region %d (%s) has no query parameter", reg.ID, reg.Name)
		}
	}
	return nil
}

// Regions returns all regions ordered by id.
func (r *Registry) Regions() []Region {
	out := append([]Region(nil), r.regions...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Categories returns all categories in their declared order.
func (r *Registry) Categories() []Category {
	return append([]Category(nil), r.categories...)
}

// Commodities returns the canonical commodity list in declared order.
func (r *Registry) Commodities() []Commodity {
	return append([]Commodity(nil), r.commodities...)
}

// RegionByID looks up a region.
func (r *Registry) RegionByID(id RegionID) (Region, bool) {
	reg, ok := r.regionByID[id]
	return reg, ok
}

// CategoryBySlug looks up a category.
func (r *Registry) CategoryBySlug(slug string) (Category, bool) {
	cat, ok := r.categoryBySlug[slug]
	return cat, ok
}

// UnitFor returns the canonical unit for a commodity name, or "" when the
// commodity is not in the registry.
func (r *Registry) UnitFor(commodity string) string {
	return r.unitByName[commodity]
}
