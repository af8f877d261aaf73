package market

import (
	"strings"
	"time"

	"presyo-tracker/internal/registry"
)

// Normalize flattens extracted snapshots into one observation per
// (region, category, commodity, market, date). Rows shorter than the
// market header are padded with null prices; nothing is dropped for a
// missing or unparsable price. Commodity identity is the exact source
// spelling: a renamed commodity starts a new series.
func Normalize(snaps []Snapshot, referenceDate time.Time, reg *registry.Registry) []Observation {
	fallback := Day(referenceDate)

	var out []Observation
	for _, snap := range snaps {
		if snap.Table == nil {
			continue
		}

		date := fallback
		if !snap.Table.ReportDate.IsZero() {
			date = Day(snap.Table.ReportDate)
		}

		for _, row := range snap.Table.Rows {
			unit := inferUnit(row.Specification, row.Commodity, reg)

			for i, mkt := range snap.Table.Markets {
				obs := Observation{
					RegionID:      snap.Region.ID,
					Region:        snap.Region.Name,
					Category:      snap.Category.Slug,
					CategoryLabel: snap.Category.Label,
					Commodity:     row.Commodity,
					Specification: row.Specification,
					Unit:          unit,
					Market:        mkt,
					Date:          date,
				}
				if i < len(row.Prices) {
					obs.Price = row.Prices[i]
				}
				out = append(out, obs)
			}
		}
	}
	return out
}

// inferUnit reads the unit out of the free-text specification, falling
// back to the registry's canonical unit and finally to the kilogram every
// category defaults to.
func inferUnit(spec, commodity string, reg *registry.Registry) string {
	lower := strings.ToLower(spec)
	switch {
	case strings.Contains(lower, "kg"):
		return "kg"
	case strings.Contains(lower, "piece"), strings.Contains(lower, "pc"):
		return "pc"
	case strings.Contains(lower, "sack"):
		return "sack"
	case strings.Contains(lower, "tray"):
		return "tray"
	}
	if reg != nil {
		if unit := reg.UnitFor(commodity); unit != "" {
			return unit
		}
	}
	return "kg"
}
