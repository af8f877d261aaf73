package market

import (
	"time"

	"github.com/shopspring/decimal"

	"presyo-tracker/internal/fetcher"
	"presyo-tracker/internal/registry"
)

// Observation is the atomic fact: one priced (or null-priced) data point
// for a commodity at one market on one date. Observations are produced
// fresh each run and never mutated; a re-run for the same date overwrites
// by key.
type Observation struct {
	RegionID      registry.RegionID
	Region        string
	Category      string
	CategoryLabel string
	Commodity     string
	Specification string
	Unit          string
	Market        string
	Date          time.Time
	Price         *decimal.Decimal
}

// Snapshot pairs one successfully extracted table with the region and
// category it was fetched for.
type Snapshot struct {
	Region   registry.Region
	Category registry.Category
	Table    *fetcher.Table
}

// Day truncates a timestamp to midnight UTC, the granularity all
// observations are keyed at.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey renders an observation date in the form used across the
// published documents.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
