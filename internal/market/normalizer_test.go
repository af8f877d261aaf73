package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"presyo-tracker/internal/fetcher"
	"presyo-tracker/internal/registry"
)

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func sampleSnapshot(reportDate time.Time) Snapshot {
	return Snapshot{
		Region:   registry.Region{ID: 13, Name: "NCR", Param: "13"},
		Category: registry.Category{Slug: "rice", Label: "Rice"},
		Table: &fetcher.Table{
			ReportDate: reportDate,
			Markets:    []string{"BALINTAWAK", "COMMONWEALTH", "MUNOZ"},
			Rows: []fetcher.Row{
				{Commodity: "Well-milled Rice", Specification: "1kg", Prices: []*decimal.Decimal{price("52.00"), nil, price("54.00")}},
				{Commodity: "Special Rice", Specification: "", Prices: []*decimal.Decimal{price("60.00")}},
			},
		},
	}
}

func TestNormalizeOneObservationPerMarket(t *testing.T) {
	reportDate := time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC)
	obs := Normalize([]Snapshot{sampleSnapshot(reportDate)}, time.Now(), registry.Default())

	if len(obs) != 6 {
		t.Fatalf("observations = %d, want 2 rows x 3 markets", len(obs))
	}
	for _, o := range obs {
		if !o.Date.Equal(reportDate) {
			t.Fatalf("date = %v, want the page's report date", o.Date)
		}
		if o.RegionID != 13 || o.Region != "NCR" || o.Category != "rice" {
			t.Fatalf("identity fields wrong: %+v", o)
		}
	}
}

func TestNormalizePadsShortRows(t *testing.T) {
	obs := Normalize([]Snapshot{sampleSnapshot(time.Time{})}, time.Now(), registry.Default())

	var special []Observation
	for _, o := range obs {
		if o.Commodity == "Special Rice" {
			special = append(special, o)
		}
	}
	if len(special) != 3 {
		t.Fatalf("padded row yields %d observations, want 3", len(special))
	}
	if special[0].Price == nil || special[1].Price != nil || special[2].Price != nil {
		t.Fatalf("missing prices must be nil, not dropped: %+v", special)
	}
}

func TestNormalizeReportDateFallback(t *testing.T) {
	runDate := time.Date(2025, time.August, 1, 9, 30, 0, 0, time.UTC)
	obs := Normalize([]Snapshot{sampleSnapshot(time.Time{})}, runDate, registry.Default())

	want := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	for _, o := range obs {
		if !o.Date.Equal(want) {
			t.Fatalf("date = %v, want run date truncated to midnight UTC", o.Date)
		}
	}
}

func TestInferUnit(t *testing.T) {
	reg := registry.Default()
	cases := []struct {
		spec, commodity, want string
	}{
		{"1kg", "Whatever", "kg"},
		{"per piece", "Whatever", "pc"},
		{"50kg sack", "Whatever", "kg"},
		{"per tray", "Whatever", "tray"},
		{"", "Chicken Egg", "pc"},
		{"", "Unknown Item", "kg"},
	}
	for _, c := range cases {
		if got := inferUnit(c.spec, c.commodity, reg); got != c.want {
			t.Fatalf("inferUnit(%q, %q) = %q, want %q", c.spec, c.commodity, got, c.want)
		}
	}
}
