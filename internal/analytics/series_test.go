package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"presyo-tracker/internal/market"
	"presyo-tracker/internal/registry"
)

func obs(region string, regionID int, category, commodity, mkt string, date time.Time, price string) market.Observation {
	o := market.Observation{
		RegionID:  registry.RegionID(regionID),
		Region:    region,
		Category:  category,
		Commodity: commodity,
		Market:    mkt,
		Date:      date,
		Unit:      "kg",
	}
	if price != "" {
		d := decimal.RequireFromString(price)
		o.Price = &d
	}
	return o
}

func TestBuildSeriesMeanOfPricedMarkets(t *testing.T) {
	d := day(1)
	series := BuildSeries([]market.Observation{
		obs("NCR", 13, "rice", "Well-milled Rice", "A", d, "50"),
		obs("NCR", 13, "rice", "Well-milled Rice", "B", d, "54"),
		obs("NCR", 13, "rice", "Well-milled Rice", "C", d, ""),
	})

	if len(series) != 1 {
		t.Fatalf("series = %d, want 1", len(series))
	}
	s := series[0]
	if len(s.Points) != 1 {
		t.Fatalf("points = %d, want 1", len(s.Points))
	}
	if s.Points[0].Price == nil || s.Points[0].Price.StringFixed(2) != "52.00" {
		t.Fatalf("point = %v, want mean of priced markets 52.00", s.Points[0].Price)
	}
	if s.LatestMarketCount != 2 {
		t.Fatalf("market count = %d, want 2 priced markets", s.LatestMarketCount)
	}
	if s.LatestMin.StringFixed(2) != "50.00" || s.LatestMax.StringFixed(2) != "54.00" {
		t.Fatalf("spread = %v..%v", s.LatestMin, s.LatestMax)
	}
}

func TestBuildSeriesAllNullDateStaysVisible(t *testing.T) {
	series := BuildSeries([]market.Observation{
		obs("NCR", 13, "rice", "Well-milled Rice", "A", day(1), "50"),
		obs("NCR", 13, "rice", "Well-milled Rice", "A", day(2), ""),
		obs("NCR", 13, "rice", "Well-milled Rice", "B", day(2), ""),
	})

	s := series[0]
	if len(s.Points) != 2 {
		t.Fatalf("points = %d, want the null date kept", len(s.Points))
	}
	if s.Points[1].Price != nil {
		t.Fatalf("all-null date must stay nil, got %v", s.Points[1].Price)
	}
}

func TestBuildSeriesSplitsKeysAndSortsOutput(t *testing.T) {
	d := day(1)
	series := BuildSeries([]market.Observation{
		obs("NCR", 13, "rice", "Well-milled Rice", "A", d, "50"),
		obs("CAR", 14, "rice", "Well-milled Rice", "A", d, "48"),
		obs("NCR", 13, "fish", "Tilapia", "A", d, "140"),
	})

	if len(series) != 3 {
		t.Fatalf("series = %d, want one per (region, category, commodity)", len(series))
	}
	// Region name, then category, then commodity.
	if series[0].Region != "CAR" || series[1].Category != "fish" || series[2].Commodity != "Well-milled Rice" {
		t.Fatalf("order wrong: %s/%s, %s/%s, %s/%s",
			series[0].Region, series[0].Category,
			series[1].Region, series[1].Category,
			series[2].Region, series[2].Category)
	}
}

func TestBuildSeriesExactCommoditySpelling(t *testing.T) {
	d := day(1)
	series := BuildSeries([]market.Observation{
		obs("NCR", 13, "rice", "Well-milled Rice", "A", d, "50"),
		obs("NCR", 13, "rice", "Well-Milled Rice", "A", d, "50"),
	})
	if len(series) != 2 {
		t.Fatalf("series = %d, spelling variants must not merge", len(series))
	}
}

func TestBuildSeriesDatesSorted(t *testing.T) {
	series := BuildSeries([]market.Observation{
		obs("NCR", 13, "rice", "Well-milled Rice", "A", day(3), "52"),
		obs("NCR", 13, "rice", "Well-milled Rice", "A", day(1), "50"),
		obs("NCR", 13, "rice", "Well-milled Rice", "A", day(2), "51"),
	})

	s := series[0]
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i-1].Date.Before(s.Points[i].Date) {
			t.Fatalf("dates not strictly increasing: %v", s.Points)
		}
	}
	if !s.LatestDate().Equal(day(3)) {
		t.Fatalf("latest date = %v", s.LatestDate())
	}
}
