package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"presyo-tracker/internal/market"
	"presyo-tracker/internal/registry"
)

// SeriesKey identifies one (region, category, commodity) history.
type SeriesKey struct {
	RegionID  registry.RegionID
	Category  string
	Commodity string
}

// Point is one dated value in a series: the mean of that date's non-null
// market prices. A nil price marks a date where every market reported no
// data; the hole stays visible to the gap-handling logic.
type Point struct {
	Date  time.Time
	Price *decimal.Decimal
}

// Series is the date-ordered observation history for one key. Dates are
// strictly increasing and deduplicated; when the same (date, market) cell
// arrives twice the later write wins.
type Series struct {
	Key           SeriesKey
	Region        string
	Category      string
	CategoryLabel string
	Commodity     string
	Specification string
	Unit          string
	Points        []Point

	// Market spread at the latest date, for the dashboard snapshot.
	LatestMarketCount int
	LatestMin         *decimal.Decimal
	LatestMax         *decimal.Decimal
}

// LatestDate returns the date of the most recent point, zero when empty.
func (s *Series) LatestDate() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// BuildSeries folds the full observation history into per-key series. The
// per-date series value is the mean of that date's priced markets. Output
// order is deterministic: region name, then category, then commodity.
func BuildSeries(observations []market.Observation) []Series {
	type dateCell struct {
		prices map[string]*decimal.Decimal // market name to last written price
	}
	type group struct {
		series Series
		dates  map[time.Time]*dateCell
	}

	groups := make(map[SeriesKey]*group)
	for _, obs := range observations {
		key := SeriesKey{RegionID: obs.RegionID, Category: obs.Category, Commodity: obs.Commodity}
		g, ok := groups[key]
		if !ok {
			g = &group{
				series: Series{
					Key:           key,
					Region:        obs.Region,
					Category:      obs.Category,
					CategoryLabel: obs.CategoryLabel,
					Commodity:     obs.Commodity,
					Specification: obs.Specification,
					Unit:          obs.Unit,
				},
				dates: make(map[time.Time]*dateCell),
			}
			groups[key] = g
		}

		date := market.Day(obs.Date)
		cell, ok := g.dates[date]
		if !ok {
			cell = &dateCell{prices: make(map[string]*decimal.Decimal)}
			g.dates[date] = cell
		}
		cell.prices[obs.Market] = obs.Price
	}

	out := make([]Series, 0, len(groups))
	for _, g := range groups {
		dates := make([]time.Time, 0, len(g.dates))
		for d := range g.dates {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		for _, d := range dates {
			g.series.Points = append(g.series.Points, Point{Date: d, Price: meanPrice(g.dates[d].prices)})
		}

		latest := g.dates[dates[len(dates)-1]]
		g.series.LatestMarketCount, g.series.LatestMin, g.series.LatestMax = marketSpread(latest.prices)

		out = append(out, g.series)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Commodity < b.Commodity
	})
	return out
}

// meanPrice averages the priced markets of one date; nil when every market
// reported no data.
func meanPrice(prices map[string]*decimal.Decimal) *decimal.Decimal {
	sum := decimal.Zero
	count := 0
	for _, p := range prices {
		if p == nil {
			continue
		}
		sum = sum.Add(*p)
		count++
	}
	if count == 0 {
		return nil
	}
	mean := sum.Div(decimal.NewFromInt(int64(count))).Round(2)
	return &mean
}

func marketSpread(prices map[string]*decimal.Decimal) (int, *decimal.Decimal, *decimal.Decimal) {
	var minP, maxP *decimal.Decimal
	count := 0
	for _, p := range prices {
		if p == nil {
			continue
		}
		count++
		if minP == nil || p.LessThan(*minP) {
			v := *p
			minP = &v
		}
		if maxP == nil || p.GreaterThan(*maxP) {
			v := *p
			maxP = &v
		}
	}
	return count, minP, maxP
}
