package views

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"presyo-tracker/internal/analytics"
	"presyo-tracker/internal/market"
)

const (
	dataSourceName = "Philippine Department of Agriculture - Bantay Presyo"
	dataSourceURL  = "http://www.bantaypresyo.da.gov.ph/"
)

// Input is everything the builder needs for one run. Metrics is parallel
// to Series. Snapshots carry the raw per-pair tables for the matrix
// document and the empty region-view entries.
type Input struct {
	Series              []analytics.Series
	Metrics             []analytics.Metrics
	Snapshots           []market.Snapshot
	GeneratedAt         time.Time
	RegionsAttempted    int
	CategoriesAttempted int
}

// Builder assembles the published documents. Pure and deterministic:
// identical input always produces identical documents.
type Builder struct {
	topN int
}

// NewBuilder constructs a builder; topN bounds the highlight lists.
func NewBuilder(topN int) *Builder {
	if topN <= 0 {
		topN = 10
	}
	return &Builder{topN: topN}
}

// Build produces every document except the flat export, which streams
// separately.
func (b *Builder) Build(in Input) *Documents {
	dashboard := buildDashboard(in)
	return &Documents{
		Dashboard:  dashboard,
		RegionView: buildRegionView(dashboard, in.Snapshots),
		Comparison: buildComparison(dashboard),
		Summary:    b.buildSummary(dashboard, in),
		Matrix:     buildMatrix(in.Snapshots),
	}
}

func buildDashboard(in Input) []DashboardItem {
	items := make([]DashboardItem, 0, len(in.Series))
	for i, s := range in.Series {
		m := in.Metrics[i]
		item := DashboardItem{
			Region:          s.Region,
			Category:        s.CategoryLabel,
			Commodity:       s.Commodity,
			Specification:   s.Specification,
			Unit:            s.Unit,
			LatestPrice:     m.LatestPrice,
			LatestDate:      market.DateKey(m.Date),
			MA7:             m.MAShort,
			MA30:            m.MALong,
			Change7dPct:     m.ChangeShortPct,
			Change30dPct:    m.ChangeLongPct,
			Volatility30d:   m.Volatility,
			VolatilityValue: m.VolatilityCV,
			VolatilityScore: m.VolatilityScore,
			MomentumPct:     m.MomentumPct,
			Trend:           trendEntries(m.Trend),
			PriceMin:        s.LatestMin,
			PriceMax:        s.LatestMax,
			MarketsCount:    s.LatestMarketCount,
		}
		items = append(items, item)
	}
	return items
}

func trendEntries(trend []analytics.TrendPoint) []TrendEntry {
	out := make([]TrendEntry, 0, len(trend))
	for _, p := range trend {
		out = append(out, TrendEntry{Date: market.DateKey(p.Date), Price: p.Price})
	}
	return out
}

// buildRegionView regroups dashboard items region-first, then category.
// Every fetched (region, category) pair gets an entry even when the table
// carried zero rows, so a region that skips a category shows up empty
// instead of crashing the drill-down.
func buildRegionView(items []DashboardItem, snapshots []market.Snapshot) map[string]*RegionEntry {
	view := make(map[string]*RegionEntry)

	ensure := func(region string) *RegionEntry {
		entry, ok := view[region]
		if !ok {
			entry = &RegionEntry{Region: region, Categories: make(map[string][]RegionCommodity)}
			view[region] = entry
		}
		return entry
	}

	for _, snap := range snapshots {
		entry := ensure(snap.Region.Name)
		if _, ok := entry.Categories[snap.Category.Label]; !ok {
			entry.Categories[snap.Category.Label] = []RegionCommodity{}
		}
		if snap.Table != nil && !snap.Table.ReportDate.IsZero() {
			if key := market.DateKey(snap.Table.ReportDate); key > entry.LatestDate {
				entry.LatestDate = key
			}
		}
	}

	for _, item := range items {
		entry := ensure(item.Region)
		entry.Categories[item.Category] = append(entry.Categories[item.Category], RegionCommodity{
			Commodity:       item.Commodity,
			Specification:   item.Specification,
			Unit:            item.Unit,
			LatestPrice:     item.LatestPrice,
			Change7dPct:     item.Change7dPct,
			Change30dPct:    item.Change30dPct,
			VolatilityScore: item.VolatilityScore,
			MomentumPct:     item.MomentumPct,
			Trend:           item.Trend,
		})
		if item.LatestDate > entry.LatestDate {
			entry.LatestDate = item.LatestDate
		}
	}

	return view
}

// buildComparison ranks each commodity across the regions carrying it.
// Regions whose latest observation is unpriced are excluded from the
// rankings; they lack the commodity for comparison purposes.
func buildComparison(items []DashboardItem) map[string]*ComparisonEntry {
	grouped := make(map[string][]DashboardItem)
	var order []string
	for _, item := range items {
		if item.LatestPrice == nil {
			continue
		}
		if _, ok := grouped[item.Commodity]; !ok {
			order = append(order, item.Commodity)
		}
		grouped[item.Commodity] = append(grouped[item.Commodity], item)
	}

	comparison := make(map[string]*ComparisonEntry, len(grouped))
	for _, commodity := range order {
		members := grouped[commodity]

		trends := make([]RegionalTrend, 0, len(members))
		prices := make([]decimal.Decimal, 0, len(members))
		for _, it := range members {
			prices = append(prices, *it.LatestPrice)
			trends = append(trends, RegionalTrend{
				Region:          it.Region,
				LatestPrice:     *it.LatestPrice,
				Change7dPct:     it.Change7dPct,
				Change30dPct:    it.Change30dPct,
				VolatilityScore: it.VolatilityScore,
				VolatilityValue: it.VolatilityValue,
				MomentumPct:     it.MomentumPct,
			})
		}

		sort.SliceStable(trends, func(i, j int) bool {
			if !trends[i].LatestPrice.Equal(trends[j].LatestPrice) {
				return trends[i].LatestPrice.LessThan(trends[j].LatestPrice)
			}
			return trends[i].Region < trends[j].Region
		})
		for i := range trends {
			trends[i].Rank = i + 1
		}

		stability := make([]StabilityEntry, 0, len(members))
		for _, it := range members {
			stability = append(stability, StabilityEntry{
				Region:          it.Region,
				VolatilityScore: it.VolatilityScore,
				VolatilityValue: it.VolatilityValue,
			})
		}
		sort.SliceStable(stability, func(i, j int) bool {
			a, b := stability[i].VolatilityValue, stability[j].VolatilityValue
			switch {
			case a == nil && b == nil:
				return stability[i].Region < stability[j].Region
			case a == nil:
				return false
			case b == nil:
				return true
			case !a.Equal(*b):
				return a.LessThan(*b)
			default:
				return stability[i].Region < stability[j].Region
			}
		})
		for i := range stability {
			stability[i].Rank = i + 1
		}

		comparison[commodity] = &ComparisonEntry{
			Commodity:        commodity,
			Category:         members[0].Category,
			Unit:             members[0].Unit,
			LatestDate:       members[0].LatestDate,
			NationalStats:    nationalStats(prices),
			RegionalTrends:   trends,
			StabilityRanking: stability,
		}
	}

	return comparison
}

func nationalStats(prices []decimal.Decimal) NationalStats {
	minP, maxP := prices[0], prices[0]
	sum := decimal.Zero
	for _, p := range prices {
		if p.LessThan(minP) {
			minP = p
		}
		if p.GreaterThan(maxP) {
			maxP = p
		}
		sum = sum.Add(p)
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(prices)))).Round(2)

	gap := decimal.Zero
	if minP.IsPositive() {
		gap = maxP.Sub(minP).Div(minP).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return NationalStats{MinPrice: minP, MaxPrice: maxP, AvgPrice: avg, PriceGapPct: gap}
}

func (b *Builder) buildSummary(items []DashboardItem, in Input) Summary {
	regions := map[string]struct{}{}
	commodities := map[string]struct{}{}
	categories := map[string]struct{}{}
	latest := ""
	for _, it := range items {
		regions[it.Region] = struct{}{}
		commodities[it.Commodity] = struct{}{}
		categories[it.Category] = struct{}{}
		if it.LatestDate > latest {
			latest = it.LatestDate
		}
	}

	markets := map[string]struct{}{}
	regionsWithData := map[string]struct{}{}
	for _, snap := range in.Snapshots {
		if snap.Table == nil {
			continue
		}
		for _, m := range snap.Table.Markets {
			markets[m] = struct{}{}
		}
		if len(snap.Table.Rows) > 0 {
			regionsWithData[snap.Region.Name] = struct{}{}
		}
	}

	catNames := make([]string, 0, len(categories))
	for c := range categories {
		catNames = append(catNames, c)
	}
	sort.Strings(catNames)

	catStats := make(map[string]CategoryStats, len(catNames))
	for _, cat := range catNames {
		var prices []decimal.Decimal
		catCommodities := map[string]struct{}{}
		for _, it := range items {
			if it.Category != cat || it.LatestPrice == nil {
				continue
			}
			prices = append(prices, *it.LatestPrice)
			catCommodities[it.Commodity] = struct{}{}
		}
		if len(prices) == 0 {
			continue
		}
		stats := nationalStats(prices)
		catStats[cat] = CategoryStats{
			Commodities: len(catCommodities),
			MinPrice:    stats.MinPrice,
			MaxPrice:    stats.MaxPrice,
			AvgPrice:    stats.AvgPrice,
			MedianPrice: median(prices),
		}
	}

	return Summary{
		Metadata: SummaryMetadata{
			DataSource:          dataSourceName,
			SourceURL:           dataSourceURL,
			GeneratedDate:       in.GeneratedAt.UTC().Format("2006-01-02 15:04:05"),
			LatestDataDate:      latest,
			RegionsCount:        len(regions),
			RegionsAttempted:    in.RegionsAttempted,
			RegionsWithData:     len(regionsWithData),
			CommoditiesCount:    len(commodities),
			MarketsCount:        len(markets),
			Categories:          catNames,
			CategoriesAttempted: in.CategoriesAttempted,
		},
		Body: SummaryBody{
			TotalRecords:          len(items),
			LatestDate:            latest,
			PriceRangesByCategory: catStats,
			MostVolatile:          b.mostVolatile(items),
			MostStable:            b.mostStable(items),
			BiggestIncreases7d:    b.movers(items, true),
			BiggestDecreases7d:    b.movers(items, false),
		},
	}
}

// Highlight ties break by stable input order: first-seen wins, so repeated
// runs over identical input rank identically.
func (b *Builder) mostVolatile(items []DashboardItem) []VolatilityHighlight {
	var candidates []DashboardItem
	for _, it := range items {
		if it.VolatilityValue != nil {
			candidates = append(candidates, it)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].VolatilityValue.GreaterThan(*candidates[j].VolatilityValue)
	})
	return volatilityHighlights(candidates, b.topN)
}

func (b *Builder) mostStable(items []DashboardItem) []VolatilityHighlight {
	var candidates []DashboardItem
	for _, it := range items {
		if it.VolatilityValue != nil && it.VolatilityValue.IsPositive() {
			candidates = append(candidates, it)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].VolatilityValue.LessThan(*candidates[j].VolatilityValue)
	})
	return volatilityHighlights(candidates, b.topN)
}

func volatilityHighlights(items []DashboardItem, n int) []VolatilityHighlight {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]VolatilityHighlight, 0, len(items))
	for _, it := range items {
		out = append(out, VolatilityHighlight{
			Commodity:       it.Commodity,
			Region:          it.Region,
			VolatilityValue: *it.VolatilityValue,
			VolatilityScore: it.VolatilityScore,
		})
	}
	return out
}

func (b *Builder) movers(items []DashboardItem, up bool) []MoverHighlight {
	var candidates []DashboardItem
	for _, it := range items {
		if it.Change7dPct == nil || it.LatestPrice == nil {
			continue
		}
		if up && it.Change7dPct.IsPositive() {
			candidates = append(candidates, it)
		}
		if !up && it.Change7dPct.IsNegative() {
			candidates = append(candidates, it)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if up {
			return candidates[i].Change7dPct.GreaterThan(*candidates[j].Change7dPct)
		}
		return candidates[i].Change7dPct.LessThan(*candidates[j].Change7dPct)
	})
	if len(candidates) > b.topN {
		candidates = candidates[:b.topN]
	}
	out := make([]MoverHighlight, 0, len(candidates))
	for _, it := range candidates {
		out = append(out, MoverHighlight{
			Commodity:   it.Commodity,
			Region:      it.Region,
			Change7dPct: *it.Change7dPct,
			LatestPrice: *it.LatestPrice,
		})
	}
	return out
}

func buildMatrix(snapshots []market.Snapshot) Matrix {
	matrix := Matrix{Regions: make(map[string]map[string]MatrixCategory)}
	for _, snap := range snapshots {
		if snap.Table == nil {
			continue
		}
		regionBlock, ok := matrix.Regions[snap.Region.Name]
		if !ok {
			regionBlock = make(map[string]MatrixCategory)
			matrix.Regions[snap.Region.Name] = regionBlock
		}

		block := MatrixCategory{
			Markets:     append([]string{}, snap.Table.Markets...),
			Commodities: make([]MatrixRow, 0, len(snap.Table.Rows)),
		}
		if !snap.Table.ReportDate.IsZero() {
			block.Date = market.DateKey(snap.Table.ReportDate)
		}
		for _, row := range snap.Table.Rows {
			prices := make([]*decimal.Decimal, len(snap.Table.Markets))
			copy(prices, row.Prices)
			block.Commodities = append(block.Commodities, MatrixRow{
				Commodity:     row.Commodity,
				Specification: row.Specification,
				Prices:        prices,
			})
		}
		regionBlock[snap.Category.Label] = block
	}
	return matrix
}

func median(prices []decimal.Decimal) decimal.Decimal {
	sorted := append([]decimal.Decimal(nil), prices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2)).Round(2)
}
