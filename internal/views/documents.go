package views

import (
	"github.com/shopspring/decimal"
)

// TrendEntry is one dated price in a published trend sequence.
type TrendEntry struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// DashboardItem is one flat record per (region, commodity) at the latest
// date, the primary explorer table of the dashboard.
type DashboardItem struct {
	Region          string           `json:"region"`
	Category        string           `json:"category"`
	Commodity       string           `json:"commodity"`
	Specification   string           `json:"specification"`
	Unit            string           `json:"unit"`
	LatestPrice     *decimal.Decimal `json:"latest_price"`
	LatestDate      string           `json:"latest_date"`
	MA7             *decimal.Decimal `json:"ma_7"`
	MA30            *decimal.Decimal `json:"ma_30"`
	Change7dPct     *decimal.Decimal `json:"change_7d_pct"`
	Change30dPct    *decimal.Decimal `json:"change_30d_pct"`
	Volatility30d   *decimal.Decimal `json:"volatility_30d"`
	VolatilityValue *decimal.Decimal `json:"volatility_value"`
	VolatilityScore string           `json:"volatility_score"`
	MomentumPct     *decimal.Decimal `json:"momentum_pct"`
	Trend           []TrendEntry     `json:"trend"`
	PriceMin        *decimal.Decimal `json:"price_min"`
	PriceMax        *decimal.Decimal `json:"price_max"`
	MarketsCount    int              `json:"markets_count"`
}

// RegionCommodity is a dashboard item regrouped under its region and
// category for drill-down navigation.
type RegionCommodity struct {
	Commodity       string           `json:"commodity"`
	Specification   string           `json:"specification"`
	Unit            string           `json:"unit"`
	LatestPrice     *decimal.Decimal `json:"latest_price"`
	Change7dPct     *decimal.Decimal `json:"change_7d_pct"`
	Change30dPct    *decimal.Decimal `json:"change_30d_pct"`
	VolatilityScore string           `json:"volatility_score"`
	MomentumPct     *decimal.Decimal `json:"momentum_pct"`
	Trend           []TrendEntry     `json:"trend"`
}

// RegionEntry groups one region's commodities by category. A category the
// region monitors but that yielded zero rows appears as an empty list, not
// a missing key.
type RegionEntry struct {
	Region     string                       `json:"region"`
	LatestDate string                       `json:"latest_date"`
	Categories map[string][]RegionCommodity `json:"categories"`
}

// NationalStats aggregates one commodity across every region carrying it.
type NationalStats struct {
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
	PriceGapPct decimal.Decimal `json:"price_gap_pct"`
}

// RegionalTrend is one region's entry in a commodity's cross-region
// ranking, ordered ascending by latest price.
type RegionalTrend struct {
	Rank            int              `json:"rank"`
	Region          string           `json:"region"`
	LatestPrice     decimal.Decimal  `json:"latest_price"`
	Change7dPct     *decimal.Decimal `json:"change_7d_pct"`
	Change30dPct    *decimal.Decimal `json:"change_30d_pct"`
	VolatilityScore string           `json:"volatility_score"`
	VolatilityValue *decimal.Decimal `json:"volatility_value"`
	MomentumPct     *decimal.Decimal `json:"momentum_pct"`
}

// StabilityEntry ranks regions by ascending volatility for a commodity;
// regions without a volatility value sort last.
type StabilityEntry struct {
	Rank            int              `json:"rank"`
	Region          string           `json:"region"`
	VolatilityScore string           `json:"volatility_score"`
	VolatilityValue *decimal.Decimal `json:"volatility_value"`
}

// ComparisonEntry is the commodity-centric comparison document value.
type ComparisonEntry struct {
	Commodity        string           `json:"commodity"`
	Category         string           `json:"category"`
	Unit             string           `json:"unit"`
	LatestDate       string           `json:"latest_date"`
	NationalStats    NationalStats    `json:"national_stats"`
	RegionalTrends   []RegionalTrend  `json:"regional_trends"`
	StabilityRanking []StabilityEntry `json:"stability_ranking"`
}

// CategoryStats summarises prices within one category.
type CategoryStats struct {
	Commodities int             `json:"commodities"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
	MedianPrice decimal.Decimal `json:"median_price"`
}

// VolatilityHighlight is one entry in the most/least volatile lists.
type VolatilityHighlight struct {
	Commodity       string          `json:"commodity"`
	Region          string          `json:"region"`
	VolatilityValue decimal.Decimal `json:"volatility_value"`
	VolatilityScore string          `json:"volatility_score"`
}

// MoverHighlight is one entry in the biggest-7-day-mover lists.
type MoverHighlight struct {
	Commodity   string          `json:"commodity"`
	Region      string          `json:"region"`
	Change7dPct decimal.Decimal `json:"change_7d_pct"`
	LatestPrice decimal.Decimal `json:"latest_price"`
}

// SummaryMetadata describes the run that produced the documents.
type SummaryMetadata struct {
	DataSource          string   `json:"data_source"`
	SourceURL           string   `json:"source_url"`
	GeneratedDate       string   `json:"generated_date"`
	LatestDataDate      string   `json:"latest_data_date"`
	RegionsCount        int      `json:"regions_count"`
	RegionsAttempted    int      `json:"regions_attempted"`
	RegionsWithData     int      `json:"regions_with_data"`
	CommoditiesCount    int      `json:"commodities_count"`
	MarketsCount        int      `json:"markets_count"`
	Categories          []string `json:"categories"`
	CategoriesAttempted int      `json:"categories_attempted"`
}

// SummaryBody carries the landing-page KPIs and highlight lists.
type SummaryBody struct {
	TotalRecords          int                      `json:"total_records"`
	LatestDate            string                   `json:"latest_date"`
	PriceRangesByCategory map[string]CategoryStats `json:"price_ranges_by_category"`
	MostVolatile          []VolatilityHighlight    `json:"most_volatile_commodities"`
	MostStable            []VolatilityHighlight    `json:"most_stable_commodities"`
	BiggestIncreases7d    []MoverHighlight         `json:"biggest_price_increases_7d"`
	BiggestDecreases7d    []MoverHighlight         `json:"biggest_price_decreases_7d"`
}

// Summary is the summary-statistics document.
type Summary struct {
	Metadata SummaryMetadata `json:"metadata"`
	Body     SummaryBody     `json:"summary_statistics"`
}

// MatrixRow is one commodity row of the raw market-comparison matrix, with
// prices aligned positionally with the market header. Null keeps "no
// data" distinct from a zero price.
type MatrixRow struct {
	Commodity     string             `json:"commodity"`
	Specification string             `json:"specification"`
	Prices        []*decimal.Decimal `json:"prices"`
}

// MatrixCategory is the per-(region, category) block of the matrix.
type MatrixCategory struct {
	Date        string      `json:"date"`
	Markets     []string    `json:"markets"`
	Commodities []MatrixRow `json:"commodities"`
}

// Matrix is the side-by-side market table the scrape produced, keyed by
// region then category, each block a market grid.
type Matrix struct {
	Regions map[string]map[string]MatrixCategory `json:"regions"`
}

// Documents bundles every published document of one run.
type Documents struct {
	Dashboard  []DashboardItem
	RegionView map[string]*RegionEntry
	Comparison map[string]*ComparisonEntry
	Summary    Summary
	Matrix     Matrix
}
