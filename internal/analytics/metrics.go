package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Volatility score labels, bucketed on the coefficient of variation so
// cheap and expensive commodities compare fairly.
const (
	ScoreLow          = "Low"
	ScoreModerate     = "Moderate"
	ScoreHigh         = "High"
	ScoreVeryHigh     = "Very High"
	ScoreInsufficient = "Insufficient Data"
)

var (
	cvLowMax      = decimal.NewFromInt(2)
	cvModerateMax = decimal.NewFromInt(5)
	cvHighMax     = decimal.NewFromInt(10)
	hundred       = decimal.NewFromInt(100)
)

// Config tunes the derived-metric windows.
type Config struct {
	ShortWindow      int
	LongWindow       int
	VolatilityWindow int
	MinSamples       int
	TrendDays        int
}

// DefaultConfig mirrors the published dashboard's windows.
func DefaultConfig() Config {
	return Config{ShortWindow: 7, LongWindow: 30, VolatilityWindow: 30, MinSamples: 5, TrendDays: 30}
}

// TrendPoint is one dated price in the trend sequence.
type TrendPoint struct {
	Date  time.Time
	Price decimal.Decimal
}

// Metrics are the derived values attached to a series at a given date.
// Nil fields mean the metric could not be computed, never zero.
type Metrics struct {
	Date            time.Time
	LatestPrice     *decimal.Decimal
	MAShort         *decimal.Decimal
	MALong          *decimal.Decimal
	ChangeShortPct  *decimal.Decimal
	ChangeLongPct   *decimal.Decimal
	Volatility      *decimal.Decimal
	VolatilityCV    *decimal.Decimal
	VolatilityScore string
	MomentumPct     *decimal.Decimal
	Trend           []TrendPoint
	SampleCount     int
}

// Compute derives the metrics for the most recent date of a series.
func Compute(s Series, cfg Config) Metrics {
	return computeAt(s.Points, len(s.Points)-1, cfg)
}

// WalkDates invokes fn for every date in the series with the metrics as of
// that date. The flat export streams these instead of materializing the
// full history table.
func WalkDates(s Series, cfg Config, fn func(Metrics)) {
	for i := range s.Points {
		fn(computeAt(s.Points, i, cfg))
	}
}

// computeAt derives metrics over points[:idx+1].
func computeAt(points []Point, idx int, cfg Config) Metrics {
	if idx < 0 || idx >= len(points) {
		return Metrics{VolatilityScore: ScoreInsufficient}
	}
	window := points[:idx+1]
	latest := window[len(window)-1]

	m := Metrics{
		Date:        latest.Date,
		LatestPrice: latest.Price,
		MAShort:     movingAverage(window, cfg.ShortWindow),
		MALong:      movingAverage(window, cfg.LongWindow),
		SampleCount: countPriced(window),
	}

	m.ChangeShortPct = changePct(window, cfg.ShortWindow)
	m.ChangeLongPct = changePct(window, cfg.LongWindow)

	m.Volatility, m.VolatilityCV = volatility(window, cfg.VolatilityWindow, cfg.MinSamples)
	m.VolatilityScore = scoreCV(m.VolatilityCV, m.SampleCount, cfg.MinSamples)

	m.MomentumPct = momentum(m.MAShort, m.MALong)
	m.Trend = trend(window, cfg.TrendDays)
	return m
}

// movingAverage is the mean of the last w priced points. With fewer than w
// priced points it averages however many exist; nil only when none exist.
func movingAverage(points []Point, w int) *decimal.Decimal {
	values := lastPriced(points, w)
	if len(values) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2)
	return &mean
}

// changePct is the percent delta between the latest priced point and the
// point exactly n calendar days earlier. No nearest-neighbor substitution:
// a missing or null comparison date, or a zero earlier price, yields nil.
func changePct(points []Point, n int) *decimal.Decimal {
	latest := points[len(points)-1]
	if latest.Price == nil {
		return nil
	}

	target := latest.Date.AddDate(0, 0, -n)
	var earlier *decimal.Decimal
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Date.Equal(target) {
			earlier = points[i].Price
			break
		}
		if points[i].Date.Before(target) {
			break
		}
	}
	if earlier == nil || earlier.IsZero() {
		return nil
	}

	pct := latest.Price.Sub(*earlier).Div(*earlier).Mul(hundred).Round(2)
	return &pct
}

// volatility is the population standard deviation of the trailing w priced
// points, plus the coefficient of variation (stddev / window mean x 100).
// Both nil below the minimum-sample threshold.
func volatility(points []Point, w, minSamples int) (*decimal.Decimal, *decimal.Decimal) {
	values := lastPriced(points, w)
	if len(values) < minSamples {
		return nil, nil
	}

	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	n := decimal.NewFromInt(int64(len(values)))
	mean := sum.Div(n)

	sqSum := decimal.Zero
	for _, v := range values {
		d := v.Sub(mean)
		sqSum = sqSum.Add(d.Mul(d))
	}
	variance := sqSum.Div(n)

	stddev := decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))

	var cv *decimal.Decimal
	if !mean.IsZero() {
		v := stddev.Div(mean).Mul(hundred).Round(2)
		cv = &v
	}

	rounded := stddev.Round(2)
	return &rounded, cv
}

// scoreCV buckets the coefficient of variation. Boundaries are the
// contract: exactly 2% is Moderate, exactly 5% High, exactly 10% Very
// High.
func scoreCV(cv *decimal.Decimal, samples, minSamples int) string {
	if samples < minSamples || cv == nil {
		return ScoreInsufficient
	}
	switch {
	case cv.LessThan(cvLowMax):
		return ScoreLow
	case cv.LessThan(cvModerateMax):
		return ScoreModerate
	case cv.LessThan(cvHighMax):
		return ScoreHigh
	default:
		return ScoreVeryHigh
	}
}

// momentum is the relative gap between the short and long moving averages,
// nil when the long average is nil or zero.
func momentum(maShort, maLong *decimal.Decimal) *decimal.Decimal {
	if maShort == nil || maLong == nil || maLong.IsZero() {
		return nil
	}
	pct := maShort.Sub(*maLong).Div(*maLong).Mul(hundred).Round(2)
	return &pct
}

// trend returns the priced points within the trailing trend window,
// counted in calendar days from the latest date. Days absent from the
// source are simply absent from the trend, never interpolated.
func trend(points []Point, days int) []TrendPoint {
	latest := points[len(points)-1].Date
	cutoff := latest.AddDate(0, 0, -(days - 1))

	var out []TrendPoint
	for _, p := range points {
		if p.Date.Before(cutoff) || p.Price == nil {
			continue
		}
		out = append(out, TrendPoint{Date: p.Date, Price: *p.Price})
	}
	return out
}

func lastPriced(points []Point, w int) []decimal.Decimal {
	values := make([]decimal.Decimal, 0, w)
	for i := len(points) - 1; i >= 0 && len(values) < w; i-- {
		if points[i].Price != nil {
			values = append(values, *points[i].Price)
		}
	}
	// restore chronological order
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
	return values
}

func countPriced(points []Point) int {
	n := 0
	for _, p := range points {
		if p.Price != nil {
			n++
		}
	}
	return n
}
