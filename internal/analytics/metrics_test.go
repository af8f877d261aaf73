package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(d int) time.Time {
	return time.Date(2025, time.July, d, 0, 0, 0, 0, time.UTC)
}

// pts builds a series from day-1-onward consecutive dates; "" marks a
// null-price day, "skip" omits the date entirely.
func pts(values ...string) []Point {
	var out []Point
	for i, v := range values {
		if v == "skip" {
			continue
		}
		p := Point{Date: day(i + 1)}
		if v != "" {
			d := decimal.RequireFromString(v)
			p.Price = &d
		}
		out = append(out, p)
	}
	return out
}

func metricsFor(points []Point, cfg Config) Metrics {
	return computeAt(points, len(points)-1, cfg)
}

func TestMovingAverageSkipsNulls(t *testing.T) {
	cfg := Config{ShortWindow: 3, LongWindow: 30, VolatilityWindow: 30, MinSamples: 5, TrendDays: 30}
	m := metricsFor(pts("10", "", "12"), cfg)

	if m.MAShort == nil || m.MAShort.StringFixed(2) != "11.00" {
		t.Fatalf("ma_3 over [10, null, 12] = %v, want 11.00", m.MAShort)
	}
}

func TestMovingAverageFewerThanWindow(t *testing.T) {
	cfg := DefaultConfig()
	m := metricsFor(pts("40", "44"), cfg)

	if m.MAShort == nil || m.MAShort.StringFixed(2) != "42.00" {
		t.Fatalf("ma_7 over 2 points = %v, want 42.00", m.MAShort)
	}
	if m.MALong == nil || m.MALong.StringFixed(2) != "42.00" {
		t.Fatalf("ma_30 over 2 points = %v, want 42.00", m.MALong)
	}
}

func TestMovingAverageAllNull(t *testing.T) {
	m := metricsFor(pts("", "", ""), DefaultConfig())
	if m.MAShort != nil || m.MALong != nil {
		t.Fatalf("all-null series must yield nil averages: %v %v", m.MAShort, m.MALong)
	}
}

func TestChangePctExactDateRequired(t *testing.T) {
	cfg := DefaultConfig()

	// 8 consecutive days: day 8 vs day 1 is the 7-day comparison.
	m := metricsFor(pts("100", "1", "1", "1", "1", "1", "1", "110"), cfg)
	if m.ChangeShortPct == nil || m.ChangeShortPct.StringFixed(2) != "10.00" {
		t.Fatalf("change_7d = %v, want 10.00", m.ChangeShortPct)
	}

	// Day 1 absent from the source entirely: no nearest-neighbor fallback.
	m = metricsFor(pts("skip", "1", "1", "1", "1", "1", "1", "110"), cfg)
	if m.ChangeShortPct != nil {
		t.Fatalf("change_7d with missing comparison date = %v, want nil", m.ChangeShortPct)
	}
}

func TestChangePctNullAndZeroGuards(t *testing.T) {
	cfg := DefaultConfig()

	// Comparison date present but null.
	m := metricsFor(pts("", "1", "1", "1", "1", "1", "1", "110"), cfg)
	if m.ChangeShortPct != nil {
		t.Fatalf("null comparison price must yield nil, got %v", m.ChangeShortPct)
	}

	// Zero divisor.
	m = metricsFor(pts("0", "1", "1", "1", "1", "1", "1", "110"), cfg)
	if m.ChangeShortPct != nil {
		t.Fatalf("zero comparison price must yield nil, got %v", m.ChangeShortPct)
	}

	// Latest price null.
	m = metricsFor(pts("100", "1", "1", "1", "1", "1", "1", ""), cfg)
	if m.ChangeShortPct != nil {
		t.Fatalf("null latest price must yield nil, got %v", m.ChangeShortPct)
	}
}

func TestVolatilityPopulationStddev(t *testing.T) {
	cfg := Config{ShortWindow: 7, LongWindow: 30, VolatilityWindow: 30, MinSamples: 5, TrendDays: 30}

	// [2,5,5,10,4,10]: mean 6, squared deviations 16+1+1+16+4+16 = 54,
	// population variance 9, stddev 3.
	m := metricsFor(pts("2", "5", "5", "10", "4", "10"), cfg)
	if m.Volatility == nil || m.Volatility.StringFixed(2) != "3.00" {
		t.Fatalf("population stddev = %v, want 3.00 (divide by n, not n-1)", m.Volatility)
	}
	if m.VolatilityCV == nil || m.VolatilityCV.StringFixed(2) != "50.00" {
		t.Fatalf("cv = %v, want 50.00", m.VolatilityCV)
	}
	if m.VolatilityScore != ScoreVeryHigh {
		t.Fatalf("score = %q, want Very High", m.VolatilityScore)
	}
}

func TestVolatilityInsufficientSamples(t *testing.T) {
	cfg := Config{ShortWindow: 7, LongWindow: 30, VolatilityWindow: 30, MinSamples: 5, TrendDays: 30}
	m := metricsFor(pts("50", "51", "52", "53"), cfg)

	if m.Volatility != nil || m.VolatilityCV != nil {
		t.Fatalf("4 samples under min 5 must yield nil volatility: %v %v", m.Volatility, m.VolatilityCV)
	}
	if m.VolatilityScore != ScoreInsufficient {
		t.Fatalf("score = %q, want Insufficient Data", m.VolatilityScore)
	}
}

func TestScoreCVBoundaries(t *testing.T) {
	cases := []struct {
		cv   string
		want string
	}{
		{"0.00", ScoreLow},
		{"1.99", ScoreLow},
		{"2.00", ScoreModerate},
		{"4.99", ScoreModerate},
		{"5.00", ScoreHigh},
		{"9.99", ScoreHigh},
		{"10.00", ScoreVeryHigh},
		{"25.00", ScoreVeryHigh},
	}
	for _, c := range cases {
		cv := decimal.RequireFromString(c.cv)
		if got := scoreCV(&cv, 10, 5); got != c.want {
			t.Fatalf("scoreCV(%s) = %q, want %q", c.cv, got, c.want)
		}
	}
}

func TestMomentum(t *testing.T) {
	short := decimal.RequireFromString("55")
	long := decimal.RequireFromString("50")

	got := momentum(&short, &long)
	if got == nil || got.StringFixed(2) != "10.00" {
		t.Fatalf("momentum = %v, want 10.00", got)
	}

	zero := decimal.Zero
	if momentum(&short, &zero) != nil {
		t.Fatal("zero long average must yield nil momentum")
	}
	if momentum(nil, &long) != nil || momentum(&short, nil) != nil {
		t.Fatal("nil averages must yield nil momentum")
	}
}

func TestTrendWindowAndGaps(t *testing.T) {
	cfg := Config{ShortWindow: 7, LongWindow: 30, VolatilityWindow: 30, MinSamples: 5, TrendDays: 3}

	// Days 1..5 with day 4 null; a 3-day trend from day 5 covers days 3..5.
	m := metricsFor(pts("10", "11", "12", "", "14"), cfg)

	if len(m.Trend) != 2 {
		t.Fatalf("trend = %v, want days 3 and 5 only", m.Trend)
	}
	if !m.Trend[0].Date.Equal(day(3)) || !m.Trend[1].Date.Equal(day(5)) {
		t.Fatalf("trend dates = %v %v", m.Trend[0].Date, m.Trend[1].Date)
	}
	if m.Trend[1].Price.StringFixed(2) != "14.00" {
		t.Fatalf("trend price = %v", m.Trend[1].Price)
	}
}

func TestWalkDatesVisitsEveryDate(t *testing.T) {
	cfg := DefaultConfig()
	s := Series{Points: pts("10", "11", "12")}

	var dates []time.Time
	WalkDates(s, cfg, func(m Metrics) {
		dates = append(dates, m.Date)
	})
	if len(dates) != 3 {
		t.Fatalf("walked %d dates, want 3", len(dates))
	}
	// The first visit sees only the first point.
	var first Metrics
	WalkDates(s, cfg, func(m Metrics) {
		if m.Date.Equal(day(1)) {
			first = m
		}
	})
	if first.MAShort == nil || first.MAShort.StringFixed(2) != "10.00" {
		t.Fatalf("metrics as of day 1 = %v, must not see later points", first.MAShort)
	}
}
