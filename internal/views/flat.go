package views

import (
	"github.com/shopspring/decimal"

	"presyo-tracker/internal/analytics"
	"presyo-tracker/internal/market"
)

// FlatHeader is the column set of the flat export, the full history table
// with metrics as of each observation's own date.
var FlatHeader = []string{
	"date", "region", "category", "commodity", "specification", "unit",
	"price", "ma_7", "ma_30", "change_7d_pct", "change_30d_pct",
	"volatility_30d", "volatility_score", "momentum_pct",
}

// StreamFlat produces the flat export one row at a time so the heaviest
// document never materializes in memory. Rows stream in series order,
// chronologically within each series; an empty price column means the
// date's observation was null, not zero.
func StreamFlat(series []analytics.Series, cfg analytics.Config, write func(record []string) error) error {
	var walkErr error
	for _, s := range series {
		s := s
		analytics.WalkDates(s, cfg, func(m analytics.Metrics) {
			if walkErr != nil {
				return
			}
			record := []string{
				market.DateKey(m.Date),
				s.Region,
				s.CategoryLabel,
				s.Commodity,
				s.Specification,
				s.Unit,
				formatNullable(m.LatestPrice),
				formatNullable(m.MAShort),
				formatNullable(m.MALong),
				formatNullable(m.ChangeShortPct),
				formatNullable(m.ChangeLongPct),
				formatNullable(m.Volatility),
				m.VolatilityScore,
				formatNullable(m.MomentumPct),
			}
			walkErr = write(record)
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return nil
}

func formatNullable(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
