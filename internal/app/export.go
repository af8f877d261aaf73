package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"presyo-tracker/internal/analytics"
	"presyo-tracker/internal/registry"
)

// ExportOptions select one price series and where to render it.
type ExportOptions struct {
	RegionID  int
	Commodity string
	CSVPath   string
	PNGPath   string
	MaxPoints int
}

// Export renders the stored history of one (region, commodity) series as
// CSV and/or a PNG trend chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.Commodity == "" {
		return errors.New("--commodity is required")
	}

	region, ok := a.Registry.RegionByID(registry.RegionID(opts.RegionID))
	if !ok {
		return fmt.Errorf("unknown region id %d", opts.RegionID)
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	observations, err := store.ListSeriesObservations(ctx, region.ID, opts.Commodity)
	if err != nil {
		return err
	}

	series := pickSeries(analytics.BuildSeries(observations))
	if series == nil || len(series.Points) == 0 {
		a.Logger.Info().
			Str("region", region.Name).
			Str("commodity", opts.Commodity).
			Msg("no stored observations for series")
		return nil
	}

	cfg := analytics.Config{
		ShortWindow:      a.Config.Analytics.ShortWindow,
		LongWindow:       a.Config.Analytics.LongWindow,
		VolatilityWindow: a.Config.Analytics.VolatilityWindow,
		MinSamples:       a.Config.Analytics.MinSamples,
		TrendDays:        a.Config.Analytics.TrendDays,
	}

	rows := downsampleMetrics(collectMetrics(*series, cfg), opts.MaxPoints)
	a.Logger.Info().
		Str("region", region.Name).
		Str("commodity", series.Commodity).
		Int("total", len(series.Points)).
		Int("exported", len(rows)).
		Msg("exporting series")

	if opts.CSVPath != "" {
		if err := writeSeriesCSV(opts.CSVPath, *series, rows); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSeriesPNG(opts.PNGPath, *series, rows); err != nil {
			return err
		}
	}

	return nil
}

// pickSeries resolves commodity-name collisions across categories by
// preferring the series with the longest history.
func pickSeries(all []analytics.Series) *analytics.Series {
	var best *analytics.Series
	for i := range all {
		if best == nil || len(all[i].Points) > len(best.Points) {
			best = &all[i]
		}
	}
	return best
}

func collectMetrics(series analytics.Series, cfg analytics.Config) []analytics.Metrics {
	rows := make([]analytics.Metrics, 0, len(series.Points))
	analytics.WalkDates(series, cfg, func(m analytics.Metrics) {
		rows = append(rows, m)
	})
	return rows
}

func downsampleMetrics(rows []analytics.Metrics, max int) []analytics.Metrics {
	if max <= 0 || len(rows) <= max {
		return rows
	}

	result := make([]analytics.Metrics, 0, max)
	step := float64(len(rows)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(rows) {
			idx = len(rows) - 1
		}
		result = append(result, rows[idx])
	}
	return result
}

func writeSeriesCSV(path string, series analytics.Series, rows []analytics.Metrics) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "region", "commodity", "unit", "price", "ma_7", "ma_30", "change_7d_pct", "volatility_cv"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			series.Region,
			series.Commodity,
			series.Unit,
			nullableField(row.LatestPrice),
			nullableField(row.MAShort),
			nullableField(row.MALong),
			nullableField(row.ChangeShortPct),
			nullableField(row.VolatilityCV),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSeriesPNG(path string, series analytics.Series, rows []analytics.Metrics) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	// go-chart cannot express gaps, so only dates with a price are drawn.
	var x []time.Time
	var price []float64
	var maX []time.Time
	var ma []float64

	for _, row := range rows {
		if row.LatestPrice != nil {
			x = append(x, row.Date)
			price = append(price, row.LatestPrice.InexactFloat64())
		}
		if row.MAShort != nil {
			maX = append(maX, row.Date)
			ma = append(ma, row.MAShort.InexactFloat64())
		}
	}
	if len(x) < 2 {
		return errors.New("not enough priced observations to chart")
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%s)", series.Commodity, series.Region),
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("Price (PHP/%s)", series.Unit),
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Price",
				XValues: x,
				YValues: price,
			},
		},
	}
	if len(ma) >= 2 {
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    "7-day MA",
			XValues: maX,
			YValues: ma,
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
