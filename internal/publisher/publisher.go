package publisher

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"presyo-tracker/internal/analytics"
	"presyo-tracker/internal/views"
)

func init() {
	// Published documents carry prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Published document filenames, as the presentation layer reads them.
const (
	FileMatrix     = "market_comparison_data.json"
	FileDashboard  = "regional_dashboard.json"
	FileComparison = "commodity_comparison.json"
	FileRegionView = "region_view.json"
	FileSummary    = "summary_statistics.json"
	FileFlatCSV    = "commodity_prices_history.csv"
)

// Failure records one document that could not be written. Other documents
// still publish.
type Failure struct {
	Name string
	Err  error
}

// Publisher serializes the built documents to the output directory. Each
// file is written to a temp path and renamed into place, so a failed
// serialization never leaves a truncated document and the previous run's
// file survives.
type Publisher struct {
	dir    string
	logger zerolog.Logger
}

// New constructs a publisher for the given output directory.
func New(dir string, logger zerolog.Logger) *Publisher {
	return &Publisher{dir: dir, logger: logger.With().Str("component", "publisher").Logger()}
}

// Publish writes every document, collecting per-document failures instead
// of aborting on the first. The returned error is fatal (output directory
// unusable); the failure list covers partial problems.
func (p *Publisher) Publish(docs *views.Documents, series []analytics.Series, cfg analytics.Config) ([]Failure, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var failures []Failure
	record := func(name string, err error) {
		if err == nil {
			p.logger.Info().Str("document", name).Msg("published")
			return
		}
		p.logger.Error().Str("document", name).Err(err).Msg("failed to publish")
		failures = append(failures, Failure{Name: name, Err: err})
	}

	record(FileMatrix, p.writeJSON(FileMatrix, docs.Matrix))
	record(FileDashboard, p.writeJSON(FileDashboard, docs.Dashboard))
	record(FileComparison, p.writeJSON(FileComparison, docs.Comparison))
	record(FileRegionView, p.writeJSON(FileRegionView, docs.RegionView))
	record(FileSummary, p.writeJSON(FileSummary, docs.Summary))
	record(FileFlatCSV, p.writeFlatCSV(series, cfg))

	return failures, nil
}

func (p *Publisher) writeJSON(name string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(p.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// writeFlatCSV streams the history table row by row rather than building
// it in memory.
func (p *Publisher) writeFlatCSV(series []analytics.Series, cfg analytics.Config) error {
	path := filepath.Join(p.dir, FileFlatCSV)
	tmp := path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", FileFlatCSV, err)
	}

	writer := csv.NewWriter(file)
	writeErr := writer.Write(views.FlatHeader)
	if writeErr == nil {
		writeErr = views.StreamFlat(series, cfg, writer.Write)
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", FileFlatCSV, writeErr)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", FileFlatCSV, err)
	}
	return nil
}
