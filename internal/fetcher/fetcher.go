package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"presyo-tracker/internal/registry"
)

// ErrNoTableFound indicates the page loaded but no table matched the
// expected price-grid shape. This usually means the upstream site changed
// its structure and is surfaced prominently, unlike transient fetch errors.
var ErrNoTableFound = errors.New("fetcher: no table matching expected shape")

// FetchError wraps a transient network or HTTP failure. Callers retry once
// with backoff, then skip the (region, category) pair.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable fetch failure rather than
// a structural parse problem.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// Row is one parsed commodity row: a name, a free-text specification, and
// one price per market column. A nil price means the source cell carried a
// not-available marker or was unparsable; it is never reported as zero.
type Row struct {
	Commodity     string
	Specification string
	Prices        []*decimal.Decimal
}

// Table is the parsed price grid for one (region, category) page.
type Table struct {
	ReportDate time.Time
	Markets    []string
	Rows       []Row
}

// TableFetcher retrieves and parses the price table for one region and
// category.
type TableFetcher interface {
	FetchTable(ctx context.Context, region registry.Region, category registry.Category) (*Table, error)
}
