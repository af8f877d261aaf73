package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"presyo-tracker/internal/market"
	"presyo-tracker/internal/registry"
)

// ShowOptions select which stored observations to print.
type ShowOptions struct {
	RegionID  int
	Commodity string
	Limit     int
}

// Show prints the most recent stored observations for one (region,
// commodity) series as a table on stdout.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	if opts.Commodity == "" {
		return errors.New("--commodity is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	region, ok := a.Registry.RegionByID(registry.RegionID(opts.RegionID))
	if !ok {
		return fmt.Errorf("unknown region id %d", opts.RegionID)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	observations, err := store.ListRecentSeriesObservations(ctx, region.ID, opts.Commodity, opts.Limit)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		fmt.Fprintf(os.Stdout, "no stored observations for %s in %s\n", opts.Commodity, region.Name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tMARKET\tCATEGORY\tPRICE\tUNIT\tSPECIFICATION")
	for _, obs := range observations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			market.DateKey(obs.Date),
			obs.Market,
			obs.Category,
			priceField(obs.Price),
			obs.Unit,
			obs.Specification,
		)
	}
	return w.Flush()
}

func priceField(price *decimal.Decimal) string {
	if price == nil {
		return "N/A"
	}
	return price.StringFixed(2)
}

func nullableField(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}
