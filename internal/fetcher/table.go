package fetcher

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// TableSelector picks the price grid out of a page that also carries
// navigation and layout tables. Table position is not stable across
// regions, so selection is by shape, never by index. A site-structure
// change means editing one predicate, not the pipeline.
type TableSelector func(doc *goquery.Document) *goquery.Selection

// Columns that summarise the market columns rather than naming a market.
var summaryColumns = map[string]struct{}{
	"RANGE": {}, "MIN": {}, "MAX": {}, "AVG": {},
}

// Cell markers the source uses for "no data".
var notAvailableMarkers = map[string]struct{}{
	"": {}, "-": {}, "N/A": {}, "n/a": {}, "na": {}, "NA": {}, "*": {},
}

// DefaultTableSelector prefers a table whose headers mention the commodity
// or market columns, and falls back to the first table with enough rows
// and columns to be a price grid.
func DefaultTableSelector(doc *goquery.Document) *goquery.Selection {
	var chosen *goquery.Selection

	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		match := false
		tbl.Find("th").Each(func(_ int, th *goquery.Selection) {
			text := strings.ToLower(th.Text())
			if strings.Contains(text, "market") || strings.Contains(text, "commodity") {
				match = true
			}
		})
		if match {
			chosen = tbl
			return false
		}
		return true
	})
	if chosen != nil {
		return chosen
	}

	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		rows := tbl.Find("tr")
		if rows.Length() > 3 && rows.Eq(0).Find("td, th").Length() > 4 {
			chosen = tbl
			return false
		}
		return true
	})
	return chosen
}

// ParseTable extracts the price grid from a fetched page. The header row
// yields market names; each data row yields a commodity, a specification,
// and one price per market column aligned positionally with the header.
func ParseTable(doc *goquery.Document, selector TableSelector) (*Table, error) {
	if selector == nil {
		selector = DefaultTableSelector
	}

	table := &Table{ReportDate: findReportDate(doc)}

	grid := selector(doc)
	if grid == nil {
		return nil, ErrNoTableFound
	}

	rows := grid.Find("tr")
	if rows.Length() == 0 {
		return nil, ErrNoTableFound
	}

	// Header: first cell is the commodity, second the specification, the
	// rest name the markets. Summary columns are not markets.
	rows.Eq(0).Find("th, td").Each(func(i int, cell *goquery.Selection) {
		if i < 2 {
			return
		}
		text := strings.ToUpper(cellText(cell))
		if text == "" {
			return
		}
		if _, ok := summaryColumns[text]; ok {
			return
		}
		table.Markets = append(table.Markets, text)
	})
	if len(table.Markets) == 0 {
		return nil, ErrNoTableFound
	}

	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 3 {
			return
		}

		commodity := cellText(cells.Eq(0))
		upper := strings.ToUpper(commodity)
		if commodity == "" || upper == "COMMODITY" || upper == "ITEM" {
			return
		}

		parsed := Row{
			Commodity:     commodity,
			Specification: cellText(cells.Eq(1)),
		}

		for i := 0; i < len(table.Markets); i++ {
			idx := 2 + i
			if idx >= cells.Length() {
				parsed.Prices = append(parsed.Prices, nil)
				continue
			}
			parsed.Prices = append(parsed.Prices, parsePrice(cellText(cells.Eq(idx))))
		}

		table.Rows = append(table.Rows, parsed)
	})

	return table, nil
}

// parsePrice converts a raw cell into a price. Not-available markers and
// unparsable text come back nil; a literal zero stays a zero price, the
// two states are never conflated.
func parsePrice(raw string) *decimal.Decimal {
	clean := strings.TrimSpace(raw)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "₱", "")
	clean = strings.ReplaceAll(clean, "PHP", "")
	clean = strings.TrimSpace(clean)

	if _, ok := notAvailableMarkers[clean]; ok {
		return nil
	}

	price, err := decimal.NewFromString(clean)
	if err != nil {
		return nil
	}
	price = price.Round(2)
	return &price
}

// findReportDate looks for the "as of <Month D, YYYY>" fragment the site
// prints near the grid. Zero time when absent; the caller falls back to
// the run reference date.
func findReportDate(doc *goquery.Document) time.Time {
	var found time.Time
	doc.Find("span, td, div, p, b, h1, h2, h3").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		lower := strings.ToLower(text)
		idx := strings.LastIndex(lower, "as of")
		if idx < 0 {
			return true
		}
		raw := strings.TrimSpace(text[idx+len("as of"):])
		parsed, err := time.Parse("January 2, 2006", raw)
		if err != nil {
			return true
		}
		found = parsed.UTC()
		return false
	})
	return found
}

func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}
