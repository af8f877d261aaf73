package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"presyo-tracker/internal/registry"
)

// Options parameterise the page fetcher.
type Options struct {
	BaseURL        string
	RegionQueryKey string
	UserAgent      string
	Timeout        time.Duration
	PoliteDelay    time.Duration
	Selector       TableSelector
}

// Client fetches category pages from the monitoring site over HTTP.
type Client struct {
	opts     Options
	logger   zerolog.Logger
	client   *http.Client
	baseURL  string
	selector TableSelector
}

// NewClient constructs a page fetcher.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")

	selector := opts.Selector
	if selector == nil {
		selector = DefaultTableSelector
	}

	return &Client{
		opts:     opts,
		logger:   logger.With().Str("component", "fetcher").Logger(),
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		selector: selector,
	}
}

// FetchTable retrieves one (region, category) page and parses its price
// grid. Network and HTTP failures come back as *FetchError; a page without
// a recognisable table yields ErrNoTableFound.
func (c *Client) FetchTable(ctx context.Context, region registry.Region, category registry.Category) (*Table, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("source base url not configured")
	}

	endpoint := c.baseURL + category.Path

	queryKey := c.opts.RegionQueryKey
	if queryKey == "" {
		queryKey = "rid"
	}
	params := url.Values{}
	params.Set(queryKey, region.Param)
	endpoint = endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", c.baseURL)
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "presyotracker/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: endpoint, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	table, err := ParseTable(doc, c.selector)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("region_id", int(region.ID)).
		Str("category", category.Slug).
		Int("markets", len(table.Markets)).
		Int("rows", len(table.Rows)).
		Msg("table parsed")

	if c.opts.PoliteDelay > 0 {
		timer := time.NewTimer(c.opts.PoliteDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return table, nil
}

var _ TableFetcher = (*Client)(nil)
