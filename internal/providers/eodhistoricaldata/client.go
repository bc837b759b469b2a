// Package eodhistoricaldata implements the EOD Historical Data end-of-day
// client. The /api/eod endpoint filters by date server-side and returns a
// bare JSON array of bars.
package eodhistoricaldata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/internal/transport"
	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/providers"
)

// BaseURL is the production API host.
const BaseURL = "https://eodhistoricaldata.com"

// Client fetches daily history from the EOD Historical Data API.
type Client struct {
	transport *transport.Client
	baseURL   string
	apiKey    string
	pacer     providers.Pacer
}

// New creates an EOD Historical Data client.
func New(cfg providers.Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		transport: transport.New(&transport.QueryAuth{Param: "api_token"},
			transport.WithHTTPClient(cfg.HTTPClient),
			transport.WithAPIKey(cfg.APIKey)),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		pacer:   cfg.Pacer,
	}
}

// ID implements providers.Client.
func (c *Client) ID() providers.ID {
	return providers.IDEODHistoricalData
}

// bar is one end-of-day record. The endpoint carries no dividend or split
// columns, so those default in the converted row.
type bar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// Daily implements providers.Client.
func (c *Client) Daily(ctx context.Context, symbol string, start, end time.Time) (prices.Series, error) {
	if c.apiKey == "" {
		return nil, errors.NewAuthenticationError(string(providers.IDEODHistoricalData), "api_key",
			"API key not configured", errors.ErrAPIKeyRequired)
	}
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	query.Set("fmt", "json")
	query.Set("period", "d")
	query.Set("from", prices.Day(start).Format(constants.DateFormat))
	query.Set("to", prices.Day(end).Format(constants.DateFormat))
	endpoint := fmt.Sprintf("%s/api/eod/%s?%s", c.baseURL, url.PathEscape(symbol), query.Encode())

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapFetch(string(providers.IDEODHistoricalData), symbol, err)
	}

	var bars []bar
	if err := transport.DecodeResponse(string(providers.IDEODHistoricalData), resp, &bars); err != nil {
		return nil, errors.WrapFetch(string(providers.IDEODHistoricalData), symbol, err)
	}
	if len(bars) == 0 {
		return nil, errors.NewFetchError(string(providers.IDEODHistoricalData), symbol, errors.ErrNoData)
	}

	retrieved := utc.Now()
	rows := make(prices.Series, 0, len(bars))
	for _, b := range bars {
		day, err := prices.ParseDay(b.Date)
		if err != nil {
			return nil, errors.NewParseError("json", "eod bar date", b.Date, err)
		}
		rows = append(rows, prices.Row{
			Symbol:      symbol,
			Date:        day,
			Open:        b.Open,
			High:        b.High,
			Low:         b.Low,
			Close:       b.Close,
			Volume:      b.Volume,
			AdjClose:    b.AdjustedClose,
			SplitFactor: 1,
			Source:      string(providers.IDEODHistoricalData),
			Retrieved:   retrieved,
		})
	}
	rows.Sort()
	return rows, nil
}
