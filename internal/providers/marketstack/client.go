// Package marketstack implements the marketstack end-of-day client. The
// /v1/eod endpoint pages results, so one Daily call can take several HTTP
// requests; each page passes through the shared rate limiter.
package marketstack

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/internal/transport"
	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/providers"
)

// BaseURL is the production API host.
const BaseURL = "https://api.marketstack.com"

// pageLimit is the largest page size the /v1/eod endpoint accepts.
const pageLimit = 1000

// dateLayout matches marketstack timestamps like "2024-03-01T00:00:00+0000".
const dateLayout = "2006-01-02T15:04:05Z0700"

// Client fetches daily history from the marketstack API.
type Client struct {
	transport *transport.Client
	baseURL   string
	apiKey    string
	pacer     providers.Pacer
}

// New creates a marketstack client.
func New(cfg providers.Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		transport: transport.New(&transport.QueryAuth{Param: "access_key"},
			transport.WithHTTPClient(cfg.HTTPClient),
			transport.WithAPIKey(cfg.APIKey)),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		pacer:   cfg.Pacer,
	}
}

// ID implements providers.Client.
func (c *Client) ID() providers.ID {
	return providers.IDMarketstack
}

// eodResponse is one page of /v1/eod results.
type eodResponse struct {
	Pagination pagination `json:"pagination"`
	Data       []eodBar   `json:"data"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// eodBar is one end-of-day record. Volume arrives as a float.
type eodBar struct {
	Date        string  `json:"date"`
	Symbol      string  `json:"symbol"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	AdjClose    float64 `json:"adj_close"`
	Volume      float64 `json:"volume"`
	Dividend    float64 `json:"dividend"`
	SplitFactor float64 `json:"split_factor"`
}

// Daily implements providers.Client.
func (c *Client) Daily(ctx context.Context, symbol string, start, end time.Time) (prices.Series, error) {
	if c.apiKey == "" {
		return nil, errors.NewAuthenticationError(string(providers.IDMarketstack), "api_key",
			"API key not configured", errors.ErrAPIKeyRequired)
	}

	retrieved := utc.Now()
	var rows prices.Series
	for offset := 0; ; {
		page, err := c.fetchPage(ctx, symbol, start, end, offset)
		if err != nil {
			return nil, err
		}

		for _, b := range page.Data {
			row, err := b.toRow(symbol, retrieved)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}

		offset += page.Pagination.Count
		if page.Pagination.Count == 0 || offset >= page.Pagination.Total {
			break
		}
	}

	if len(rows) == 0 {
		return nil, errors.NewFetchError(string(providers.IDMarketstack), symbol, errors.ErrNoData)
	}
	rows.Sort()
	return rows, nil
}

// fetchPage requests one page of results at the given offset.
func (c *Client) fetchPage(ctx context.Context, symbol string, start, end time.Time, offset int) (*eodResponse, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	query.Set("symbols", symbol)
	query.Set("date_from", prices.Day(start).Format(constants.DateFormat))
	query.Set("date_to", prices.Day(end).Format(constants.DateFormat))
	query.Set("limit", strconv.Itoa(pageLimit))
	query.Set("offset", strconv.Itoa(offset))
	endpoint := fmt.Sprintf("%s/v1/eod?%s", c.baseURL, query.Encode())

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapFetch(string(providers.IDMarketstack), symbol, err)
	}

	var page eodResponse
	if err := transport.DecodeResponse(string(providers.IDMarketstack), resp, &page); err != nil {
		return nil, errors.WrapFetch(string(providers.IDMarketstack), symbol, err)
	}
	return &page, nil
}

// toRow converts one bar, normalizing the timestamp to a UTC day.
func (b eodBar) toRow(symbol string, retrieved utc.Time) (prices.Row, error) {
	t, err := time.Parse(dateLayout, b.Date)
	if err != nil {
		return prices.Row{}, errors.NewParseError("json", "eod bar date", b.Date, err)
	}

	split := b.SplitFactor
	if split == 0 {
		split = 1
	}

	return prices.Row{
		Symbol:      symbol,
		Date:        prices.Day(t),
		Open:        b.Open,
		High:        b.High,
		Low:         b.Low,
		Close:       b.Close,
		Volume:      int64(b.Volume),
		AdjClose:    b.AdjClose,
		Dividend:    b.Dividend,
		SplitFactor: split,
		Source:      string(providers.IDMarketstack),
		Retrieved:   retrieved,
	}, nil
}
