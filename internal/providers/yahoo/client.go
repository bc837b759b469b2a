// Package yahoo implements the Yahoo Finance v8 chart API client. The chart
// endpoint needs no API key but rejects requests that do not carry a
// browser-looking User-Agent.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/internal/transport"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/providers"
)

// BaseURL is the production chart API host.
const BaseURL = "https://query2.finance.yahoo.com"

// userAgent mimics a browser; the chart API returns 429 for default Go
// user agents.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/119.0"

// Client fetches daily history from the Yahoo Finance chart API.
type Client struct {
	transport *transport.Client
	baseURL   string
	pacer     providers.Pacer
}

// New creates a Yahoo Finance client.
func New(cfg providers.Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		transport: transport.New(&transport.NoAuth{},
			transport.WithHTTPClient(cfg.HTTPClient),
			transport.WithUserAgent(userAgent)),
		baseURL: baseURL,
		pacer:   cfg.Pacer,
	}
}

// ID implements providers.Client.
func (c *Client) ID() providers.ID {
	return providers.IDYahoo
}

// chartResponse is the v8 chart payload envelope.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Timestamp []int64 `json:"timestamp"`
	Events    struct {
		Dividends map[string]dividendEvent `json:"dividends"`
		Splits    map[string]splitEvent    `json:"splits"`
	} `json:"events"`
	Indicators struct {
		Quote    []quoteBlock    `json:"quote"`
		AdjClose []adjCloseBlock `json:"adjclose"`
	} `json:"indicators"`
}

// quoteBlock columns are index-aligned with Timestamp. Entries can be null
// for halted sessions, so they decode into pointers.
type quoteBlock struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type adjCloseBlock struct {
	AdjClose []*float64 `json:"adjclose"`
}

type dividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type splitEvent struct {
	Date        int64   `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
}

// Daily implements providers.Client.
func (c *Client) Daily(ctx context.Context, symbol string, start, end time.Time) (prices.Series, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	query.Set("period1", strconv.FormatInt(prices.Day(start).Unix(), 10))
	// period2 is exclusive, so push it one day past the inclusive end.
	query.Set("period2", strconv.FormatInt(prices.Day(end).AddDate(0, 0, 1).Unix(), 10))
	query.Set("interval", "1d")
	query.Set("events", "div|split")
	query.Set("includeAdjustedClose", "true")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), query.Encode())

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapFetch(string(providers.IDYahoo), symbol, err)
	}

	var payload chartResponse
	if err := transport.DecodeResponse(string(providers.IDYahoo), resp, &payload); err != nil {
		return nil, errors.WrapFetch(string(providers.IDYahoo), symbol, err)
	}

	return convert(symbol, payload, start, end)
}

// convert flattens the column-oriented chart payload into rows, attaching
// dividend and split events to the sessions they fall on.
func convert(symbol string, payload chartResponse, start, end time.Time) (prices.Series, error) {
	if payload.Chart.Error != nil {
		return nil, &errors.APIError{
			Provider: string(providers.IDYahoo),
			Message:  fmt.Sprintf("%s: %s", payload.Chart.Error.Code, payload.Chart.Error.Description),
		}
	}
	if len(payload.Chart.Result) == 0 {
		return nil, errors.NewFetchError(string(providers.IDYahoo), symbol, errors.ErrNoData)
	}

	result := payload.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, errors.NewFetchError(string(providers.IDYahoo), symbol, errors.ErrNoData)
	}
	quote := result.Indicators.Quote[0]

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	dividends := make(map[time.Time]float64, len(result.Events.Dividends))
	for _, ev := range result.Events.Dividends {
		dividends[prices.Day(time.Unix(ev.Date, 0))] = ev.Amount
	}
	splits := make(map[time.Time]float64, len(result.Events.Splits))
	for _, ev := range result.Events.Splits {
		if ev.Denominator != 0 {
			splits[prices.Day(time.Unix(ev.Date, 0))] = ev.Numerator / ev.Denominator
		}
	}

	retrieved := utc.Now()
	rows := make(prices.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}

		day := prices.Day(time.Unix(ts, 0))
		row := prices.Row{
			Symbol:      symbol,
			Date:        day,
			Open:        *quote.Open[i],
			High:        *quote.High[i],
			Low:         *quote.Low[i],
			Close:       *quote.Close[i],
			AdjClose:    *quote.Close[i],
			SplitFactor: 1,
			Source:      string(providers.IDYahoo),
			Retrieved:   retrieved,
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			row.Volume = *quote.Volume[i]
		}
		if i < len(adj) && adj[i] != nil {
			row.AdjClose = *adj[i]
		}
		if amount, ok := dividends[day]; ok {
			row.Dividend = amount
		}
		if factor, ok := splits[day]; ok {
			row.SplitFactor = factor
		}
		rows = append(rows, row)
	}

	rows = rows.Clip(start, end)
	if len(rows) == 0 {
		return nil, errors.NewFetchError(string(providers.IDYahoo), symbol, errors.ErrNoData)
	}
	rows.Sort()
	return rows, nil
}
