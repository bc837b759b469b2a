// Package alphavantage implements the Alpha Vantage daily-adjusted time
// series client. Alpha Vantage always returns the full history
// (outputsize=full) and enforces a small per-minute request budget, so the
// client clips locally and leans on the shared rate limiter.
package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/internal/transport"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/providers"
)

// BaseURL is the production API host.
const BaseURL = "https://www.alphavantage.co"

// Client fetches daily history from the Alpha Vantage API.
type Client struct {
	transport *transport.Client
	baseURL   string
	apiKey    string
	pacer     providers.Pacer
}

// New creates an Alpha Vantage client.
func New(cfg providers.Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		transport: transport.New(&transport.QueryAuth{Param: "apikey"},
			transport.WithHTTPClient(cfg.HTTPClient),
			transport.WithAPIKey(cfg.APIKey)),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		pacer:   cfg.Pacer,
	}
}

// ID implements providers.Client.
func (c *Client) ID() providers.ID {
	return providers.IDAlphavantage
}

// dailyResponse is the TIME_SERIES_DAILY_ADJUSTED payload. Alpha Vantage
// reports throttling and bad requests inside a 200 body, hence the Note,
// Information and Error Message fields.
type dailyResponse struct {
	ErrorMessage string              `json:"Error Message"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	Series       map[string]dailyBar `json:"Time Series (Daily)"`
}

// dailyBar fields arrive as quoted numbers.
type dailyBar struct {
	Open     string `json:"1. open"`
	High     string `json:"2. high"`
	Low      string `json:"3. low"`
	Close    string `json:"4. close"`
	AdjClose string `json:"5. adjusted close"`
	Volume   string `json:"6. volume"`
	Dividend string `json:"7. dividend amount"`
	Split    string `json:"8. split coefficient"`
}

// Daily implements providers.Client.
func (c *Client) Daily(ctx context.Context, symbol string, start, end time.Time) (prices.Series, error) {
	if c.apiKey == "" {
		return nil, errors.NewAuthenticationError(string(providers.IDAlphavantage), "api_key",
			"API key not configured", errors.ErrAPIKeyRequired)
	}
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	query.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	query.Set("symbol", symbol)
	query.Set("outputsize", "full")
	endpoint := fmt.Sprintf("%s/query?%s", c.baseURL, query.Encode())

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapFetch(string(providers.IDAlphavantage), symbol, err)
	}

	var payload dailyResponse
	if err := transport.DecodeResponse(string(providers.IDAlphavantage), resp, &payload); err != nil {
		return nil, errors.WrapFetch(string(providers.IDAlphavantage), symbol, err)
	}

	return convert(symbol, payload, start, end)
}

// convert turns the date-keyed bar map into sorted rows clipped to
// [start, end].
func convert(symbol string, payload dailyResponse, start, end time.Time) (prices.Series, error) {
	switch {
	case payload.Note != "":
		// The throttle message ships with HTTP 200.
		return nil, &errors.APIError{
			Provider:   string(providers.IDAlphavantage),
			StatusCode: http.StatusTooManyRequests,
			Message:    payload.Note,
		}
	case payload.Information != "":
		return nil, &errors.APIError{
			Provider:   string(providers.IDAlphavantage),
			StatusCode: http.StatusTooManyRequests,
			Message:    payload.Information,
		}
	case payload.ErrorMessage != "":
		return nil, &errors.APIError{
			Provider: string(providers.IDAlphavantage),
			Message:  payload.ErrorMessage,
		}
	}
	if len(payload.Series) == 0 {
		return nil, errors.NewFetchError(string(providers.IDAlphavantage), symbol, errors.ErrNoData)
	}

	first, last := prices.Day(start), prices.Day(end)
	retrieved := utc.Now()
	rows := make(prices.Series, 0, len(payload.Series))
	for dateStr, bar := range payload.Series {
		day, err := prices.ParseDay(dateStr)
		if err != nil {
			return nil, errors.NewParseError("json", "time series date", dateStr, err)
		}
		if day.Before(first) || day.After(last) {
			continue
		}
		row, err := bar.toRow(symbol, day, retrieved)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.NewFetchError(string(providers.IDAlphavantage), symbol, errors.ErrNoData)
	}
	rows.Sort()
	return rows, nil
}

// toRow parses the quoted numeric fields of one bar.
func (b dailyBar) toRow(symbol string, day time.Time, retrieved utc.Time) (prices.Row, error) {
	row := prices.Row{
		Symbol:    symbol,
		Date:      day,
		Source:    string(providers.IDAlphavantage),
		Retrieved: retrieved,
	}

	fields := []struct {
		value string
		dst   *float64
	}{
		{b.Open, &row.Open},
		{b.High, &row.High},
		{b.Low, &row.Low},
		{b.Close, &row.Close},
		{b.AdjClose, &row.AdjClose},
		{b.Dividend, &row.Dividend},
		{b.Split, &row.SplitFactor},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.value, 64)
		if err != nil {
			return prices.Row{}, errors.NewParseError("json", "daily bar", f.value, err)
		}
		*f.dst = v
	}
	if row.SplitFactor == 0 {
		row.SplitFactor = 1
	}

	volume, err := strconv.ParseInt(b.Volume, 10, 64)
	if err != nil {
		return prices.Row{}, errors.NewParseError("json", "daily bar volume", b.Volume, err)
	}
	row.Volume = volume

	return row, nil
}
