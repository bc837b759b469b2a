// Package testhelper provides fake provider clients for reconciler and
// public-surface tests. The fakes mimic the real clients' contract: rows
// clipped to the requested range, ErrNoData instead of empty results, and
// recorded calls so tests can assert how often the network was hit.
package testhelper

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/providers"
)

// Call records one Daily invocation.
type Call struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// FakeClient serves canned rows per symbol and records every call.
type FakeClient struct {
	name providers.ID

	mu    sync.Mutex
	rows  map[string]prices.Series
	errs  map[string]error
	omit  map[string]map[time.Time]bool
	calls []Call
}

// NewFakeClient creates a fake client that reports the given provider ID.
func NewFakeClient(id providers.ID) *FakeClient {
	return &FakeClient{
		name: id,
		rows: make(map[string]prices.Series),
		errs: make(map[string]error),
		omit: make(map[string]map[time.Time]bool),
	}
}

// ID implements providers.Client.
func (f *FakeClient) ID() providers.ID {
	return f.name
}

// SetSeries installs the full history served for a symbol.
func (f *FakeClient) SetSeries(symbol string, rows prices.Series) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[symbol] = rows
}

// SetError makes every Daily call for a symbol fail with err.
func (f *FakeClient) SetError(symbol string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[symbol] = err
}

// Omit withholds specific dates from the served series, simulating a
// provider with holes in its history.
func (f *FakeClient) Omit(symbol string, dates ...time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.omit[symbol] == nil {
		f.omit[symbol] = make(map[time.Time]bool)
	}
	for _, d := range dates {
		f.omit[symbol][prices.Day(d)] = true
	}
}

// Daily implements providers.Client.
func (f *FakeClient) Daily(_ context.Context, symbol string, start, end time.Time) (prices.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Symbol: symbol, Start: prices.Day(start), End: prices.Day(end)})

	if err := f.errs[symbol]; err != nil {
		return nil, err
	}

	clipped := f.rows[symbol].Clip(start, end)
	out := make(prices.Series, 0, len(clipped))
	for _, row := range clipped {
		if f.omit[symbol][row.Day()] {
			continue
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, errors.NewFetchError(string(f.name), symbol, errors.ErrNoData)
	}
	return out, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many Daily calls were made.
func (f *FakeClient) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// BusinessSeries builds one row per business day in [start, end] with a
// deterministic price ramp, attributed to source.
func BusinessSeries(symbol string, cal calendar.Calendar, start, end time.Time, source string) prices.Series {
	days := cal.BusinessDays(start, end)
	retrieved := utc.Now()
	rows := make(prices.Series, 0, len(days))
	for i, d := range days {
		p := 100.0 + float64(i)*0.25
		rows = append(rows, prices.Row{
			Symbol:      symbol,
			Date:        d,
			Open:        p,
			High:        p + 1,
			Low:         p - 1,
			Close:       p + 0.5,
			Volume:      int64(1_000_000 + i*1000),
			AdjClose:    p + 0.5,
			SplitFactor: 1,
			Source:      source,
			Retrieved:   retrieved,
		})
	}
	return rows
}
