// Package prices defines the tabular price data model shared across histfeed:
// a Row holds one symbol's record for one calendar date, a Series is the
// ordered set of rows for a single symbol, and a Frame is the long-format
// union of several symbols' series.
package prices

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/pkg/constants"
)

// Row represents one calendar date's price record for one symbol.
type Row struct {
	Symbol      string    `json:"symbol" yaml:"symbol"`           // Ticker symbol the row belongs to
	Date        time.Time `json:"date" yaml:"date"`               // Calendar date (UTC midnight, date-only semantics)
	Open        float64   `json:"open" yaml:"open"`               // Opening price
	High        float64   `json:"high" yaml:"high"`               // Intraday high
	Low         float64   `json:"low" yaml:"low"`                 // Intraday low
	Close       float64   `json:"close" yaml:"close"`             // Closing price
	Volume      int64     `json:"volume" yaml:"volume"`           // Traded volume
	AdjClose    float64   `json:"adjusted" yaml:"adjusted"`       // Split/dividend adjusted close
	Dividend    float64   `json:"divd" yaml:"divd"`               // Dividend paid on the date (0 when none)
	SplitFactor float64   `json:"split" yaml:"split"`             // Split factor effective on the date (1 when none)
	Source      string    `json:"source" yaml:"source"`           // Provider ID that produced the row
	Retrieved   utc.Time  `json:"record_date" yaml:"record_date"` // Timestamp of the retrieval that produced the row
}

// Day returns the row's date truncated to UTC midnight.
func (r Row) Day() time.Time {
	return Day(r.Date)
}

// DateString returns the row's date formatted as YYYY-MM-DD.
func (r Row) DateString() string {
	return r.Date.Format(constants.DateFormat)
}

// Day truncates t to UTC midnight. All row dates carry date-only semantics,
// so comparisons go through this normalization.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(constants.DateFormat, s)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
