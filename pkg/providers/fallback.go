package providers

import (
	"context"
	"time"

	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/logging"
	"github.com/histfeed/histfeed/pkg/prices"
)

// fallback chains two clients. Business dates the primary did not return are
// filled from the secondary, fetched once for the full range and trimmed to
// the missing dates.
type fallback struct {
	primary   Client
	secondary Client
	cal       calendar.Calendar
}

// NewFallback wraps primary so that expected business dates it misses are
// filled from secondary. The primary wins when both return a row for the
// same date. If the primary fails outright the whole range comes from the
// secondary.
func NewFallback(primary, secondary Client, cal calendar.Calendar) Client {
	return &fallback{primary: primary, secondary: secondary, cal: cal}
}

// ID implements Client. A composite keeps the selector spelling, e.g.
// "alphavantage_yahoo".
func (f *fallback) ID() ID {
	return ID(string(f.primary.ID()) + "_" + string(f.secondary.ID()))
}

// Daily implements Client.
func (f *fallback) Daily(ctx context.Context, symbol string, start, end time.Time) (prices.Series, error) {
	rows, err := f.primary.Daily(ctx, symbol, start, end)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("provider", f.primary.ID().String()).
			Str("fallback", f.secondary.ID().String()).
			Str("symbol", symbol).
			Msg("Primary provider failed, fetching full range from fallback")
		return f.secondary.Daily(ctx, symbol, start, end)
	}

	missing := f.missingDates(rows, start, end)
	if len(missing) == 0 {
		return rows, nil
	}

	logging.Debug().
		Str("provider", f.primary.ID().String()).
		Str("fallback", f.secondary.ID().String()).
		Str("symbol", symbol).
		Int("missing_dates", len(missing)).
		Msg("Filling missing business dates from fallback")

	fill, err := f.secondary.Daily(ctx, symbol, start, end)
	if err != nil {
		logging.Warn().
			Err(err).
			Str("fallback", f.secondary.ID().String()).
			Str("symbol", symbol).
			Msg("Fallback provider failed, keeping primary rows")
		return rows, nil
	}

	wanted := make(map[time.Time]bool, len(missing))
	for _, d := range missing {
		wanted[d] = true
	}
	for _, row := range fill {
		if wanted[row.Day()] {
			rows = append(rows, row)
		}
	}

	return rows.Dedupe(), nil
}

// missingDates returns the expected business dates in [start, end] that rows
// does not cover, in ascending order.
func (f *fallback) missingDates(rows prices.Series, start, end time.Time) []time.Time {
	have := make(map[time.Time]bool, len(rows))
	for _, row := range rows {
		have[row.Day()] = true
	}

	var missing []time.Time
	for _, d := range f.cal.BusinessDays(start, end) {
		if !have[d] {
			missing = append(missing, d)
		}
	}
	return missing
}
