package providers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histfeed/histfeed/pkg/providers"
	"github.com/histfeed/histfeed/internal/providers/testhelper"
	"github.com/histfeed/histfeed/pkg/calendar"
	pkgerrors "github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
)

var (
	fallbackStart = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) // Monday
	fallbackEnd   = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC) // Friday
)

func newFallbackPair(t *testing.T) (*testhelper.FakeClient, *testhelper.FakeClient, providers.Client) {
	t.Helper()
	cal := calendar.Weekdays()
	primary := testhelper.NewFakeClient(providers.IDAlphavantage)
	primary.SetSeries("SPY", testhelper.BusinessSeries("SPY", cal, fallbackStart, fallbackEnd, "alphavantage"))
	secondary := testhelper.NewFakeClient(providers.IDYahoo)
	secondary.SetSeries("SPY", testhelper.BusinessSeries("SPY", cal, fallbackStart, fallbackEnd, "yahoo"))
	return primary, secondary, providers.NewFallback(primary, secondary, cal)
}

func TestFallbackID(t *testing.T) {
	_, _, chain := newFallbackPair(t)
	assert.Equal(t, providers.ID("alphavantage_yahoo"), chain.ID())
}

func TestFallbackPrimaryComplete(t *testing.T) {
	primary, secondary, chain := newFallbackPair(t)

	rows, err := chain.Daily(context.Background(), "SPY", fallbackStart, fallbackEnd)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for _, row := range rows {
		assert.Equal(t, "alphavantage", row.Source)
	}

	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 0, secondary.CallCount(), "complete primary should not touch the fallback")
}

func TestFallbackFillsMissingDates(t *testing.T) {
	primary, secondary, chain := newFallbackPair(t)
	missing := []time.Time{
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	}
	primary.Omit("SPY", missing...)

	rows, err := chain.Daily(context.Background(), "SPY", fallbackStart, fallbackEnd)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	bySource := map[string]int{}
	for _, row := range rows {
		bySource[row.Source]++
	}
	assert.Equal(t, 3, bySource["alphavantage"])
	assert.Equal(t, 2, bySource["yahoo"])
	for _, d := range missing {
		assert.True(t, rows.HasDate(d))
	}

	// The fallback is fetched once for the full range, then trimmed.
	require.Equal(t, 1, secondary.CallCount())
	call := secondary.Calls()[0]
	assert.Equal(t, prices.Day(fallbackStart), call.Start)
	assert.Equal(t, prices.Day(fallbackEnd), call.End)
}

func TestFallbackPrimaryWinsOnConflict(t *testing.T) {
	primary, _, chain := newFallbackPair(t)
	primary.Omit("SPY", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	rows, err := chain.Daily(context.Background(), "SPY", fallbackStart, fallbackEnd)
	require.NoError(t, err)

	// Every date the primary did return must stay attributed to it even
	// though the fallback served the same dates in its full-range response.
	for _, row := range rows {
		if row.Day().Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
			assert.Equal(t, "yahoo", row.Source)
		} else {
			assert.Equal(t, "alphavantage", row.Source)
		}
	}
}

func TestFallbackPrimaryFailure(t *testing.T) {
	primary, secondary, chain := newFallbackPair(t)
	primary.SetError("SPY", pkgerrors.NewAPIError("alphavantage", 503, "down"))

	rows, err := chain.Daily(context.Background(), "SPY", fallbackStart, fallbackEnd)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for _, row := range rows {
		assert.Equal(t, "yahoo", row.Source)
	}

	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 1, secondary.CallCount())
}

func TestFallbackSecondaryFailureKeepsPrimaryRows(t *testing.T) {
	primary, secondary, chain := newFallbackPair(t)
	primary.Omit("SPY", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	secondary.SetError("SPY", pkgerrors.NewAPIError("yahoo", 500, "down"))

	rows, err := chain.Daily(context.Background(), "SPY", fallbackStart, fallbackEnd)
	require.NoError(t, err)
	assert.Len(t, rows, 4, "primary rows survive a fallback failure")
}

func TestFallbackBothFail(t *testing.T) {
	primary, secondary, chain := newFallbackPair(t)
	primary.SetError("SPY", pkgerrors.NewAPIError("alphavantage", 503, "down"))
	secondary.SetError("SPY", pkgerrors.NewAPIError("yahoo", 500, "down"))

	_, err := chain.Daily(context.Background(), "SPY", fallbackStart, fallbackEnd)
	require.Error(t, err)
}
