package prices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func row(symbol, date string, closePrice float64, source string) Row {
	return Row{
		Symbol:      symbol,
		Date:        day(date),
		Open:        closePrice,
		High:        closePrice,
		Low:         closePrice,
		Close:       closePrice,
		Volume:      1000,
		AdjClose:    closePrice,
		SplitFactor: 1,
		Source:      source,
	}
}

func TestSeriesSort(t *testing.T) {
	s := Series{
		row("SPY", "2012-01-05", 3, "yahoo"),
		row("SPY", "2012-01-03", 1, "yahoo"),
		row("SPY", "2012-01-04", 2, "yahoo"),
	}
	s.Sort()

	require.Len(t, s, 3)
	assert.Equal(t, day("2012-01-03"), s[0].Date)
	assert.Equal(t, day("2012-01-04"), s[1].Date)
	assert.Equal(t, day("2012-01-05"), s[2].Date)
}

func TestSeriesDedupe(t *testing.T) {
	t.Run("later row wins", func(t *testing.T) {
		s := Series{
			row("SPY", "2012-01-03", 100, "cache"),
			row("SPY", "2012-01-04", 101, "cache"),
			row("SPY", "2012-01-03", 200, "yahoo"),
		}
		out := s.Dedupe()

		require.Len(t, out, 2)
		assert.Equal(t, 200.0, out[0].Close)
		assert.Equal(t, "yahoo", out[0].Source)
		assert.Equal(t, 101.0, out[1].Close)
	})

	t.Run("empty series", func(t *testing.T) {
		var s Series
		assert.Empty(t, s.Dedupe())
	})

	t.Run("no duplicate dates after dedupe", func(t *testing.T) {
		s := Series{
			row("SPY", "2012-01-03", 1, "a"),
			row("SPY", "2012-01-03", 2, "b"),
			row("SPY", "2012-01-03", 3, "c"),
			row("SPY", "2012-01-04", 4, "a"),
		}
		out := s.Dedupe()

		seen := map[time.Time]bool{}
		for _, r := range out {
			assert.False(t, seen[r.Day()], "duplicate date %s", r.DateString())
			seen[r.Day()] = true
		}
	})
}

func TestSeriesMerge(t *testing.T) {
	cached := Series{
		row("SPY", "2012-01-03", 100, "cache"),
		row("SPY", "2012-01-04", 101, "cache"),
	}
	fetched := Series{
		row("SPY", "2012-01-04", 201, "yahoo"),
		row("SPY", "2012-01-05", 202, "yahoo"),
	}

	out := cached.Merge(fetched)

	require.Len(t, out, 3)
	assert.Equal(t, 100.0, out[0].Close)
	// Fetched row wins the conflicting date
	assert.Equal(t, 201.0, out[1].Close)
	assert.Equal(t, "yahoo", out[1].Source)
	assert.Equal(t, 202.0, out[2].Close)
}

func TestSeriesClip(t *testing.T) {
	s := Series{
		row("SPY", "2012-01-03", 1, "yahoo"),
		row("SPY", "2012-01-04", 2, "yahoo"),
		row("SPY", "2012-01-05", 3, "yahoo"),
		row("SPY", "2012-01-06", 4, "yahoo"),
	}

	t.Run("inclusive bounds", func(t *testing.T) {
		out := s.Clip(day("2012-01-04"), day("2012-01-05"))
		require.Len(t, out, 2)
		assert.Equal(t, day("2012-01-04"), out[0].Date)
		assert.Equal(t, day("2012-01-05"), out[1].Date)
	})

	t.Run("covering range keeps everything", func(t *testing.T) {
		out := s.Clip(day("2011-01-01"), day("2013-01-01"))
		assert.Len(t, out, 4)
	})

	t.Run("disjoint range keeps nothing", func(t *testing.T) {
		out := s.Clip(day("2015-01-01"), day("2015-12-31"))
		assert.Empty(t, out)
	})
}

func TestSeriesSpan(t *testing.T) {
	t.Run("unsorted input", func(t *testing.T) {
		s := Series{
			row("SPY", "2012-01-05", 3, "yahoo"),
			row("SPY", "2012-01-03", 1, "yahoo"),
			row("SPY", "2012-01-04", 2, "yahoo"),
		}
		first, last, ok := s.Span()
		require.True(t, ok)
		assert.Equal(t, day("2012-01-03"), first)
		assert.Equal(t, day("2012-01-05"), last)
	})

	t.Run("empty series", func(t *testing.T) {
		var s Series
		_, _, ok := s.Span()
		assert.False(t, ok)
	})
}

func TestSeriesHasDate(t *testing.T) {
	s := Series{
		row("SPY", "2012-01-03", 1, "yahoo"),
	}
	assert.True(t, s.HasDate(day("2012-01-03")))
	assert.False(t, s.HasDate(day("2012-01-04")))

	// Date-only semantics: intraday timestamps match their calendar date
	assert.True(t, s.HasDate(day("2012-01-03").Add(15*time.Hour)))
}

func TestSeriesDatesAndSymbol(t *testing.T) {
	s := Series{
		row("GLD", "2012-01-03", 1, "yahoo"),
		row("GLD", "2012-01-04", 2, "yahoo"),
	}
	assert.Equal(t, []time.Time{day("2012-01-03"), day("2012-01-04")}, s.Dates())
	assert.Equal(t, "GLD", s.Symbol())

	var empty Series
	assert.Equal(t, "", empty.Symbol())
}
