package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/errors"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNew(t *testing.T) {
	t.Run("NYSE by default", func(t *testing.T) {
		c, err := calendar.New("")
		require.NoError(t, err)
		assert.Equal(t, "NYSE", c.ID())
	})

	t.Run("case insensitive", func(t *testing.T) {
		c, err := calendar.New("nyse")
		require.NoError(t, err)
		assert.Equal(t, "NYSE", c.ID())
	})

	t.Run("weekdays", func(t *testing.T) {
		c, err := calendar.New("weekdays")
		require.NoError(t, err)
		assert.Equal(t, "WEEKDAYS", c.ID())
	})

	t.Run("unknown calendar", func(t *testing.T) {
		_, err := calendar.New("LSE")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestNYSEIsBusinessDay(t *testing.T) {
	c := calendar.NYSE()

	cases := []struct {
		name string
		date string
		want bool
	}{
		{"regular Tuesday", "2012-01-03", true},
		{"regular Friday", "2012-04-05", true},
		{"Saturday", "2012-01-07", false},
		{"Sunday", "2012-01-08", false},
		{"New Year observed on Monday", "2012-01-02", false},
		{"MLK Day", "2012-01-16", false},
		{"Good Friday", "2012-04-06", false},
		{"Independence Day", "2012-07-04", false},
		{"Thanksgiving", "2012-11-22", false},
		{"Christmas", "2012-12-25", false},
		{"Hurricane Sandy close day one", "2012-10-29", false},
		{"Hurricane Sandy close day two", "2012-10-30", false},
		{"Columbus Day trades", "2012-10-08", true},
		{"Veterans Day observed trades", "2012-11-12", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.IsBusinessDay(day(tc.date)))
		})
	}
}

func TestNYSEBusinessDays(t *testing.T) {
	c := calendar.NYSE()

	t.Run("first trading days of 2012", func(t *testing.T) {
		// Jan 1 Sunday, Jan 2 observed New Year, Jan 7/8 weekend
		got := c.BusinessDays(day("2012-01-01"), day("2012-01-10"))
		want := []time.Time{
			day("2012-01-03"), day("2012-01-04"), day("2012-01-05"),
			day("2012-01-06"), day("2012-01-09"), day("2012-01-10"),
		}
		assert.Equal(t, want, got)
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		got := c.BusinessDays(day("2012-01-03"), day("2012-01-03"))
		require.Len(t, got, 1)
		assert.Equal(t, day("2012-01-03"), got[0])
	})

	t.Run("inverted range is empty", func(t *testing.T) {
		assert.Empty(t, c.BusinessDays(day("2012-01-10"), day("2012-01-03")))
	})

	t.Run("weekend-only range is empty", func(t *testing.T) {
		assert.Empty(t, c.BusinessDays(day("2012-01-07"), day("2012-01-08")))
	})

	t.Run("ascending and duplicate free", func(t *testing.T) {
		got := c.BusinessDays(day("2012-01-01"), day("2012-12-31"))
		require.NotEmpty(t, got)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i].After(got[i-1]),
				"dates must be strictly ascending at %d: %s then %s", i, got[i-1], got[i])
		}
	})
}

func TestWeekdays(t *testing.T) {
	c := calendar.Weekdays()

	assert.True(t, c.IsBusinessDay(day("2012-01-02")), "holidays do not apply")
	assert.False(t, c.IsBusinessDay(day("2012-01-07")))
	assert.False(t, c.IsBusinessDay(day("2012-01-08")))

	got := c.BusinessDays(day("2012-01-01"), day("2012-01-08"))
	want := []time.Time{
		day("2012-01-02"), day("2012-01-03"), day("2012-01-04"),
		day("2012-01-05"), day("2012-01-06"),
	}
	assert.Equal(t, want, got)
}

func TestNYSEIntradayTimestamps(t *testing.T) {
	c := calendar.NYSE()
	// Date-only semantics: any time on a trading day counts
	assert.True(t, c.IsBusinessDay(day("2012-01-03").Add(15*time.Hour+30*time.Minute)))
}
