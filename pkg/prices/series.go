package prices

import (
	"sort"
	"time"
)

// Series is the ordered set of rows for a single symbol.
type Series []Row

// Sort orders the series by date ascending, in place.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Dedupe removes duplicate dates, keeping the later-appended row for each
// date. The result is sorted by date ascending.
func (s Series) Dedupe() Series {
	if len(s) == 0 {
		return s
	}

	byDay := make(map[time.Time]Row, len(s))
	for _, row := range s {
		byDay[row.Day()] = row
	}

	out := make(Series, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, row)
	}
	out.Sort()
	return out
}

// Merge unites the series with newer rows. On date conflicts the newer rows
// win. The result is deduped and sorted by date ascending.
func (s Series) Merge(newer Series) Series {
	merged := make(Series, 0, len(s)+len(newer))
	merged = append(merged, s...)
	merged = append(merged, newer...)
	return merged.Dedupe()
}

// Clip returns the rows whose dates fall inside [start, end], inclusive.
func (s Series) Clip(start, end time.Time) Series {
	start, end = Day(start), Day(end)
	out := make(Series, 0, len(s))
	for _, row := range s {
		day := row.Day()
		if day.Before(start) || day.After(end) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Dates returns the series dates in series order.
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, 0, len(s))
	for _, row := range s {
		dates = append(dates, row.Day())
	}
	return dates
}

// Span returns the earliest and latest dates in the series. The boolean is
// false when the series is empty.
func (s Series) Span() (first, last time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = s[0].Day(), s[0].Day()
	for _, row := range s[1:] {
		day := row.Day()
		if day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}
	return first, last, true
}

// HasDate reports whether the series contains a row for the given date.
func (s Series) HasDate(d time.Time) bool {
	d = Day(d)
	for _, row := range s {
		if row.Day().Equal(d) {
			return true
		}
	}
	return false
}

// Symbol returns the symbol of the series, or empty when the series is empty.
func (s Series) Symbol() string {
	if len(s) == 0 {
		return ""
	}
	return s[0].Symbol
}
