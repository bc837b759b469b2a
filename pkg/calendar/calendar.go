// Package calendar provides trading calendars. A calendar decides which
// calendar dates a complete price series is expected to cover, which drives
// the gap report and composite-source fill logic.
package calendar

import (
	"strings"
	"time"

	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
)

// Calendar reports which calendar dates count as trading days.
type Calendar interface {
	// ID returns the calendar identifier, e.g. "NYSE".
	ID() string

	// IsBusinessDay reports whether t falls on a trading day.
	IsBusinessDay(t time.Time) bool

	// BusinessDays returns the trading days in [start, end], inclusive,
	// in ascending order.
	BusinessDays(start, end time.Time) []time.Time
}

// New returns the calendar registered under id. The id is case-insensitive;
// an empty id selects NYSE.
func New(id string) (Calendar, error) {
	switch strings.ToUpper(strings.TrimSpace(id)) {
	case "", "NYSE":
		return NYSE(), nil
	case "WEEKDAYS":
		return Weekdays(), nil
	default:
		return nil, errors.NewNotFoundError("calendar", id)
	}
}

// Weekdays returns a plain Monday-to-Friday calendar with no holidays.
func Weekdays() Calendar {
	return weekdays{}
}

type weekdays struct{}

func (weekdays) ID() string { return "WEEKDAYS" }

func (weekdays) IsBusinessDay(t time.Time) bool {
	switch prices.Day(t).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

func (w weekdays) BusinessDays(start, end time.Time) []time.Time {
	return businessDays(start, end, w.IsBusinessDay)
}

// businessDays walks [start, end] one calendar day at a time and collects
// the dates isBusiness accepts.
func businessDays(start, end time.Time, isBusiness func(time.Time) bool) []time.Time {
	start, end = prices.Day(start), prices.Day(end)
	if end.Before(start) {
		return nil
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if isBusiness(d) {
			days = append(days, d)
		}
	}
	return days
}
