package calendar

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"github.com/histfeed/histfeed/pkg/prices"
)

// goodFriday is an NYSE holiday but not a US federal one, so the us package
// does not define it. Easter minus two days.
var goodFriday = &cal.Holiday{
	Name:   "Good Friday",
	Type:   cal.ObservancePublic,
	Offset: -2,
	Func:   cal.CalcEasterOffset,
}

// marketClosures lists unscheduled full-day closes of the exchange.
var marketClosures = []*cal.Holiday{
	{Name: "Hurricane Sandy", Type: cal.ObservancePublic, Month: time.October, Day: 29, StartYear: 2012, EndYear: 2012, Func: cal.CalcDayOfMonth},
	{Name: "Hurricane Sandy", Type: cal.ObservancePublic, Month: time.October, Day: 30, StartYear: 2012, EndYear: 2012, Func: cal.CalcDayOfMonth},
	{Name: "Mourning of George H.W. Bush", Type: cal.ObservancePublic, Month: time.December, Day: 5, StartYear: 2018, EndYear: 2018, Func: cal.CalcDayOfMonth},
	{Name: "Mourning of Jimmy Carter", Type: cal.ObservancePublic, Month: time.January, Day: 9, StartYear: 2025, EndYear: 2025, Func: cal.CalcDayOfMonth},
}

// NYSE returns the New York Stock Exchange trading calendar: weekdays minus
// the exchange's observed holidays and unscheduled closures.
func NYSE() Calendar {
	bc := cal.NewBusinessCalendar()
	bc.Name = "NYSE"
	bc.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		goodFriday,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
	bc.AddHoliday(marketClosures...)
	return &nyse{cal: bc}
}

type nyse struct {
	cal *cal.BusinessCalendar
}

func (n *nyse) ID() string { return "NYSE" }

func (n *nyse) IsBusinessDay(t time.Time) bool {
	return n.cal.IsWorkday(prices.Day(t))
}

func (n *nyse) BusinessDays(start, end time.Time) []time.Time {
	return businessDays(start, end, n.IsBusinessDay)
}
