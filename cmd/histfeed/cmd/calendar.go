package cmd

import (
	"github.com/spf13/cobra"

	"github.com/histfeed/histfeed/internal/cmd/output"
	"github.com/histfeed/histfeed/pkg/calendar"
)

var (
	calendarStart string
	calendarEnd   string
	calendarID    string
)

// calendarCmd represents the calendar command.
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "List expected trading days in a date range",
	Long: `Calendar prints the trading days a retrieval expects in the given
range. Dates a provider does not return for these days count as gaps.`,
	Example: `  histfeed calendar --start 2024-07-01 --end 2024-07-08
  histfeed calendar --start 2024-01-01 --end 2024-01-31 --calendar weekdays`,
	RunE: runCalendar,
}

func init() {
	rootCmd.AddCommand(calendarCmd)

	calendarCmd.Flags().StringVar(&calendarStart, "start", "",
		"Start date, YYYY-MM-DD")
	calendarCmd.Flags().StringVar(&calendarEnd, "end", "",
		"End date, YYYY-MM-DD")
	calendarCmd.Flags().StringVar(&calendarID, "calendar", "",
		"Calendar to use: nyse or weekdays (default nyse)")
	_ = calendarCmd.MarkFlagRequired("start")
	_ = calendarCmd.MarkFlagRequired("end")
}

func runCalendar(_ *cobra.Command, _ []string) error {
	start, end, err := parseRange(calendarStart, calendarEnd)
	if err != nil {
		return err
	}

	cal, err := calendar.New(calendarID)
	if err != nil {
		return err
	}

	return output.FormatDays(cal.BusinessDays(start, end), globalFlags)
}
