package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/histfeed/histfeed/internal/cmd/emoji"
	"github.com/histfeed/histfeed/internal/config"
	"github.com/histfeed/histfeed/internal/providers/registry"
	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/providers"
	"github.com/histfeed/histfeed/pkg/reconcile"
)

// FrameToTableData converts a price frame to table format. Wide output adds
// the dividend, split factor and retrieval timestamp columns.
func FrameToTableData(frame prices.Frame, wide bool) Data {
	headers := []string{"DATE", "SYMBOL", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME", "ADJ CLOSE", "SOURCE"}
	alignment := []Align{
		AlignDefault, // DATE
		AlignDefault, // SYMBOL
		AlignRight,   // OPEN
		AlignRight,   // HIGH
		AlignRight,   // LOW
		AlignRight,   // CLOSE
		AlignRight,   // VOLUME
		AlignRight,   // ADJ CLOSE
		AlignDefault, // SOURCE
	}
	if wide {
		headers = append(headers, "DIVIDEND", "SPLIT", "RETRIEVED")
		alignment = append(alignment, AlignRight, AlignRight, AlignDefault)
	}

	rows := make([][]string, 0, len(frame))
	for _, row := range frame {
		cells := []string{
			row.Date.Format(constants.DateFormat),
			row.Symbol,
			FormatPrice(row.Open),
			FormatPrice(row.High),
			FormatPrice(row.Low),
			FormatPrice(row.Close),
			FormatNumber(row.Volume),
			FormatPrice(row.AdjClose),
			row.Source,
		}
		if wide {
			cells = append(cells,
				formatDividend(row.Dividend),
				formatSplit(row.SplitFactor),
				row.Retrieved.Format(time.RFC3339),
			)
		}
		rows = append(rows, cells)
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: alignment,
	}
}

// StatusesToTableData converts per-symbol statuses to table format.
func StatusesToTableData(statuses []reconcile.SymbolStatus) Data {
	headers := []string{"SYMBOL", "SOURCE", "STATUS", "ROWS", "GAPS", "ELAPSED", "ERROR"}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		icon := statusIcon(s.Status)
		errText := s.Err
		if len(errText) > 60 {
			errText = errText[:57] + "..."
		}
		if errText == "" {
			errText = "-"
		}

		rows = append(rows, []string{
			s.Symbol,
			s.Source,
			icon + " " + string(s.Status),
			strconv.Itoa(s.Rows),
			strconv.Itoa(s.Gaps),
			s.Elapsed.Round(time.Millisecond).String(),
			errText,
		})
	}

	return Data{
		Headers: headers,
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignDefault, // SYMBOL
			AlignDefault, // SOURCE
			AlignDefault, // STATUS
			AlignRight,   // ROWS
			AlignRight,   // GAPS
			AlignRight,   // ELAPSED
			AlignDefault, // ERROR
		},
	}
}

// ProvidersToTableData converts the registered providers to table format.
// Key previews are masked and only included when showKeys is set.
func ProvidersToTableData(showKeys bool) Data {
	headers := []string{"PROVIDER", "ENV KEY", "RATE LIMIT", "STATUS"}
	if showKeys {
		headers = []string{"PROVIDER", "ENV KEY", "KEY", "RATE LIMIT", "STATUS"}
	}

	ids := registry.List()
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		row := []string{string(id), envKeyName(id)}
		if showKeys {
			row = append(row, keyPreview(id))
		}
		row = append(row, budgetText(id), providerStatus(id))
		rows = append(rows, row)
	}

	return Data{
		Headers: headers,
		Rows:    rows,
	}
}

// DatesToTableData converts business days to table format.
func DatesToTableData(days []time.Time) Data {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			d.Format(constants.DateFormat),
			d.Weekday().String(),
		})
	}

	return Data{
		Headers: []string{"DATE", "WEEKDAY"},
		Rows:    rows,
	}
}

// FormatPrice formats a price cell, using "-" for absent values.
func FormatPrice(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatNumber formats large numbers with comma separators.
func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}

	// Add commas every 3 digits
	result := ""
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(r)
	}
	return result
}

func formatDividend(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func formatSplit(v float64) string {
	if v == 0 || v == 1 {
		return "-"
	}
	return fmt.Sprintf("%g", v)
}

// statusIcon returns the display icon for a symbol status.
func statusIcon(status reconcile.Status) string {
	switch status {
	case reconcile.StatusComplete:
		return emoji.Success
	case reconcile.StatusPartial:
		return emoji.Warning
	case reconcile.StatusFailed:
		return emoji.Error
	default:
		return emoji.Optional
	}
}

// envKeyName returns the credential env var for display.
func envKeyName(id providers.ID) string {
	if name := config.EnvKeyName(id); name != "" {
		return name
	}
	return "(no key required)"
}

// keyPreview returns a masked preview of the configured API key.
func keyPreview(id providers.ID) string {
	if !registry.RequiresKey(id) {
		return "-"
	}
	if key := config.APIKey(id); key != "" {
		return maskAPIKey(key)
	}
	return "(not set)"
}

// budgetText returns the default per-minute request budget for display.
func budgetText(id providers.ID) string {
	if budget := registry.Budget(id); budget > 0 {
		return fmt.Sprintf("%d/min", budget)
	}
	return "-"
}

// providerStatus returns icon and text for a provider's key state.
func providerStatus(id providers.ID) string {
	if !registry.RequiresKey(id) {
		return emoji.Success + " Ready"
	}
	if config.HasAPIKey(id) {
		return emoji.Success + " Configured"
	}
	return emoji.Error + " Missing key"
}

// maskAPIKey masks an API key for safe display, showing only the first and
// last four characters of long keys.
func maskAPIKey(key string) string {
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 16) + key[len(key)-4:]
}
