package output

import (
	"os"
	"time"

	"github.com/histfeed/histfeed/internal/cmd/globals"
	"github.com/histfeed/histfeed/internal/cmd/table"
	"github.com/histfeed/histfeed/internal/providers/registry"
	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/reconcile"
)

// FormatFrame handles the common pattern of formatting a price frame for
// output. Wide format adds dividend, split and retrieval columns.
func FormatFrame(frame prices.Frame, globalFlags *globals.Flags) error {
	format := Format(globalFlags.Output)
	formatter := NewFormatter(format)

	// Transform to output format
	var outputData any
	switch format {
	case FormatTable, FormatWide, "":
		outputData = table.FrameToTableData(frame, format == FormatWide)
	default:
		outputData = frame
	}

	return formatter.Format(os.Stdout, outputData)
}

// FormatStatuses handles the common pattern of formatting per-symbol
// retrieval statuses for output.
func FormatStatuses(statuses []reconcile.SymbolStatus, globalFlags *globals.Flags) error {
	format := Format(globalFlags.Output)
	formatter := NewFormatter(format)

	// Transform to output format
	var outputData any
	switch format {
	case FormatTable, FormatWide, "":
		outputData = table.StatusesToTableData(statuses)
	default:
		outputData = statuses
	}

	return formatter.Format(os.Stdout, outputData)
}

// FormatProviders handles the common pattern of formatting the provider
// catalog for output. Masked key previews only appear in table output when
// showKeys is set; structured output never carries key material.
func FormatProviders(showKeys bool, globalFlags *globals.Flags) error {
	format := Format(globalFlags.Output)
	formatter := NewFormatter(format)

	// Transform to output format
	var outputData any
	switch format {
	case FormatTable, FormatWide, "":
		outputData = table.ProvidersToTableData(showKeys)
	default:
		outputData = registry.Describe()
	}

	return formatter.Format(os.Stdout, outputData)
}

// FormatDays handles the common pattern of formatting business days for
// output. Structured output carries plain date strings.
func FormatDays(days []time.Time, globalFlags *globals.Flags) error {
	format := Format(globalFlags.Output)
	formatter := NewFormatter(format)

	// Transform to output format
	var outputData any
	switch format {
	case FormatTable, FormatWide, "":
		outputData = table.DatesToTableData(days)
	default:
		dates := make([]string, 0, len(days))
		for _, d := range days {
			dates = append(dates, d.Format(constants.DateFormat))
		}
		outputData = dates
	}

	return formatter.Format(os.Stdout, outputData)
}

// FormatAny handles the common pattern of formatting any data type for
// output. This is useful for commands with custom data structures.
func FormatAny(data any, globalFlags *globals.Flags) error {
	formatter := NewFormatter(Format(globalFlags.Output))
	return formatter.Format(os.Stdout, data)
}
