package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/histfeed/histfeed"
	"github.com/histfeed/histfeed/internal/cmd/emoji"
	"github.com/histfeed/histfeed/internal/cmd/output"
	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/prices/store"
	"github.com/histfeed/histfeed/pkg/reconcile"
)

var (
	fetchStart        string
	fetchEnd          string
	fetchSource       string
	fetchForce        bool
	fetchSave         bool
	fetchDir          string
	fetchFileFormat   string
	fetchAPIKey       string
	fetchMaxReqPerMin int
)

// fetchCmd represents the fetch command.
var fetchCmd = &cobra.Command{
	Use:   "fetch SYMBOL[,SYMBOL...]",
	Short: "Retrieve historical prices for one or more symbols",
	Long: `Fetch retrieves end-of-day price history for the given symbols.

Rows already cached on disk are reused; only the missing date ranges are
requested from the provider. Use --force to bypass the cache and retrieve
the full range again.

Providers other than yahoo require an API key, configured through the
environment or --api-key.`,
	Example: `  histfeed fetch SPY
  histfeed fetch SPY,QQQ --start 2020-01-01 --end 2020-12-31
  histfeed fetch VTI --source alphavantage_yahoo --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchStart, "start", "",
		"Start date, YYYY-MM-DD (default "+constants.DefaultStartDate+")")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "",
		"End date, YYYY-MM-DD (default today)")
	fetchCmd.Flags().StringVarP(&fetchSource, "source", "s", "",
		"Price provider: yahoo, alphavantage, eodhistoricaldata, marketstack, or a composite like alphavantage_yahoo")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false,
		"Ignore cached rows and retrieve the full range")
	fetchCmd.Flags().BoolVar(&fetchSave, "save", true,
		"Persist merged series to the cache directory")
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "",
		"Cache directory (default "+constants.DefaultCacheDir+")")
	fetchCmd.Flags().StringVar(&fetchFileFormat, "file-format", "",
		"Cache file format: csv, json or parquet (default csv)")
	fetchCmd.Flags().StringVar(&fetchAPIKey, "api-key", "",
		"Provider API key, overrides the environment")
	fetchCmd.Flags().IntVar(&fetchMaxReqPerMin, "max-req-per-min", 0,
		"Cap provider requests per minute, 0 uses the provider default")
}

// runFetch retrieves prices for the requested symbols and prints the
// assembled frame plus a per-symbol status footer.
func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := fetchOptions()
	if err != nil {
		return err
	}

	reader, err := histfeed.New()
	if err != nil {
		return err
	}

	result, err := reader.Get(ctx, splitSymbols(args), opts...)
	if err != nil {
		return err
	}

	statuses := reader.RequestStatus()
	if result.Empty() {
		if !globalFlags.Quiet {
			fmt.Fprintln(os.Stderr, "No rows retrieved")
			reportStatuses(statuses)
		}
		return nil
	}

	if err := output.FormatFrame(result.Frame(), globalFlags); err != nil {
		return err
	}

	// Status footer: part of the table view, a stderr summary otherwise so
	// structured output stays a single document.
	switch output.Format(globalFlags.Output) {
	case output.FormatTable, output.FormatWide, "":
		if !globalFlags.Quiet {
			fmt.Println()
			return output.FormatStatuses(statuses, globalFlags)
		}
	default:
		if !globalFlags.Quiet {
			reportStatuses(statuses)
		}
	}

	return nil
}

// fetchOptions translates command flags into request options.
func fetchOptions() ([]histfeed.RequestOption, error) {
	var opts []histfeed.RequestOption

	start, end, err := parseRange(fetchStart, fetchEnd)
	if err != nil {
		return nil, err
	}
	if !start.IsZero() || !end.IsZero() {
		opts = append(opts, histfeed.WithRange(start, end))
	}

	if fetchSource != "" {
		opts = append(opts, histfeed.WithSource(fetchSource))
	}
	if fetchForce {
		opts = append(opts, histfeed.WithForce(true))
	}
	opts = append(opts, histfeed.WithSave(fetchSave))
	if fetchDir != "" {
		opts = append(opts, histfeed.WithDir(fetchDir))
	}
	if fetchFileFormat != "" {
		opts = append(opts, histfeed.WithFormat(store.Format(strings.ToLower(fetchFileFormat))))
	}
	if fetchAPIKey != "" {
		opts = append(opts, histfeed.WithAPIKey(fetchAPIKey))
	}
	if fetchMaxReqPerMin > 0 {
		opts = append(opts, histfeed.WithParams(map[string]string{
			"max_req_per_min": strconv.Itoa(fetchMaxReqPerMin),
		}))
	}
	if globalFlags.Verbose {
		opts = append(opts, histfeed.WithVerbose(true))
	}

	return opts, nil
}

// parseRange parses the --start and --end flags, leaving unset flags as zero
// times so the request defaults apply.
func parseRange(startText, endText string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if startText != "" {
		start, err = time.Parse(constants.DateFormat, startText)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start date %q: expected YYYY-MM-DD", startText)
		}
	}
	if endText != "" {
		end, err = time.Parse(constants.DateFormat, endText)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end date %q: expected YYYY-MM-DD", endText)
		}
	}

	return start, end, nil
}

// splitSymbols flattens the symbol arguments, accepting both space and comma
// separated lists.
func splitSymbols(args []string) []string {
	var symbols []string
	for _, arg := range args {
		for _, symbol := range strings.Split(arg, ",") {
			symbol = strings.TrimSpace(symbol)
			if symbol != "" {
				symbols = append(symbols, symbol)
			}
		}
	}
	return symbols
}

// reportStatuses prints per-symbol retrieval results to stderr.
func reportStatuses(statuses []reconcile.SymbolStatus) {
	var rows, failures int
	for _, s := range statuses {
		switch s.Status {
		case reconcile.StatusFailed:
			failures++
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", emoji.Error, s.Symbol, s.Err)
		case reconcile.StatusPartial:
			fmt.Fprintf(os.Stderr, "%s %s: %d rows, %d gaps\n", emoji.Warning, s.Symbol, s.Rows, s.Gaps)
		default:
			fmt.Fprintf(os.Stderr, "%s %s: %d rows\n", emoji.Success, s.Symbol, s.Rows)
		}
		rows += s.Rows
	}

	fmt.Fprintf(os.Stderr, "\nRetrieved %d total rows from %d symbols (%d failed)\n",
		rows, len(statuses), failures)
}
