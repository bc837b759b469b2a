package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
)

// csvHeader lists the cache file columns in write order.
var csvHeader = []string{
	"symbol", "date", "open", "high", "low", "close",
	"volume", "adjusted", "divd", "split", "source", "record_date",
}

func saveCSV(path string, rows prices.Series) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.WrapIO("write", path, err)
	}

	for _, row := range rows {
		record := []string{
			row.Symbol,
			row.Date.Format(constants.DateFormat),
			formatFloat(row.Open),
			formatFloat(row.High),
			formatFloat(row.Low),
			formatFloat(row.Close),
			strconv.FormatInt(row.Volume, 10),
			formatFloat(row.AdjClose),
			formatFloat(row.Dividend),
			formatFloat(row.SplitFactor),
			row.Source,
			row.Retrieved.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func loadCSV(path string) (prices.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapParse("csv", path, err)
	}
	if len(records) == 0 {
		return prices.Series{}, nil
	}

	header := records[0]
	if len(header) != len(csvHeader) {
		return nil, errors.NewParseError("csv", path,
			fmt.Sprintf("unexpected column count %d (want %d)", len(header), len(csvHeader)), nil)
	}

	rows := make(prices.Series, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseCSVRecord(record)
		if err != nil {
			return nil, &errors.ParseError{
				Format:  "csv",
				File:    path,
				Line:    i + 2, // header is line 1
				Column:  1,
				Message: err.Error(),
				Err:     err,
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCSVRecord(record []string) (prices.Row, error) {
	if len(record) != len(csvHeader) {
		return prices.Row{}, fmt.Errorf("unexpected field count %d (want %d)", len(record), len(csvHeader))
	}

	date, err := prices.ParseDay(record[1])
	if err != nil {
		return prices.Row{}, fmt.Errorf("parsing date %q: %w", record[1], err)
	}

	floats := make([]float64, 0, 6)
	for _, idx := range []int{2, 3, 4, 5, 7, 8} {
		v, err := strconv.ParseFloat(record[idx], 64)
		if err != nil {
			return prices.Row{}, fmt.Errorf("parsing %s %q: %w", csvHeader[idx], record[idx], err)
		}
		floats = append(floats, v)
	}

	volume, err := strconv.ParseInt(record[6], 10, 64)
	if err != nil {
		return prices.Row{}, fmt.Errorf("parsing volume %q: %w", record[6], err)
	}

	split, err := strconv.ParseFloat(record[9], 64)
	if err != nil {
		return prices.Row{}, fmt.Errorf("parsing split %q: %w", record[9], err)
	}

	var retrieved utc.Time
	if record[11] != "" {
		ts, err := time.Parse(time.RFC3339, record[11])
		if err != nil {
			return prices.Row{}, fmt.Errorf("parsing record_date %q: %w", record[11], err)
		}
		retrieved = utc.Time{Time: ts.UTC()}
	}

	return prices.Row{
		Symbol:      record[0],
		Date:        date,
		Open:        floats[0],
		High:        floats[1],
		Low:         floats[2],
		Close:       floats[3],
		Volume:      volume,
		AdjClose:    floats[4],
		Dividend:    floats[5],
		SplitFactor: split,
		Source:      record[10],
		Retrieved:   retrieved,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
