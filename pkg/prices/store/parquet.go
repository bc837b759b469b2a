package store

import (
	"os"
	"time"

	"github.com/agentstation/utc"
	"github.com/parquet-go/parquet-go"

	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
)

// parquetRow is the flat on-disk schema for the columnar format. Dates are
// stored as unix milliseconds so the schema stays primitive-only.
type parquetRow struct {
	Symbol      string  `parquet:"symbol"`
	Date        int64   `parquet:"date"`
	Open        float64 `parquet:"open"`
	High        float64 `parquet:"high"`
	Low         float64 `parquet:"low"`
	Close       float64 `parquet:"close"`
	Volume      int64   `parquet:"volume"`
	AdjClose    float64 `parquet:"adjusted"`
	Dividend    float64 `parquet:"divd"`
	SplitFactor float64 `parquet:"split"`
	Source      string  `parquet:"source"`
	Retrieved   int64   `parquet:"record_date"`
}

func saveParquet(path string, rows prices.Series) error {
	records := make([]parquetRow, 0, len(rows))
	for _, row := range rows {
		record := parquetRow{
			Symbol:      row.Symbol,
			Date:        row.Day().UnixMilli(),
			Open:        row.Open,
			High:        row.High,
			Low:         row.Low,
			Close:       row.Close,
			Volume:      row.Volume,
			AdjClose:    row.AdjClose,
			Dividend:    row.Dividend,
			SplitFactor: row.SplitFactor,
			Source:      row.Source,
		}
		if !row.Retrieved.IsZero() {
			record.Retrieved = row.Retrieved.UnixMilli()
		}
		records = append(records, record)
	}

	if err := parquet.WriteFile(path, records); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func loadParquet(path string) (prices.Series, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WrapIO("open", path, err)
	}

	records, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, errors.WrapParse("parquet", path, err)
	}

	rows := make(prices.Series, 0, len(records))
	for _, record := range records {
		row := prices.Row{
			Symbol:      record.Symbol,
			Date:        prices.Day(time.UnixMilli(record.Date).UTC()),
			Open:        record.Open,
			High:        record.High,
			Low:         record.Low,
			Close:       record.Close,
			Volume:      record.Volume,
			AdjClose:    record.AdjClose,
			Dividend:    record.Dividend,
			SplitFactor: record.SplitFactor,
			Source:      record.Source,
		}
		if record.Retrieved != 0 {
			row.Retrieved = utc.Time{Time: time.UnixMilli(record.Retrieved).UTC()}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
