package store

import (
	"encoding/json"
	"os"

	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
)

func saveJSON(path string, rows prices.Series) error {
	if rows == nil {
		rows = prices.Series{}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func loadJSON(path string) (prices.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var rows prices.Series
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}

	// Cached dates carry date-only semantics regardless of how the file
	// was produced.
	for i := range rows {
		rows[i].Date = prices.Day(rows[i].Date)
	}
	return rows, nil
}
