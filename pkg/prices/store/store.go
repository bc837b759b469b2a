// Package store persists per-symbol price series to local cache files.
// One file holds one symbol's series; the format (csv, json or parquet)
// is chosen per request and encoded in the file extension.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
)

// Format identifies an on-disk cache file format.
type Format string

// Supported cache file formats.
const (
	CSV     Format = "csv"
	JSON    Format = "json"
	Parquet Format = "parquet"
)

// ParseFormat parses a format name. It accepts the format's extension
// spelling as well ("csv", ".csv").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "parquet":
		return Parquet, nil
	default:
		return "", errors.NewValidationError("file_format", s, "unsupported format (want csv, json or parquet)")
	}
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Valid reports whether the format is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case CSV, JSON, Parquet:
		return true
	}
	return false
}

// PathFor returns the cache file path for a symbol: <dir>/<SYMBOL>.<ext>.
func PathFor(dir, symbol string, format Format) string {
	return filepath.Join(dir, symbol+format.Ext())
}

// Load reads a symbol's cached series from path. A missing file surfaces the
// underlying fs.ErrNotExist through the returned error; corrupt content
// surfaces as a *errors.ParseError.
func Load(path string, format Format) (prices.Series, error) {
	switch format {
	case CSV:
		return loadCSV(path)
	case JSON:
		return loadJSON(path)
	case Parquet:
		return loadParquet(path)
	default:
		return nil, errors.NewValidationError("file_format", string(format), "unsupported format")
	}
}

// Save writes a symbol's series to path, overwriting any previous file and
// creating the parent directory when needed.
func Save(path string, format Format, rows prices.Series) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}

	switch format {
	case CSV:
		return saveCSV(path, rows)
	case JSON:
		return saveJSON(path, rows)
	case Parquet:
		return saveParquet(path, rows)
	default:
		return errors.NewValidationError("file_format", string(format), "unsupported format")
	}
}
