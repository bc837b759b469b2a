package histfeed

import (
	"time"

	"github.com/histfeed/histfeed/pkg/prices"
)

// OutputMode selects the shape a Result presents.
type OutputMode string

// Output modes.
const (
	// OutputFrame presents one long-format table sorted by date then symbol.
	OutputFrame OutputMode = "frame"

	// OutputDict presents a map of per-symbol series.
	OutputDict OutputMode = "dict"
)

// Valid reports whether the mode is a known output mode.
func (m OutputMode) Valid() bool {
	return m == OutputFrame || m == OutputDict
}

// String returns the mode as a string.
func (m OutputMode) String() string {
	return string(m)
}

// Result carries the reconciled rows of one Get call.
type Result struct {
	mode     OutputMode
	frame    prices.Frame
	bySymbol map[string]prices.Series
	elapsed  time.Duration
}

// Mode returns the output mode the request asked for.
func (r *Result) Mode() OutputMode {
	return r.mode
}

// Frame returns all rows as one long-format table sorted by date then
// symbol.
func (r *Result) Frame() prices.Frame {
	return r.frame
}

// BySymbol returns the rows grouped per symbol. Symbols that produced no
// rows are absent.
func (r *Result) BySymbol() map[string]prices.Series {
	return r.bySymbol
}

// Empty reports whether the request produced no rows at all.
func (r *Result) Empty() bool {
	return len(r.frame) == 0
}

// Elapsed returns the wall-clock duration of the whole request.
func (r *Result) Elapsed() time.Duration {
	return r.elapsed
}
