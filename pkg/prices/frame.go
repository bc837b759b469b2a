package prices

import (
	"sort"
)

// Frame is the long-format union of several symbols' series: one row per
// symbol and date, sorted by date then symbol.
type Frame []Row

// NewFrame assembles a frame from per-symbol series.
func NewFrame(bySymbol map[string]Series) Frame {
	size := 0
	for _, s := range bySymbol {
		size += len(s)
	}

	frame := make(Frame, 0, size)
	for _, s := range bySymbol {
		frame = append(frame, s...)
	}
	frame.Sort()
	return frame
}

// Sort orders the frame by date ascending, then symbol ascending, in place.
func (f Frame) Sort() {
	sort.SliceStable(f, func(i, j int) bool {
		if !f[i].Date.Equal(f[j].Date) {
			return f[i].Date.Before(f[j].Date)
		}
		return f[i].Symbol < f[j].Symbol
	})
}

// Symbols returns the distinct symbols present in the frame, sorted.
func (f Frame) Symbols() []string {
	seen := make(map[string]struct{})
	for _, row := range f {
		seen[row.Symbol] = struct{}{}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// BySymbol splits the frame back into per-symbol series. Row order within
// each series follows frame order.
func (f Frame) BySymbol() map[string]Series {
	out := make(map[string]Series)
	for _, row := range f {
		out[row.Symbol] = append(out[row.Symbol], row)
	}
	return out
}

// Empty reports whether the frame holds no rows.
func (f Frame) Empty() bool {
	return len(f) == 0
}
