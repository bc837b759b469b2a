// Package instructions resolves the per-symbol fetch configuration for a
// request. A request carries one generic instruction plus optional per-symbol
// overrides; resolution overlays each override on the generic instruction and
// yields one fully-populated instruction per requested symbol.
package instructions

import (
	"sort"
	"strconv"
	"strings"

	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/logging"
	"github.com/histfeed/histfeed/pkg/prices/store"
)

// Instruction is the fully-resolved fetch configuration for one symbol.
type Instruction struct {
	Symbol  string            `json:"symbol" yaml:"symbol"`             // Ticker symbol
	Source  string            `json:"source" yaml:"source"`             // Provider selector, possibly composite ("alphavantage_yahoo")
	Force   bool              `json:"force" yaml:"force"`               // Skip the cache and refetch the full range
	Save    bool              `json:"save" yaml:"save"`                 // Persist the merged series after the run
	Dir     string            `json:"file_dir" yaml:"file_dir"`         // Cache directory
	Format  store.Format      `json:"file_format" yaml:"file_format"`   // Cache file format
	APIKey  string            `json:"-" yaml:"-"`                       // Provider credential, never serialized
	Params  map[string]string `json:"param,omitempty" yaml:"param,omitempty"` // Provider tuning parameters (max_req_per_min, ...)
	Verbose bool              `json:"verbose" yaml:"verbose"`           // Per-symbol progress logging
}

// Override carries optional per-symbol deviations from the generic
// instruction. Nil fields inherit the generic value; a non-nil Params map
// replaces the generic map wholesale.
type Override struct {
	Source  *string           `json:"source,omitempty" yaml:"source,omitempty"`
	Force   *bool             `json:"force,omitempty" yaml:"force,omitempty"`
	Save    *bool             `json:"save,omitempty" yaml:"save,omitempty"`
	Dir     *string           `json:"file_dir,omitempty" yaml:"file_dir,omitempty"`
	Format  *store.Format     `json:"file_format,omitempty" yaml:"file_format,omitempty"`
	APIKey  *string           `json:"-" yaml:"-"`
	Params  map[string]string `json:"param,omitempty" yaml:"param,omitempty"`
	Verbose *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Default returns the generic instruction used when a request sets nothing.
func Default() Instruction {
	return Instruction{
		Source: constants.DefaultProviderID,
		Save:   true,
		Dir:    constants.DefaultCacheDir,
		Format: store.CSV,
	}
}

// Resolve overlays overrides on the generic instruction and returns one
// instruction per symbol. The resolved symbol set is the union of symbols
// and the override keys: an override for a symbol missing from symbols adds
// that symbol to the request. Blank symbols are logged and skipped; an empty
// resolved set yields an empty slice and no error.
func Resolve(symbols []string, generic Instruction, overrides map[string]Override) ([]Instruction, error) {
	ordered := unionSymbols(symbols, overrides)
	if len(ordered) == 0 {
		logging.Warn().Msg("no valid symbols to resolve")
		return []Instruction{}, nil
	}

	resolved := make([]Instruction, 0, len(ordered))
	for _, symbol := range ordered {
		in := generic
		in.Symbol = symbol
		if ov, ok := overrides[symbol]; ok {
			in = ov.apply(in)
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		resolved = append(resolved, in)
	}
	return resolved, nil
}

// unionSymbols merges the symbol list with the override keys, preserving
// list order, deduplicating, and appending override-only symbols sorted.
func unionSymbols(symbols []string, overrides map[string]Override) []string {
	seen := make(map[string]struct{}, len(symbols)+len(overrides))
	ordered := make([]string, 0, len(symbols)+len(overrides))

	for _, symbol := range symbols {
		trimmed := strings.TrimSpace(symbol)
		if trimmed == "" {
			logging.Warn().Str("symbol", symbol).Msg("skipping blank symbol")
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		ordered = append(ordered, trimmed)
	}

	extra := make([]string, 0, len(overrides))
	for symbol := range overrides {
		trimmed := strings.TrimSpace(symbol)
		if trimmed == "" {
			logging.Warn().Msg("skipping override with blank symbol")
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		extra = append(extra, trimmed)
	}
	sort.Strings(extra)

	return append(ordered, extra...)
}

// apply overlays the override on base and returns the result.
func (o Override) apply(base Instruction) Instruction {
	if o.Source != nil {
		base.Source = *o.Source
	}
	if o.Force != nil {
		base.Force = *o.Force
	}
	if o.Save != nil {
		base.Save = *o.Save
	}
	if o.Dir != nil {
		base.Dir = *o.Dir
	}
	if o.Format != nil {
		base.Format = *o.Format
	}
	if o.APIKey != nil {
		base.APIKey = *o.APIKey
	}
	if o.Params != nil {
		base.Params = o.Params
	}
	if o.Verbose != nil {
		base.Verbose = *o.Verbose
	}
	return base
}

// Validate checks that the instruction has no unresolved fields.
func (in Instruction) Validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return errors.NewValidationError("symbol", in.Symbol, "cannot be empty")
	}
	if strings.TrimSpace(in.Source) == "" {
		return errors.NewValidationError("source", in.Source, "cannot be empty")
	}
	if !in.Format.Valid() {
		return errors.NewValidationError("file_format", string(in.Format), "unsupported format (want csv, json or parquet)")
	}
	if in.Save && strings.TrimSpace(in.Dir) == "" {
		return errors.NewValidationError("file_dir", in.Dir, "cannot be empty when save is set")
	}
	return nil
}

// CachePath returns the instruction's cache file path.
func (in Instruction) CachePath() string {
	return store.PathFor(in.Dir, in.Symbol, in.Format)
}

// MaxReqPerMin returns the per-minute request budget from the instruction
// parameters. The boolean is false when the parameter is absent or invalid.
func (in Instruction) MaxReqPerMin() (int, bool) {
	raw, ok := in.Params["max_req_per_min"]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		logging.Warn().Str("max_req_per_min", raw).Msg("ignoring invalid max_req_per_min parameter")
		return 0, false
	}
	return n, true
}
