package reconcile

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/histfeed/histfeed/pkg/prices"
)

// Status classifies the outcome for one symbol.
type Status string

// Symbol statuses.
const (
	// StatusComplete means every expected business date is covered.
	StatusComplete Status = "complete"
	// StatusPartial means rows came back but business dates are missing.
	StatusPartial Status = "partial"
	// StatusFailed means zero rows for the requested range.
	StatusFailed Status = "failed"
)

// SymbolStatus records how one symbol fared in a run.
type SymbolStatus struct {
	Symbol  string        `json:"symbol"`          // ticker symbol
	Source  string        `json:"source"`          // source selector it was fetched with
	Status  Status        `json:"status"`          // complete, partial or failed
	Rows    int           `json:"rows"`            // rows in the reconciled series
	Gaps    int           `json:"gaps"`            // expected business dates still missing
	Started utc.Time      `json:"started"`         // when processing began
	Elapsed time.Duration `json:"elapsed"`         // processing time incl. network
	Err     string        `json:"error,omitempty"` // first fetch failure, if any
}

// Outcome carries the reconciled series of one symbol plus its status.
type Outcome struct {
	Series  prices.Series // merged rows clipped to the requested range
	Status  SymbolStatus
	Fetched int         // rows newly fetched from the provider
	Missing []time.Time // expected business dates absent after the merge
}

// Report aggregates the per-symbol outcomes of one run.
type Report struct {
	Statuses []SymbolStatus
	Errors   map[string][]time.Time // symbol → ordered missing business dates
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		Errors: make(map[string][]time.Time),
	}
}

// Add folds one outcome into the report.
func (r *Report) Add(out Outcome) {
	r.Statuses = append(r.Statuses, out.Status)
	if len(out.Missing) > 0 {
		r.Errors[out.Status.Symbol] = out.Missing
	}
}

// Complete reports whether every symbol finished with a complete status.
func (r *Report) Complete() bool {
	for _, s := range r.Statuses {
		if s.Status != StatusComplete {
			return false
		}
	}
	return true
}
