// Package reconcile implements the cache-aware retrieval at the heart of
// histfeed. For each instruction it plans which date sub-ranges actually
// need the network, merges cached and fetched rows with fetched rows winning
// date conflicts, reports gaps against the trading calendar, and persists
// the merged series back to the cache file.
package reconcile

import (
	"context"
	stderrors "errors"
	"io/fs"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/instructions"
	"github.com/histfeed/histfeed/pkg/logging"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/prices/store"
	"github.com/histfeed/histfeed/pkg/providers"
)

// Reconciler runs instructions against a provider client, the cache files
// and the trading calendar. Symbols are processed one at a time; the
// Reconciler itself holds no per-run state.
type Reconciler struct {
	cal calendar.Calendar
}

// New creates a reconciler using cal to decide which dates a complete
// series must cover.
func New(cal calendar.Calendar) *Reconciler {
	return &Reconciler{cal: cal}
}

// span is an inclusive date range that needs fetching.
type span struct {
	start, end time.Time
}

// Run reconciles one symbol over [start, end]: it loads the cache unless
// the instruction forces a refetch, fetches only the missing sub-ranges
// from client, merges with fetched rows winning, and persists when the
// instruction asks for it. Fetch failures degrade the status, they never
// abort the run.
func (r *Reconciler) Run(ctx context.Context, inst instructions.Instruction, client providers.Client, start, end time.Time) Outcome {
	began := time.Now()
	start, end = prices.Day(start), prices.Day(end)

	status := SymbolStatus{
		Symbol:  inst.Symbol,
		Source:  inst.Source,
		Started: utc.Now(),
	}

	var cached prices.Series
	if inst.Force {
		r.log(inst).Debug().
			Time("start", start).
			Time("end", end).
			Msg("Force refetch, skipping cache")
	} else {
		cached = r.loadCache(inst)
	}

	var fetched prices.Series
	var fetchErr error
	for _, sp := range plan(cached, start, end, inst.Force) {
		rows, err := client.Daily(ctx, inst.Symbol, sp.start, sp.end)
		if err != nil {
			if errors.IsNoData(err) {
				r.log(inst).Debug().
					Time("start", sp.start).
					Time("end", sp.end).
					Msg("Provider returned no rows for sub-range")
			} else {
				r.log(inst).Warn().
					Err(err).
					Time("start", sp.start).
					Time("end", sp.end).
					Msg("Fetch failed for sub-range")
			}
			if fetchErr == nil {
				fetchErr = err
			}
			continue
		}
		r.log(inst).Debug().
			Time("start", sp.start).
			Time("end", sp.end).
			Int("rows", len(rows)).
			Msg("Fetched sub-range")
		fetched = append(fetched, rows...)
	}

	// full keeps cached rows outside the requested range so a partial
	// request never truncates the cache file.
	full := cached.Merge(fetched)
	merged := full.Clip(start, end)
	missing := r.missingDates(merged, start, end)

	status.Rows = len(merged)
	status.Gaps = len(missing)
	status.Elapsed = time.Since(began)
	switch {
	case len(merged) == 0:
		status.Status = StatusFailed
		if fetchErr != nil {
			status.Err = fetchErr.Error()
		} else {
			status.Err = "no rows in requested range"
		}
	case len(missing) > 0:
		status.Status = StatusPartial
		if fetchErr != nil {
			status.Err = fetchErr.Error()
		}
	default:
		status.Status = StatusComplete
	}

	if inst.Save && len(fetched) > 0 && len(full) > 0 {
		r.persist(inst, full)
	}

	r.logOutcome(inst, status)

	return Outcome{
		Series:  merged,
		Status:  status,
		Fetched: len(fetched),
		Missing: missing,
	}
}

// plan decides which inclusive sub-ranges of [start, end] must be fetched
// given the cached rows. Sub-range bounds use calendar-day arithmetic; a
// bound landing on a non-trading day just fetches nothing extra.
func plan(cached prices.Series, start, end time.Time, force bool) []span {
	if force {
		return []span{{start: start, end: end}}
	}

	cs, ce, ok := cached.Span()
	if !ok {
		return []span{{start: start, end: end}}
	}

	var spans []span
	if cs.After(start) {
		head := span{start: start, end: cs.AddDate(0, 0, -1)}
		if head.end.After(end) {
			head.end = end
		}
		spans = append(spans, head)
	}
	if ce.Before(end) {
		tail := span{start: ce.AddDate(0, 0, 1), end: end}
		if tail.start.Before(start) {
			tail.start = start
		}
		spans = append(spans, tail)
	}
	return spans
}

// loadCache reads the instruction's cache file. A missing, unreadable or
// corrupt file is treated as an empty cache so the full range gets fetched.
func (r *Reconciler) loadCache(inst instructions.Instruction) prices.Series {
	path := inst.CachePath()
	rows, err := store.Load(path, inst.Format)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			r.log(inst).Debug().
				Str("path", path).
				Msg("No cache file, fetching full range")
		} else {
			r.log(inst).Warn().
				Err(err).
				Str("path", path).
				Msg("Unreadable cache treated as empty")
		}
		return nil
	}
	return rows
}

// persist writes the full merged series back to the cache file. Failures
// are logged and swallowed; a broken disk must not fail the run.
func (r *Reconciler) persist(inst instructions.Instruction, full prices.Series) {
	path := inst.CachePath()
	if err := store.Save(path, inst.Format, full); err != nil {
		r.log(inst).Warn().
			Err(err).
			Str("path", path).
			Msg("Failed to persist series, continuing")
		return
	}
	r.log(inst).Debug().
		Str("path", path).
		Int("rows", len(full)).
		Msg("Persisted series")
}

// missingDates returns the expected business dates in [start, end] the
// merged series does not cover, ascending.
func (r *Reconciler) missingDates(merged prices.Series, start, end time.Time) []time.Time {
	have := make(map[time.Time]bool, len(merged))
	for _, row := range merged {
		have[row.Day()] = true
	}

	var missing []time.Time
	for _, d := range r.cal.BusinessDays(start, end) {
		if !have[d] {
			missing = append(missing, d)
		}
	}
	return missing
}

// log returns a logger carrying the instruction's symbol and source.
func (r *Reconciler) log(inst instructions.Instruction) *zerolog.Logger {
	logger := logging.Default().With().
		Str("symbol", inst.Symbol).
		Str("provider", inst.Source).
		Logger()
	return &logger
}

// logOutcome emits the end-of-symbol summary, at info level for verbose
// instructions and debug otherwise.
func (r *Reconciler) logOutcome(inst instructions.Instruction, status SymbolStatus) {
	event := r.log(inst).Debug()
	if inst.Verbose {
		event = r.log(inst).Info()
	}
	event.
		Str("status", string(status.Status)).
		Int("rows", status.Rows).
		Int("gaps", status.Gaps).
		Dur("elapsed", status.Elapsed).
		Msg("Reconciled symbol")
}
