// Package histfeed retrieves historical market prices for stock symbols
// from multiple data providers, reconciling every request against local
// cache files so repeated runs only fetch what is actually missing.
//
// A Reader resolves each requested symbol into a fetch instruction, plans
// which date sub-ranges need the network, merges cached and fetched rows,
// and reports per-symbol status including missing business dates:
// - Cache-aware range planning (covered ranges never hit the network)
// - Composite sources with yahoo gap fill ("alphavantage_yahoo")
// - Blocking per-provider rate limiting shared across a run
// - Per-symbol overrides layered on one generic instruction
// - Gap reporting against a trading calendar (NYSE by default)
//
// Example usage:
//
//	// Create a reader with default settings
//	reader, err := histfeed.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Fetch two symbols, persisting the merged series to ./outDir
//	result, err := reader.Get(ctx, []string{"SPY", "QQQ"},
//	    histfeed.WithRange(start, end),
//	    histfeed.WithSource("alphavantage_yahoo"),
//	    histfeed.WithSave(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Access rows as one long-format table
//	for _, row := range result.Frame() {
//	    fmt.Printf("%s %s close=%.2f\n",
//	        row.Symbol, row.Date.Format("2006-01-02"), row.Close)
//	}
//
//	// Inspect per-symbol status of the last request
//	for _, st := range reader.RequestStatus() {
//	    fmt.Printf("%s: %s (%d rows, %d gaps)\n",
//	        st.Symbol, st.Status, st.Rows, st.Gaps)
//	}
package histfeed

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/utc"
	"github.com/rs/zerolog"

	"github.com/histfeed/histfeed/internal/providers/registry"
	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/instructions"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/reconcile"
)

// Reader is the public retrieval surface. It owns the provider registry,
// the trading calendar and the reconciler, plus the status report of the
// most recent request.
type Reader struct {
	registry *registry.Registry
	cal      calendar.Calendar
	rec      *reconcile.Reconciler
	logger   *zerolog.Logger

	// report of the most recent Get call
	mu       sync.RWMutex
	statuses []reconcile.SymbolStatus
	errorLog map[string][]time.Time
}

// New creates a Reader with the given options.
func New(opts ...Option) (*Reader, error) {
	s, err := newSettings(opts...)
	if err != nil {
		return nil, err
	}

	reg := registry.New(s.registryOptions()...)
	for _, client := range s.clients {
		reg.Register(client)
	}

	return &Reader{
		registry: reg,
		cal:      s.cal,
		rec:      reconcile.New(s.cal),
		logger:   s.logger,
		errorLog: make(map[string][]time.Time),
	}, nil
}

// Get retrieves daily history for symbols over the requested range. Each
// symbol is resolved, reconciled against its cache file and fetched
// independently; a provider failure marks that symbol failed and processing
// continues. Only option and argument validation fail the whole call.
func (r *Reader) Get(ctx context.Context, symbols []string, opts ...RequestOption) (*Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}
	began := time.Now()

	// Step 1: Parse request options
	req, err := newRequest(opts...)
	if err != nil {
		return nil, err
	}

	// Step 2: Resolve per-symbol instructions
	resolved, err := instructions.Resolve(symbols, req.generic, req.overrides)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Int("symbols", len(resolved)).
		Time("start", req.start).
		Time("end", req.end).
		Msg("Starting retrieval")

	// Step 3: Reconcile each symbol sequentially
	report := reconcile.NewReport()
	bySymbol := make(map[string]prices.Series, len(resolved))
	for _, inst := range resolved {
		if err := ctx.Err(); err != nil {
			r.record(report)
			return nil, err
		}
		out := r.fetchSymbol(ctx, inst, req)
		report.Add(out)
		if len(out.Series) > 0 {
			bySymbol[inst.Symbol] = out.Series
		}
	}

	// Step 4: Record the report for RequestStatus / ErrorLog
	r.record(report)

	// Step 5: Assemble the result in the requested shape
	result := &Result{
		mode:     req.mode,
		frame:    prices.NewFrame(bySymbol),
		bySymbol: bySymbol,
		elapsed:  time.Since(began),
	}

	r.logger.Info().
		Int("symbols", len(resolved)).
		Int("rows", len(result.frame)).
		Bool("complete", report.Complete()).
		Dur("elapsed", result.elapsed).
		Msg("Retrieval finished")

	return result, nil
}

// fetchSymbol builds the provider client for one instruction and runs the
// reconciler. An instruction whose client cannot be built (unknown provider,
// missing API key) becomes a failed status covering the full range.
func (r *Reader) fetchSymbol(ctx context.Context, inst instructions.Instruction, req *request) reconcile.Outcome {
	client, err := r.registry.ForInstruction(inst, r.cal)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("symbol", inst.Symbol).
			Str("provider", inst.Source).
			Msg("No usable client for symbol")
		missing := r.cal.BusinessDays(req.start, req.end)
		return reconcile.Outcome{
			Status: reconcile.SymbolStatus{
				Symbol:  inst.Symbol,
				Source:  inst.Source,
				Status:  reconcile.StatusFailed,
				Gaps:    len(missing),
				Started: utc.Now(),
				Err:     err.Error(),
			},
			Missing: missing,
		}
	}
	return r.rec.Run(ctx, inst, client, req.start, req.end)
}

// record stores the report of the most recent request.
func (r *Reader) record(report *reconcile.Report) {
	r.mu.Lock()
	r.statuses = report.Statuses
	r.errorLog = report.Errors
	r.mu.Unlock()
}

// RequestStatus returns the per-symbol statuses of the most recent Get call.
func (r *Reader) RequestStatus() []reconcile.SymbolStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]reconcile.SymbolStatus, len(r.statuses))
	copy(out, r.statuses)
	return out
}

// ErrorLog returns the missing business dates of the most recent Get call,
// keyed by symbol. Symbols without gaps are absent.
func (r *Reader) ErrorLog() map[string][]time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]time.Time, len(r.errorLog))
	for symbol, dates := range r.errorLog {
		copied := make([]time.Time, len(dates))
		copy(copied, dates)
		out[symbol] = copied
	}
	return out
}
