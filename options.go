package histfeed

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/histfeed/histfeed/internal/providers/registry"
	"github.com/histfeed/histfeed/internal/ratelimit"
	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/instructions"
	"github.com/histfeed/histfeed/pkg/logging"
	"github.com/histfeed/histfeed/pkg/prices"
	"github.com/histfeed/histfeed/pkg/prices/store"
	"github.com/histfeed/histfeed/pkg/providers"
)

// Option configures a Reader.
type Option func(*settings) error

// settings collects Reader configuration before the registry is built.
type settings struct {
	cal     calendar.Calendar
	clients []providers.Client
	now     func() time.Time
	logger  *zerolog.Logger
}

// newSettings applies options on top of the defaults.
func newSettings(opts ...Option) (*settings, error) {
	s := &settings{
		cal:    calendar.NYSE(),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// registryOptions translates the collected settings into registry options.
func (s *settings) registryOptions() []registry.Option {
	var opts []registry.Option
	if s.now != nil {
		opts = append(opts, registry.WithLimiterOptions(ratelimit.WithClock(s.now)))
	}
	return opts
}

// WithCalendar sets the trading calendar used for gap reporting and
// composite-source fills. The default is the NYSE calendar.
func WithCalendar(cal calendar.Calendar) Option {
	return func(s *settings) error {
		if cal == nil {
			return errors.NewValidationError("calendar", nil, "cannot be nil")
		}
		s.cal = cal
		return nil
	}
}

// WithClient installs a pre-built provider client, replacing the built-in
// client with the same ID. Tests use this to inject fakes.
func WithClient(c providers.Client) Option {
	return func(s *settings) error {
		if c == nil {
			return errors.NewValidationError("client", nil, "cannot be nil")
		}
		s.clients = append(s.clients, c)
		return nil
	}
}

// WithLogger sets the logger used for request-level events. The default is
// the process-wide logger from pkg/logging.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithClock replaces the time source of the provider rate limiters, used by
// tests to drive the sliding window deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *settings) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "cannot be nil")
		}
		s.now = now
		return nil
	}
}

// RequestOption configures one Get call.
type RequestOption func(*request) error

// request collects the configuration of one Get call.
type request struct {
	start, end time.Time
	generic    instructions.Instruction
	overrides  map[string]instructions.Override
	mode       OutputMode
}

// defaultStart is constants.DefaultStartDate resolved once.
var defaultStart = mustDate(constants.DefaultStartDate)

func mustDate(s string) time.Time {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

// newRequest applies request options on top of the defaults: the default
// start date through today, the default generic instruction, frame output.
func newRequest(opts ...RequestOption) (*request, error) {
	req := &request{
		start:   defaultStart,
		end:     prices.Day(time.Now().UTC()),
		generic: instructions.Default(),
		mode:    OutputFrame,
	}
	for _, opt := range opts {
		if err := opt(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// WithRange bounds the requested history, inclusive. A zero end means
// today; a zero start means the default start date.
func WithRange(start, end time.Time) RequestOption {
	return func(req *request) error {
		if start.IsZero() {
			start = defaultStart
		}
		if end.IsZero() {
			end = time.Now().UTC()
		}
		start, end = prices.Day(start), prices.Day(end)
		if start.After(end) {
			value := fmt.Sprintf("%s..%s",
				start.Format(constants.DateFormat), end.Format(constants.DateFormat))
			return errors.NewValidationError("range", value, "start is after end")
		}
		req.start, req.end = start, end
		return nil
	}
}

// WithSource sets the provider selector for every symbol, e.g. "yahoo" or
// the composite "alphavantage_yahoo". Unknown providers fail the call.
func WithSource(source string) RequestOption {
	return func(req *request) error {
		primary, _, err := providers.ParseSource(source)
		if err != nil {
			return err
		}
		if !registry.Has(primary) {
			return errors.NewNotFoundError("provider", string(primary))
		}
		req.generic.Source = source
		return nil
	}
}

// WithOverrides layers per-symbol deviations on the generic instruction.
// Symbols appearing only in the overrides are added to the request.
func WithOverrides(overrides map[string]instructions.Override) RequestOption {
	return func(req *request) error {
		req.overrides = overrides
		return nil
	}
}

// WithForce skips cache files and refetches the full range.
func WithForce(force bool) RequestOption {
	return func(req *request) error {
		req.generic.Force = force
		return nil
	}
}

// WithSave controls whether merged series are persisted after the run.
func WithSave(save bool) RequestOption {
	return func(req *request) error {
		req.generic.Save = save
		return nil
	}
}

// WithDir sets the cache directory.
func WithDir(dir string) RequestOption {
	return func(req *request) error {
		if dir == "" {
			return errors.NewValidationError("dir", dir, "cannot be empty")
		}
		req.generic.Dir = dir
		return nil
	}
}

// WithFormat sets the cache file format.
func WithFormat(format store.Format) RequestOption {
	return func(req *request) error {
		if !format.Valid() {
			return errors.NewValidationError("file_format", string(format),
				"unsupported format (want csv, json or parquet)")
		}
		req.generic.Format = format
		return nil
	}
}

// WithAPIKey sets the provider credential, overriding the environment.
func WithAPIKey(key string) RequestOption {
	return func(req *request) error {
		req.generic.APIKey = key
		return nil
	}
}

// WithParams replaces the provider tuning parameters (max_req_per_min, ...).
func WithParams(params map[string]string) RequestOption {
	return func(req *request) error {
		req.generic.Params = params
		return nil
	}
}

// WithVerbose raises per-symbol reconcile summaries to info level.
func WithVerbose(verbose bool) RequestOption {
	return func(req *request) error {
		req.generic.Verbose = verbose
		return nil
	}
}

// WithOutputMode selects the shape of the result, frame or dict.
func WithOutputMode(mode OutputMode) RequestOption {
	return func(req *request) error {
		if !mode.Valid() {
			return errors.NewValidationError("output", string(mode),
				"unsupported output mode (want frame or dict)")
		}
		req.mode = mode
		return nil
	}
}
