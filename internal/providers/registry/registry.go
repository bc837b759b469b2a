// Package registry assembles provider clients for resolved instructions.
// This package is separate from the providers contract to avoid circular
// dependencies between the contract and the concrete clients.
//
// A Registry is created per Reader and owns the per-provider rate limiters,
// so one run shares a single request budget across all symbols that hit the
// same capped provider.
package registry

import (
	"net/http"
	"sort"
	"sync"

	"github.com/histfeed/histfeed/internal/config"
	"github.com/histfeed/histfeed/internal/providers/alphavantage"
	"github.com/histfeed/histfeed/internal/providers/eodhistoricaldata"
	"github.com/histfeed/histfeed/internal/providers/marketstack"
	"github.com/histfeed/histfeed/internal/providers/yahoo"
	"github.com/histfeed/histfeed/internal/ratelimit"
	"github.com/histfeed/histfeed/pkg/calendar"
	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/instructions"
	"github.com/histfeed/histfeed/pkg/logging"
	"github.com/histfeed/histfeed/pkg/providers"
)

// entry describes how to build one provider client.
type entry struct {
	build       func(providers.Config) providers.Client
	requiresKey bool
	maxPerMin   int // default per-minute budget, 0 means uncapped
}

// catalog maps provider IDs to their client builders.
var catalog = map[providers.ID]entry{
	providers.IDYahoo: {
		build: func(cfg providers.Config) providers.Client { return yahoo.New(cfg) },
	},
	providers.IDAlphavantage: {
		build:       func(cfg providers.Config) providers.Client { return alphavantage.New(cfg) },
		requiresKey: true,
		maxPerMin:   constants.AlphavantageMaxReqPerMin,
	},
	providers.IDEODHistoricalData: {
		build:       func(cfg providers.Config) providers.Client { return eodhistoricaldata.New(cfg) },
		requiresKey: true,
		maxPerMin:   constants.EODHistoricalDataMaxReqPerMin,
	},
	providers.IDMarketstack: {
		build:       func(cfg providers.Config) providers.Client { return marketstack.New(cfg) },
		requiresKey: true,
		maxPerMin:   constants.MarketstackMaxReqPerMin,
	},
}

// Has reports whether a provider ID has a client implementation.
func Has(id providers.ID) bool {
	_, ok := catalog[id]
	return ok
}

// List returns all registered provider IDs, sorted.
func List() []providers.ID {
	ids := make([]providers.ID, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RequiresKey reports whether a provider needs an API key.
func RequiresKey(id providers.ID) bool {
	return catalog[id].requiresKey
}

// Budget returns the default per-minute request budget for a provider, 0
// when uncapped.
func Budget(id providers.ID) int {
	return catalog[id].maxPerMin
}

// Info is the displayable summary of one catalog entry.
type Info struct {
	ID          providers.ID `json:"id" yaml:"id"`
	EnvKey      string       `json:"env_key,omitempty" yaml:"env_key,omitempty"`
	MaxPerMin   int          `json:"max_req_per_min,omitempty" yaml:"max_req_per_min,omitempty"`
	RequiresKey bool         `json:"requires_key" yaml:"requires_key"`
	Configured  bool         `json:"configured" yaml:"configured"`
}

// Describe summarizes every registered provider, sorted by ID. Configured
// reflects whether the provider's credential requirement is met right now.
func Describe() []Info {
	ids := List()
	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		e := catalog[id]
		infos = append(infos, Info{
			ID:          id,
			EnvKey:      config.EnvKeyName(id),
			MaxPerMin:   e.maxPerMin,
			RequiresKey: e.requiresKey,
			Configured:  !e.requiresKey || config.HasAPIKey(id),
		})
	}
	return infos
}

// Registry builds provider clients and owns the shared rate limiters of one
// run.
type Registry struct {
	mu        sync.Mutex
	overrides map[providers.ID]providers.Client
	limiters  map[providers.ID]*ratelimit.Limiter

	httpClient  *http.Client
	baseURLs    map[providers.ID]string
	limiterOpts []ratelimit.Option
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPClient injects the HTTP client handed to every built provider.
func WithHTTPClient(h *http.Client) Option {
	return func(r *Registry) {
		r.httpClient = h
	}
}

// WithBaseURL points one provider at a different endpoint, used by tests to
// target an httptest server.
func WithBaseURL(id providers.ID, url string) Option {
	return func(r *Registry) {
		r.baseURLs[id] = url
	}
}

// WithLimiterOptions forwards options to every rate limiter the registry
// creates, used to inject a test clock.
func WithLimiterOptions(opts ...ratelimit.Option) Option {
	return func(r *Registry) {
		r.limiterOpts = append(r.limiterOpts, opts...)
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		overrides: make(map[providers.ID]providers.Client),
		limiters:  make(map[providers.ID]*ratelimit.Limiter),
		baseURLs:  make(map[providers.ID]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register installs a pre-built client for its ID, replacing the built-in
// construction. Registered clients are used as-is, without limiter wiring.
func (r *Registry) Register(c providers.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[c.ID()] = c
}

// ForInstruction builds the effective source for an instruction: the primary
// client, wrapped in the yahoo fallback chain when the selector is composite.
func (r *Registry) ForInstruction(inst instructions.Instruction, cal calendar.Calendar) (providers.Client, error) {
	primaryID, fallbackID, err := providers.ParseSource(inst.Source)
	if err != nil {
		return nil, err
	}

	primary, err := r.client(primaryID, inst)
	if err != nil {
		return nil, err
	}
	if fallbackID == "" {
		return primary, nil
	}

	secondary, err := r.client(fallbackID, inst)
	if err != nil {
		return nil, err
	}
	return providers.NewFallback(primary, secondary, cal), nil
}

// client returns the override for id when one is registered, otherwise
// builds a fresh client with credentials and the shared limiter.
func (r *Registry) client(id providers.ID, inst instructions.Instruction) (providers.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.overrides[id]; ok {
		return c, nil
	}

	e, ok := catalog[id]
	if !ok {
		return nil, errors.NewNotFoundError("provider", string(id))
	}

	key := inst.APIKey
	if key == "" {
		key = config.APIKey(id)
	}
	if e.requiresKey && key == "" {
		return nil, errors.NewAuthenticationError(string(id), "api_key",
			"API key required (set "+config.EnvKeyName(id)+")", errors.ErrAPIKeyRequired)
	}

	perMin, _ := inst.MaxReqPerMin()
	return e.build(providers.Config{
		APIKey:     key,
		BaseURL:    r.baseURLs[id],
		HTTPClient: r.httpClient,
		Pacer:      r.limiterLocked(id, e.maxPerMin, perMin),
	}), nil
}

// limiterLocked returns the shared limiter for id, creating it on first use.
// The instruction budget overrides the provider default; once created the
// limiter keeps its budget for the rest of the run. Callers must hold mu.
func (r *Registry) limiterLocked(id providers.ID, defaultPerMin, instructionPerMin int) *ratelimit.Limiter {
	if l, ok := r.limiters[id]; ok {
		return l
	}

	budget := defaultPerMin
	if instructionPerMin > 0 {
		budget = instructionPerMin
	}
	if budget <= 0 {
		return nil
	}

	logging.Debug().
		Str("provider", string(id)).
		Int("max_per_min", budget).
		Msg("Creating provider rate limiter")

	l := ratelimit.New(string(id), budget, r.limiterOpts...)
	r.limiters[id] = l
	return l
}
