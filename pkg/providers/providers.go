// Package providers defines the contract shared by the market-data clients:
// the provider ID space, the Client interface every concrete client
// implements, the assembled Config handed to client constructors, and the
// composite fallback that chains two clients. The concrete clients live in
// internal/providers; the registry that builds them lives in
// internal/providers/registry to avoid circular imports.
package providers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/prices"
)

// ID identifies a market-data provider.
type ID string

// Registered provider IDs.
const (
	IDYahoo             ID = "yahoo"
	IDAlphavantage      ID = "alphavantage"
	IDEODHistoricalData ID = "eodhistoricaldata"
	IDMarketstack       ID = "marketstack"
)

// String returns the ID as a string.
func (id ID) String() string {
	return string(id)
}

// Client fetches daily OHLCV history for one symbol at a time.
type Client interface {
	// ID returns the provider identifier.
	ID() ID

	// Daily returns the daily rows for symbol between start and end,
	// inclusive of both bounds.
	Daily(ctx context.Context, symbol string, start, end time.Time) (prices.Series, error)
}

// Pacer makes callers wait until the next outbound request fits the
// provider's rate budget.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Config carries the assembled settings a concrete client is built from.
type Config struct {
	APIKey     string       // credential, empty for keyless providers
	BaseURL    string       // endpoint override, used by tests
	HTTPClient *http.Client // underlying HTTP client override
	Pacer      Pacer        // request budget, nil when uncapped
}

// ParseSource splits a source selector into its primary provider ID and an
// optional yahoo fallback ID. A selector like "alphavantage_yahoo" means
// fetch from alphavantage and fill missing business dates from yahoo.
func ParseSource(source string) (primary, fallback ID, err error) {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "" {
		return "", "", &errors.ValidationError{
			Field:   "source",
			Value:   source,
			Message: "source must not be empty",
		}
	}

	if s != string(IDYahoo) {
		if base, ok := strings.CutSuffix(s, "_"+string(IDYahoo)); ok {
			if base == "" {
				return "", "", &errors.ValidationError{
					Field:   "source",
					Value:   source,
					Message: "composite source needs a primary provider before _yahoo",
				}
			}
			return ID(base), IDYahoo, nil
		}
	}

	return ID(s), "", nil
}
