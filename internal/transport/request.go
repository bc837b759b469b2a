package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/histfeed/histfeed/pkg/errors"
	"github.com/histfeed/histfeed/pkg/logging"
)

// DecodeResponse reads a JSON response body into target, closing the body.
// Non-200 statuses become an APIError carrying the provider name, status code
// and response body so callers can classify rate limits and outages.
func DecodeResponse(provider string, resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("provider", provider).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}

	return nil
}
