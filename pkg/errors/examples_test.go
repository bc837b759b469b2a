package errors_test

import (
	"fmt"
	"net/http"

	"github.com/histfeed/histfeed/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	// Create a not found error
	err := &errors.NotFoundError{
		Resource: "provider",
		ID:       "quandl",
	}

	// Check error type
	if errors.IsNotFound(err) {
		fmt.Println("Resource not found")
	}

	// Output: Resource not found
}

// Example_aPIError demonstrates API error handling.
func Example_aPIError() {
	// Simulate an API error
	err := &errors.APIError{
		Provider:   "alphavantage",
		Endpoint:   "https://www.alphavantage.co/query",
		StatusCode: 429,
		Message:    "Rate limit exceeded",
	}

	// Check and handle specific error types
	switch err.StatusCode {
	case 429:
		fmt.Println("Rate limited - retry later")
	case 401:
		fmt.Println("Authentication failed")
	case 500:
		fmt.Println("Server error")
	}

	// Output: Rate limited - retry later
}

// Example_authenticationError shows authentication error handling.
func Example_authenticationError() {
	// Create authentication error
	err := &errors.AuthenticationError{
		Provider: "eodhistoricaldata",
		Message:  "API key not configured",
	}

	// Auth error is already typed
	fmt.Printf("Auth failed for %s: %s\n",
		err.Provider, err.Message)

	// Output: Auth failed for eodhistoricaldata: API key not configured
}

// Example_fetchError demonstrates per-symbol fetch error records.
func Example_fetchError() {
	// Record a failed retrieval for one symbol
	err := errors.NewFetchError("yahoo", "SRET", errors.ErrNoData)

	if errors.IsNoData(err) {
		fmt.Println(err.Error())
	}

	// Output: fetch error for SRET from yahoo: no data returned
}

// Example_errorWrapping demonstrates error wrapping patterns.
func Example_errorWrapping() {
	// Original error
	originalErr := fmt.Errorf("connection refused")

	// Wrap with IO error
	ioErr := errors.WrapIO("connect", "query2.finance.yahoo.com", originalErr)

	// Wrap with API error
	_ = &errors.APIError{
		Provider:   "yahoo",
		Endpoint:   "https://query2.finance.yahoo.com/v8/finance/chart/SPY",
		StatusCode: 0,
		Message:    "Failed to connect",
		Err:        ioErr,
	}

	// API error type is already known
	fmt.Println("API error occurred")

	// Output: API error occurred
}

// Example_validationError shows input validation errors.
func Example_validationError() {
	// Validate input
	symbol := ""
	if symbol == "" {
		err := &errors.ValidationError{
			Field:   "symbol",
			Value:   symbol,
			Message: "symbol cannot be empty",
		}
		fmt.Println(err.Error())
	}

	// Output: validation failed for field symbol: symbol cannot be empty
}

// Example_errorChaining shows chained error handling.
func Example_errorChaining() {
	// Create a chain of errors
	baseErr := &errors.NotFoundError{
		Resource: "file",
		ID:       "SPY.csv",
	}

	parseErr := &errors.ParseError{
		Format:  "csv",
		File:    "SPY.csv",
		Message: "Failed to parse cache file",
		Err:     baseErr,
	}

	// Check through the chain using standard library
	if parseErr.Err != nil {
		if _, ok := parseErr.Err.(*errors.NotFoundError); ok {
			fmt.Println("File not found in parse chain")
		}
	}

	// Output: File not found in parse chain
}

// Example_hTTPStatusMapping maps HTTP codes to error types.
func Example_hTTPStatusMapping() {
	// Map HTTP status to appropriate error
	mapHTTPError := func(status int, provider string) error {
		switch status {
		case http.StatusNotFound:
			return &errors.NotFoundError{
				Resource: "endpoint",
				ID:       provider,
			}
		case http.StatusUnauthorized:
			return &errors.AuthenticationError{
				Provider: provider,
				Message:  "Invalid credentials",
			}
		case http.StatusTooManyRequests:
			return &errors.APIError{
				Provider:   provider,
				StatusCode: 429,
				Message:    "Rate limit exceeded",
			}
		default:
			return &errors.APIError{
				Provider:   provider,
				StatusCode: status,
				Message:    http.StatusText(status),
			}
		}
	}

	err := mapHTTPError(401, "marketstack")
	if _, ok := err.(*errors.AuthenticationError); ok {
		fmt.Println("Authentication required")
	}

	// Output: Authentication required
}
