// Package constants provides shared constants used throughout the histfeed codebase.
// This includes timeouts, limits, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to provider APIs
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ProviderFetchTimeout is the timeout for fetching one symbol from a single provider
	ProviderFetchTimeout = 2 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like API keys (rw-------)
	SecureFilePermissions = 0600
)

// Rate limiting constants
const (
	// RateLimitWindow is the sliding window over which per-provider request
	// budgets are enforced
	RateLimitWindow = time.Minute

	// AlphavantageMaxReqPerMin is the free-tier request budget for Alpha Vantage
	AlphavantageMaxReqPerMin = 5

	// EODHistoricalDataMaxReqPerMin is the request budget for EOD Historical Data
	EODHistoricalDataMaxReqPerMin = 60

	// MarketstackMaxReqPerMin is the request budget for marketstack
	MarketstackMaxReqPerMin = 60
)

// Default values
const (
	// DefaultProviderID is the default price source when none is specified
	DefaultProviderID = "yahoo"

	// DefaultCalendarID is the default business calendar when none is specified
	DefaultCalendarID = "NYSE"

	// DefaultStartDate is the default start of the requested history
	DefaultStartDate = "2012-01-01"

	// DefaultFileFormat is the default on-disk cache format
	DefaultFileFormat = "csv"

	// DefaultOutputFormat is the default shape returned by Get
	DefaultOutputFormat = "frame"
)

// Path constants
const (
	// DefaultCacheDir is the default directory for cached price files
	DefaultCacheDir = "outDir"

	// DefaultConfigPath is the default path for configuration files
	DefaultConfigPath = "~/.histfeed.yaml"
)

// Format constants
const (
	// DateFormat is the calendar-date layout used in requests, cache files
	// and reports
	DateFormat = "2006-01-02"

	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)

// Environment variable names for provider credentials
const (
	// EnvAlphavantageKey holds the Alpha Vantage API key
	EnvAlphavantageKey = "ALPHAVANTAGE_API_KEY"

	// EnvEODHistoricalDataKey holds the EOD Historical Data API token
	EnvEODHistoricalDataKey = "EODHISTORICALDATA_API_KEY"

	// EnvMarketstackKey holds the marketstack access key
	EnvMarketstackKey = "MARKETSTACK_API_KEY"
)
