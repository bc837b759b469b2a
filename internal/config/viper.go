// Package config isolates environment and Viper access. Provider API keys
// are resolved here so the rest of the module never reads the environment
// directly.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/histfeed/histfeed/pkg/constants"
	"github.com/histfeed/histfeed/pkg/providers"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	// Check OS env directly first
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// EnvKeyName returns the environment variable that holds the API key for a
// provider, or empty for keyless providers.
func EnvKeyName(id providers.ID) string {
	switch id {
	case providers.IDAlphavantage:
		return constants.EnvAlphavantageKey
	case providers.IDEODHistoricalData:
		return constants.EnvEODHistoricalDataKey
	case providers.IDMarketstack:
		return constants.EnvMarketstackKey
	}
	return ""
}

// APIKey returns the configured API key for a provider, or empty when the
// provider is keyless or nothing is set.
func APIKey(id providers.ID) string {
	name := EnvKeyName(id)
	if name == "" {
		return ""
	}
	return GetString(name)
}

// HasAPIKey reports whether an API key is configured for a provider without
// exposing the value. Used by status listings.
func HasAPIKey(id providers.ID) bool {
	return APIKey(id) != ""
}
