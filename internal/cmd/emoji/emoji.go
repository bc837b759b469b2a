// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

const (
	// Success represents positive outcomes.
	// Used for: complete symbol statuses, configured API keys.
	Success = "✓"

	// Error represents failures or missing required configuration.
	// Used for: failed symbol statuses, missing API keys.
	Error = "✗"

	// Warning represents degraded but usable outcomes.
	// Used for: partial symbol statuses with missing business dates.
	Warning = "!"

	// Optional represents configuration that is not required.
	// Used for: providers that need no API key.
	Optional = "-"
)
