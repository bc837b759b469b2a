package cmd

import (
	"github.com/spf13/cobra"

	"github.com/histfeed/histfeed/internal/cmd/output"
)

var showAPIKeys bool

// providersCmd represents the providers command.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List available price providers",
	Long: `Providers displays every registered price provider.

For each provider it shows:
  - Provider ID
  - Required API key environment variable
  - Default rate limit
  - Whether the required credential is configured`,
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().BoolVar(&showAPIKeys, "show-keys", false,
		"Show masked previews of configured API keys")
}

func runProviders(_ *cobra.Command, _ []string) error {
	return output.FormatProviders(showAPIKeys, globalFlags)
}
