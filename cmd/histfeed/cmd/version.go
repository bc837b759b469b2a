package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/histfeed/histfeed/internal/cmd/output"
)

// versionInfo is the version command payload.
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Built     string `json:"built" yaml:"built"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show version information for the histfeed CLI.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return output.FormatAny(versionInfo{
			Version:   Version,
			Commit:    Commit,
			Built:     Date,
			BuiltBy:   BuiltBy,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}, globalFlags)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
