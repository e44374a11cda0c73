package cmd

import (
	"github.com/spf13/cobra"
)

// Actual version and commit can be specified in build command via -ldflags.
var (
	version = "unknown"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("%s version: %s (commit %s)\n", appName, version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
