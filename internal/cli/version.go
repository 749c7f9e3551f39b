package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the stagehand version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("stagehand %s\n", version)
	},
}
