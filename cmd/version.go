package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

// versionCmd prints the adaptlearn build; the TUI logs the same value at start.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the adaptlearn client version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("adaptlearn", version)
	},
}
