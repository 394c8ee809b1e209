package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codewarden/warden/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the CLI version",
	Example: "  warden version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Display())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
