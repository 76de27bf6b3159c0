package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/red2n/opentele/servicex"
)

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Args:  cobra.NoArgs,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = servicex.BuildTime()
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "opentele build %s (%s %s/%s)\n",
		servicex.BuildTime(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
