package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "mindcare %s\n", Version)
		fmt.Fprintf(out, "  commit:     %s\n", Commit)
		fmt.Fprintf(out, "  built:      %s\n", BuildDate)
		fmt.Fprintf(out, "  go version: %s\n", runtime.Version())
		fmt.Fprintf(out, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
