package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/vvka-141/cnxpopulate/internal/tui"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersionInfo()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersionInfo writes the version line to stdout and the banner to stderr.
func printVersionInfo() {
	writeVersionInfo(os.Stdout, os.Stderr)
}

func writeVersionInfo(stdout, stderr io.Writer) {
	fmt.Fprintln(stderr, tui.TitleStyle.Render("cnx-populate"))
	fmt.Fprintf(stdout, "cnx-populate %s (%s, %s) %s/%s\n", version, commit, date, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(stderr, "Connexions collection archiver")
}
