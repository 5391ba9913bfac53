package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gestorjudicial/gestor/internal/backup"
)

var (
	appVersion = "dev"
	buildTime  string
)

// SetVersion records build metadata and enables the --version flag.
func SetVersion(v, bt string) {
	if v != "" {
		appVersion = v
	}
	buildTime = bt
	rootCmd.Version = appVersion
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Gestor Judicial %s (%s, %s/%s)\n", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if buildTime != "" {
			fmt.Fprintf(out, "Build time: %s\n", buildTime)
		}
		fmt.Fprintf(out, "Backup file: %s\n", backup.DefaultFileName)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
