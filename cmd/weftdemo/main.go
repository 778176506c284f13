// Command weftdemo boots a small weft runtime from a YAML config file and
// exercises run/dry-run/graph against it, standing in for the "builder
// sugar" the core module itself stays free of.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "weftdemo",
	Short:         "Boot and exercise a weft runtime from a config file",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults built in if omitted)")
	rootCmd.AddCommand(runCmd, dryRunCmd, graphCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
