// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cachesim",
	Short: "Cachesim simulates a processor reading through an LRU cache.",
	Long: `Cachesim simulates a processor that loads its registers through ` +
		`a bounded LRU cache in front of a main memory, and reports the ` +
		`hit and miss statistics of the cache.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
