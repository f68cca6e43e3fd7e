package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/tracing"
)

var logCmd = &cobra.Command{
	Use:   "log <file>",
	Short: "Print the accesses recorded by a run.",
	Long: "Print the accesses that a run started with --record wrote into " +
		"a SQLite file, in the order they happened.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := tracing.AccessFilter{}
		filter.RunID, _ = cmd.Flags().GetString("run")
		filter.Component, _ = cmd.Flags().GetString("component")
		filter.Kind, _ = cmd.Flags().GetString("kind")
		filter.Key, _ = cmd.Flags().GetString("key")
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		filter.Offset, _ = cmd.Flags().GetInt("offset")

		return printAccessLog(cmd.Context(), args[0], filter, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(logCmd)

	f := logCmd.Flags()
	f.String("run", "", "Only show the accesses of this run")
	f.String("component", "", "Only show the accesses of this component")
	f.String("kind", "", "hit, miss, evict, store, read, or synthesize")
	f.String("key", "", "Only show the accesses to this key")
	f.Int("limit", 50, "Largest number of accesses to show, 0 shows all")
	f.Int("offset", 0, "Number of matching accesses to skip")
}

func printAccessLog(
	ctx context.Context,
	path string,
	filter tracing.AccessFilter,
	out io.Writer,
) error {
	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	records, total, err := tracing.QueryAccesses(ctx, reader, filter)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-6s %-10s %-10s %-8s %-8s %s\n",
		"SEQ", "COMPONENT", "KIND", "KEY", "VALUE", "CAUSE")

	for _, r := range records {
		fmt.Fprintf(out, "%-6d %-10s %-10s %-8s %-8d %s\n",
			r.Seq, r.Component, r.Kind, r.EntryKey, r.Value, r.Cause)
	}

	fmt.Fprintf(out, "\nShowing %d of %d accesses.\n", len(records), total)

	return nil
}
