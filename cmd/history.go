package cmd

import (
	"fmt"

	"github.com/arin/halp/internal/history"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previously generated commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if historyClear {
			if err := history.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(out, "History cleared.")
			return nil
		}

		entries, err := history.Load(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "No history yet.")
			return nil
		}

		cyan := color.New(color.FgCyan)
		dim := color.New(color.FgHiBlack)

		for i, e := range entries {
			dim.Fprintf(out, "[%s] ", e.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "%s ", e.Query)
			cyan.Fprintf(out, "→ %s\n", e.Command)
			if e.Explanation != "" {
				dim.Fprintf(out, "  %s\n", e.Explanation)
			}
			if i < len(entries)-1 {
				fmt.Fprintln(out)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of history entries to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the history file")
}
