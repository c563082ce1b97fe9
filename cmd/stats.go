package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/arin/halp/internal/stats"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request counts, latency and failure breakdown",
	Long: `Display a summary of your halp requests: counts, success rate,
average response time, providers and models used, and why requests failed.

Data is collected automatically and stored locally next to the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := stats.Summarize()
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}

		out := cmd.OutOrStdout()
		cyan := color.New(color.FgCyan, color.Bold)
		green := color.New(color.FgGreen)
		yellow := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)

		cyan.Fprintf(out, "halp stats\n\n")

		if summary.TotalRequests == 0 {
			dim.Fprintln(out, "No data yet.")
			return nil
		}

		green.Fprintf(out, "Requests:  ")
		fmt.Fprintf(out, "%d total", summary.TotalRequests)
		dim.Fprintf(out, "  (%d today, %d this week)\n", summary.TodayCount, summary.ThisWeekCount)

		green.Fprintf(out, "Success:   ")
		if summary.SuccessRate >= 90 {
			fmt.Fprintf(out, "%.0f%%\n", summary.SuccessRate)
		} else {
			yellow.Fprintf(out, "%.0f%%\n", summary.SuccessRate)
		}

		green.Fprintf(out, "Latency:   ")
		fmt.Fprintf(out, "%dms avg\n", summary.AvgLatencyMs)

		printBreakdown(out, "Providers", summary.ProviderBreakdown)
		printBreakdown(out, "Failures", summary.ErrorBreakdown)

		if len(summary.TopModels) > 0 {
			green.Fprintln(out, "\nModels:")
			for _, m := range summary.TopModels {
				fmt.Fprintf(out, "  %-28s %d\n", m.Model, m.Count)
			}
		}
		return nil
	},
}

func printBreakdown(out io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	color.New(color.FgGreen).Fprintf(out, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-28s %d\n", k, counts[k])
	}
}
