package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/arin/halp/internal/config"
	"github.com/arin/halp/internal/logger"
	"github.com/spf13/cobra"
)

var (
	quiet       bool
	explainOnly bool
	copyResult  bool
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:   "halp [what you want to do]",
	Short: "Get shell commands from natural language",
	Long: `halp asks an LLM for the shell command that does what you describe.
The command is printed on stdout; the model's reply streams on stderr.

Examples:
  halp find all .log files larger than 100mb
  halp -q show disk usage | pbcopy
  halp -e "what does tar -xzvf do"

Note: quote the request if it contains shell characters or words
      starting with a dash: halp "grep -r for TODO"`,
	Args:              cobra.MinimumNArgs(1),
	RunE:              run,
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
	SilenceErrors:     true,
	TraverseChildren:  true,
}

func init() {
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print the command only, without streaming the reply")
	rootCmd.Flags().BoolVarP(&explainOnly, "explain", "e", false, "Print the explanation only")
	rootCmd.Flags().BoolVarP(&copyResult, "copy", "c", false, "Copy the command to the clipboard")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log requests and stream progress to stderr")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

// setupLogging installs the default slog logger before any command runs.
func setupLogging(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(logger.New(
		logger.WithDebug(debug || config.DebugFromEnv()),
		logger.WithPretty(true),
		logger.WithWriter(cmd.ErrOrStderr()),
	))
	return nil
}

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the entry point called from main. Ctrl-C cancels the
// in-flight request.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
