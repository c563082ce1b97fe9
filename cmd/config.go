package cmd

import (
	"fmt"
	"strings"

	"github.com/arin/halp/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage halp configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		baseURL := cfg.APIBaseURL
		if baseURL == "" {
			baseURL = "(provider default)"
		}
		systemPrompt := "(built-in)"
		if cfg.SystemPrompt != "" {
			systemPrompt = "(custom)"
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Provider:      %s\n", cfg.Provider)
		fmt.Fprintf(out, "Model:         %s\n", cfg.Model)
		fmt.Fprintf(out, "API Key:       %s\n", maskKey(cfg.APIKey))
		fmt.Fprintf(out, "API Base URL:  %s\n", baseURL)
		fmt.Fprintf(out, "System Prompt: %s\n", systemPrompt)
		fmt.Fprintf(out, "Timeout:       %s\n", cfg.Timeout)
		fmt.Fprintf(out, "Max Response:  %d bytes\n", cfg.MaxResponseSize)
		fmt.Fprintf(out, "Config File:   %s\n", config.Path())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Path())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file (empty value clears it)",
	Long: fmt.Sprintf(`Set a value in the config file. An empty value removes the key.

Valid keys: %s`, strings.Join(config.ValidKeys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetValue(key, value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
		if key == config.KeyAPIKey {
			value = maskKey(value)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a value from the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.GetValue(args[0])
		if err != nil {
			return err
		}
		if args[0] == config.KeyAPIKey {
			value = maskKey(value)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

// maskKey keeps the first and last four characters of long keys.
func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return strings.Repeat("*", len(key))
	default:
		return key[:4] + "..." + key[len(key)-4:]
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
}
