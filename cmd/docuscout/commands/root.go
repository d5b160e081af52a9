// Package commands implements the docuscout CLI commands.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/docuscout/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "docuscout",
	Short: "Bounded, LLM-assisted crawler for documentation sites",
	Long: `docuscout crawls a documentation site starting from a seed URL,
optionally filters pages for relevance to a target topic, and extracts
each retained page into clean Markdown sections using an LLM.

Examples:
  # Crawl a docs site, no filtering, default depth/page bounds
  docuscout crawl --seed-url https://example.com/docs

  # Crawl with relevance filtering against a target topic
  docuscout crawl --seed-url https://example.com/docs \
      --enable-filtering --target-topic "authentication"

  # Bound the crawl and write output elsewhere
  docuscout crawl --seed-url https://example.com/docs \
      --max-depth 3 --max-pages 50 --output-dir ./out`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.docuscout.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().Bool("json-logs", false, "emit logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.ConfigError{Reason: err.Error()}
	})
}

// Execute runs the root command and returns the process exit code: 0 on
// success, 2 when the invocation itself was invalid (bad flags, missing
// API key, failed cross-field validation), 1 for any other runtime
// failure.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 2
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
