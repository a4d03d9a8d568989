package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	configPath string
	ledgerPath string
	baseDir    string
	verbose    bool
	quiet      bool
	logJSON    bool
	noMirror   bool
)

var rootCmd = &cobra.Command{
	Use:   "assetpack",
	Short: "Compact and publish versioned JavaScript and CSS bundles",
	Long: `assetpack concatenates the JavaScript and CSS sources of a site into
compacted bundles, publishes each under a timestamped filename, records the
current version of every bundle in a KEY=VALUE ledger that templates read,
and deletes the artifact of the previous version.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("assetpack %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: discover assetpack.yaml)")
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "path to the version ledger (overrides config)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base", "", "asset tree root holding js/, css/, livejs/, livecss/ (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit structured JSON logs on stderr")
	rootCmd.PersistentFlags().BoolVar(&noMirror, "no-mirror", false, "skip the configured remote mirror")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
