package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bianoble/assetpack/internal/watch"
	"github.com/bianoble/assetpack/pkg/assetpack"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Publish all bundles, then republish on every input change",
	Long: `Runs a full build, then watches the input directory of every configured
kind and republishes the bundles of a kind whenever its files change. Bursts
of changes are coalesced. Stops on interrupt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		client, err := newClient(ctx, logger)
		if err != nil {
			return err
		}

		build, err := client.Publish(ctx)
		if err != nil {
			return err
		}
		reportBuild(build)

		info("")
		info("Watching %s (Ctrl-C to stop)", strings.Join(client.InputDirs(), ", "))
		return client.Watch(ctx, watchDebounce, func(b *assetpack.BuildResult) {
			info("")
			info("Change detected at %s", time.Now().Format(time.TimeOnly))
			reportBuild(b)
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before rebuilding")
	rootCmd.AddCommand(watchCmd)
}
