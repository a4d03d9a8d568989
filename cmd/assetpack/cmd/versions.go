package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the ledger entries and the artifacts they point at",
	Long: `Shows every KEY=VALUE entry of the version ledger, the artifact filename
it resolves to, its size, and whether that artifact exists. A missing
artifact means templates referencing the entry would serve a 404.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		client, err := newClient(cmd.Context(), logger)
		if err != nil {
			return err
		}

		versions, err := client.Versions()
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			info("No versions recorded.")
			return nil
		}

		fmt.Printf("%-20s %-12s %-32s %-10s %s\n", "KEY", "VERSION", "ARTIFACT", "SIZE", "STATE")
		missing := 0
		for _, v := range versions {
			state, size := "missing", "-"
			switch {
			case v.Artifact == "":
				state = "unknown"
			case v.Exists:
				state = "ok"
				size = humanSize(v.Size)
			default:
				missing++
			}
			artifact := v.Artifact
			if artifact == "" {
				artifact = "-"
			}
			fmt.Printf("%-20s %-12s %-32s %-10s %s\n", v.Key, v.Value, artifact, size, state)
		}

		if missing > 0 {
			errorf("%d ledger entr(ies) point at missing artifacts", missing)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}
