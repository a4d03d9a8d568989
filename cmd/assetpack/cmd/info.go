package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bianoble/assetpack/internal/asset"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the resolved configuration",
	Long: `Displays the assetpack version, the asset tree root, the ledger path, the
remote mirror and every configured bundle with its input and output paths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		client, err := newClient(cmd.Context(), logger)
		if err != nil {
			return err
		}
		cfg := client.Config()

		fmt.Printf("assetpack %s\n", version)
		fmt.Printf("  base:    %s\n", client.BaseDir())
		fmt.Printf("  ledger:  %s\n", client.LedgerPath())
		switch {
		case cfg.Mirror == nil:
			fmt.Printf("  mirror:  none\n")
		case !client.Mirrored():
			fmt.Printf("  mirror:  s3://%s (disabled)\n", strings.TrimSuffix(cfg.Mirror.Bucket+"/"+cfg.Mirror.Prefix, "/"))
		default:
			fmt.Printf("  mirror:  s3://%s\n", strings.TrimSuffix(cfg.Mirror.Bucket+"/"+cfg.Mirror.Prefix, "/"))
		}

		if len(cfg.Bundles) == 0 {
			fmt.Println("  bundles: none configured")
			return nil
		}
		fmt.Println("  bundles:")
		for _, b := range cfg.Bundles {
			kind, err := asset.ParseKind(b.Kind)
			if err != nil {
				continue
			}
			artifact := asset.ArtifactName(b.Name, kind, 0, false)
			if b.AppendVersion() {
				artifact = asset.ArtifactNameForValue(b.Name, kind, "<stamp>")
			}
			fmt.Printf("    %-20s %s/ -> %s/%s\n", b.ID(), kind.InputDir(), kind.OutputDir(), artifact)
			detail("    inputs: %s", bundleInputs(b.Files, b.Include))
			if len(b.Compress) > 0 {
				detail("    sidecars: %s", strings.Join(b.Compress, ", "))
			}
		}
		return nil
	},
}

// bundleInputs describes how a bundle selects its inputs.
func bundleInputs(files, include []string) string {
	switch {
	case len(files) > 0:
		return strings.Join(files, ", ")
	case len(include) > 0:
		return "matching " + strings.Join(include, ", ")
	default:
		return "all files of the kind"
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
