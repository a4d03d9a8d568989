package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/pkg/assetpack"
)

var minifyKind string

var minifyCmd = &cobra.Command{
	Use:   "minify <file|->",
	Short: "Print the compacted form of a single file",
	Long: `Compacts one JavaScript or CSS file and writes the result to stdout.
Nothing is published and the ledger is not touched. Use "-" to read stdin,
in which case --kind is required.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := minifyKindFor(args[0], minifyKind)
		if err != nil {
			return err
		}

		var src []byte
		if args[0] == "-" {
			src, err = io.ReadAll(cmd.InOrStdin())
		} else {
			src, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		out, err := assetpack.Minify(kind, src)
		if err != nil {
			return err
		}
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}
		detail("%d → %d bytes%s", len(src), len(out), savings(len(src), len(out)))
		return nil
	},
}

// minifyKindFor picks the kind from the flag, else from the extension.
func minifyKindFor(path, flag string) (asset.Kind, error) {
	if flag != "" {
		return asset.ParseKind(flag)
	}
	if kind, ok := asset.KindFromPath(path); ok {
		return kind, nil
	}
	return "", fmt.Errorf("cannot infer kind of %q — pass --kind js or --kind css", path)
}

func init() {
	minifyCmd.Flags().StringVar(&minifyKind, "kind", "", "input kind (js or css); inferred from the extension when omitted")
	rootCmd.AddCommand(minifyCmd)
}
