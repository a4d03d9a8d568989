package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bianoble/assetpack/internal/asset"
	"github.com/bianoble/assetpack/internal/precompress"
	"github.com/bianoble/assetpack/pkg/assetpack"
)

var (
	buildKind          string
	buildName          string
	buildFiles         []string
	buildInclude       []string
	buildNoVersion     bool
	buildCompress      []string
	buildSkipUnchanged bool
	buildStrict        bool
)

var buildCmd = &cobra.Command{
	Use:   "build [bundle...]",
	Short: "Compact and publish bundles",
	Long: `Publishes the named bundles, or every bundle in the config when none are
named. A bundle is selected by name (all kinds) or by name.kind.

With --kind, publishes a single ad-hoc bundle instead:

  assetpack build --base public --kind js --name main --file jquery.js --file app.js

A failed bundle is reported and the remaining bundles still run. The exit
status is 0 unless --strict (or ASSETPACK_STRICT=1) is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer func() { _ = logger.Sync() }()

		client, err := newClient(cmd.Context(), logger)
		if err != nil {
			return err
		}

		var build *assetpack.BuildResult
		if buildKind != "" {
			if len(args) > 0 {
				return fmt.Errorf("bundle names cannot be combined with --kind")
			}
			req, opts, err := adHocRequest()
			if err != nil {
				return err
			}
			res, _ := client.PublishRequest(cmd.Context(), req, opts)
			build = &assetpack.BuildResult{Results: []*assetpack.Result{res}}
		} else {
			build, err = client.Publish(cmd.Context(), args...)
			if err != nil {
				return err
			}
		}

		failed := reportBuild(build)
		if failed > 0 && strictMode(buildStrict) {
			return fmt.Errorf("%d bundle(s) failed", failed)
		}
		return nil
	},
}

// adHocRequest builds a request from the build flags.
func adHocRequest() (assetpack.Request, assetpack.PublishOptions, error) {
	var opts assetpack.PublishOptions

	kind, err := asset.ParseKind(buildKind)
	if err != nil {
		return assetpack.Request{}, opts, err
	}
	files := splitList(buildFiles)
	include := splitList(buildInclude)
	if len(files) > 0 && len(include) > 0 {
		return assetpack.Request{}, opts, fmt.Errorf("--file and --include are mutually exclusive")
	}
	for _, c := range splitList(buildCompress) {
		enc, err := precompress.Parse(c)
		if err != nil {
			return assetpack.Request{}, opts, err
		}
		opts.Compress = append(opts.Compress, enc)
	}
	opts.SkipUnchanged = buildSkipUnchanged

	name := buildName
	if name == "" {
		name = "main"
	}
	return assetpack.Request{
		Kind:          kind,
		Files:         files,
		Include:       include,
		Name:          name,
		AppendVersion: !buildNoVersion,
	}, opts, nil
}

func init() {
	buildCmd.Flags().StringVar(&buildKind, "kind", "", "ad-hoc bundle kind (js or css)")
	buildCmd.Flags().StringVar(&buildName, "name", "", "ad-hoc bundle name (default \"main\")")
	buildCmd.Flags().StringSliceVar(&buildFiles, "file", nil, "ad-hoc input file, in order (repeatable)")
	buildCmd.Flags().StringSliceVar(&buildInclude, "include", nil, "ad-hoc include pattern (repeatable)")
	buildCmd.Flags().BoolVar(&buildNoVersion, "no-version", false, "ad-hoc: publish without the version stamp in the filename")
	buildCmd.Flags().StringSliceVar(&buildCompress, "compress", nil, "ad-hoc: sidecar encodings (gzip, br)")
	buildCmd.Flags().BoolVar(&buildSkipUnchanged, "skip-unchanged", false, "ad-hoc: skip publishing when output is unchanged")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", false, "exit non-zero when any bundle fails")
	rootCmd.AddCommand(buildCmd)
}
