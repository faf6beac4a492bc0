package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/assetpack/pkg/generator"
)

func newGenerateCommand() *cobra.Command {
	flags := &bundleFlags{}

	cmd := &cobra.Command{
		Use:   "generate [root]",
		Short: "Bundle assets into a generated Go file",
		Long:  generateLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, flags)
		},
	}

	addBundleFlags(cmd, flags, flagSet{format: true, dryRun: true, summary: true})

	return cmd
}

const generateLongDescription = `Bundle every asset under root into a single generated Go file.

Files are matched by suffix (.js, .html and .css by default), packed back to
back in path order and written as a byte buffer plus a path index. The
output is written atomically and only when its content changes.

When root is given without --out and no output is configured, the file is
written to <root>/<root name>.go.

Examples:
  assetpack generate                          # Use .assetpack.yml or defaults
  assetpack generate web -o web/web.go        # Explicit root and output
  assetpack generate --encoding zstd          # Compress large asset sets
  assetpack generate --ext .js --ext .svg     # Bundle other suffixes
  assetpack generate --dry-run --format json  # Report without writing`

func runGenerate(cmd *cobra.Command, args []string, flags *bundleFlags) error {
	sess, err := loadSession(cmd, args, flags)
	if err != nil {
		return err
	}

	rep, err := sess.reporter(cmd, flags.summary)
	if err != nil {
		return err
	}

	result, err := generator.New().Run(sess.ctx, generator.OptionsFromConfig(sess.cfg))
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if err := rep.Generate(sess.ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	return nil
}
