package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/assetpack/pkg/generator"
)

func newListCommand() *cobra.Command {
	flags := &bundleFlags{}

	cmd := &cobra.Command{
		Use:   "list [root]",
		Short: "Show the assets that would be bundled",
		Long: `List every asset that generate would bundle, with its size, byte range in
the packed buffer and detected language. Nothing is written.

Examples:
  assetpack list
  assetpack list static --ext .svg
  assetpack list --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, flags)
		},
	}

	addBundleFlags(cmd, flags, flagSet{format: true})

	return cmd
}

func runList(cmd *cobra.Command, args []string, flags *bundleFlags) error {
	flags.dryRun = true

	sess, err := loadSession(cmd, args, flags)
	if err != nil {
		return err
	}

	rep, err := sess.reporter(cmd, false)
	if err != nil {
		return err
	}

	result, err := generator.New().Run(sess.ctx, generator.OptionsFromConfig(sess.cfg))
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	if err := rep.List(sess.ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}
	return nil
}
