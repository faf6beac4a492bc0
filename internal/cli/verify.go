package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/assetpack/pkg/generator"
)

func newVerifyCommand() *cobra.Command {
	flags := &bundleFlags{}

	cmd := &cobra.Command{
		Use:   "verify [root]",
		Short: "Check that the generated file is up to date",
		Long: `Regenerate the bundle in memory and compare it with the existing output.

Exits with status 1 when the output is missing or stale, listing the asset
paths that were added, removed or changed. Suitable for CI.

Examples:
  assetpack verify
  assetpack verify --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, args, flags)
		},
	}

	addBundleFlags(cmd, flags, flagSet{format: true})

	return cmd
}

func runVerify(cmd *cobra.Command, args []string, flags *bundleFlags) error {
	sess, err := loadSession(cmd, args, flags)
	if err != nil {
		return err
	}

	rep, err := sess.reporter(cmd, false)
	if err != nil {
		return err
	}

	result, err := generator.New().Verify(sess.ctx, generator.OptionsFromConfig(sess.cfg))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	if err := rep.Verify(sess.ctx, result); err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if result.Stale() {
		return ErrStale
	}
	return nil
}
