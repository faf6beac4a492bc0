package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/assetpack/internal/logging"
	"github.com/yaklabco/assetpack/internal/watch"
	"github.com/yaklabco/assetpack/pkg/generator"
)

func newWatchCommand() *cobra.Command {
	flags := &bundleFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [root]",
		Short: "Regenerate the bundle whenever assets change",
		Long: `Generate the bundle, then watch the asset tree and regenerate it after
every burst of changes. Each rebuild is a full rebuild. Build failures are
logged and the previous output is kept. Stop with Ctrl-C.

Examples:
  assetpack watch
  assetpack watch web --debounce 500ms`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, flags, debounce)
		},
	}

	addBundleFlags(cmd, flags, flagSet{})
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a rebuild")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, flags *bundleFlags, debounce time.Duration) error {
	sess, err := loadSession(cmd, args, flags)
	if err != nil {
		return err
	}

	rep, err := sess.reporter(cmd, false)
	if err != nil {
		return err
	}

	logger := logging.Default()
	opts := generator.OptionsFromConfig(sess.cfg)

	watcher, err := watch.New(generator.New(), watch.Options{
		Generate: opts,
		Debounce: debounce,
		OnBuild: func(result *generator.Result, err error) {
			if err != nil {
				logger.Error("rebuild failed", logging.FieldError, err)
				return
			}
			if err := rep.Generate(sess.ctx, result); err != nil {
				logger.Warn("report failed", logging.FieldError, err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	logger.Info("watching for changes", logging.FieldRoot, opts.Root, logging.FieldOutput, opts.Output)

	if err := watcher.Run(sess.ctx); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}
