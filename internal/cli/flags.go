package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/assetpack/internal/configloader"
	"github.com/yaklabco/assetpack/internal/logging"
	"github.com/yaklabco/assetpack/pkg/config"
	"github.com/yaklabco/assetpack/pkg/reporter"
)

// bundleFlags holds the flags shared by commands that build a bundle.
// Only flags the user explicitly set override configuration files.
type bundleFlags struct {
	output     string
	pkg        string
	funcName   string
	encoding   string
	format     string
	extensions []string
	ignore     []string
	dryRun     bool
	summary    bool
}

// flagSet selects which optional flags a command registers.
type flagSet struct {
	format  bool
	dryRun  bool
	summary bool
}

func addBundleFlags(cmd *cobra.Command, flags *bundleFlags, set flagSet) {
	cmd.Flags().StringVarP(&flags.output, "out", "o", "", "path of the generated Go file (default: web/web.go)")
	cmd.Flags().StringVar(&flags.pkg, "package", "", "package name of the generated file (default: output directory name)")
	cmd.Flags().StringVar(&flags.funcName, "func", "", "name of the generated lookup function (default: GetContent)")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "buffer encoding: quoted, base64, zstd (default: quoted)")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "file suffix to bundle; repeatable (default: .js,.html,.css)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "root-relative glob patterns to skip")

	if set.format {
		cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	}
	if set.dryRun {
		cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "generate in memory without writing the output file")
	}
	if set.summary {
		cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a statistics block after the result")
	}
}

// cliConfig converts explicitly set flags and the optional root argument
// into the highest-precedence configuration layer.
func (f *bundleFlags) cliConfig(cmd *cobra.Command, args []string) *config.Config {
	cfg := &config.Config{}
	changed := cmd.Flags().Changed

	if len(args) > 0 {
		cfg.Root = args[0]
	}
	if changed("out") {
		cfg.Output = f.output
	}
	if changed("package") {
		cfg.Package = f.pkg
	}
	if changed("func") {
		cfg.FuncName = f.funcName
	}
	if changed("encoding") {
		cfg.Encoding = config.Encoding(f.encoding)
	}
	if changed("ext") {
		cfg.Extensions = f.extensions
	}
	if changed("ignore") {
		cfg.Ignore = f.ignore
	}
	if changed("format") {
		cfg.Format = config.OutputFormat(f.format)
	}
	cfg.DryRun = f.dryRun

	return cfg
}

// session is the resolved state a bundle command runs with.
type session struct {
	ctx     context.Context
	cfg     *config.Config
	workDir string
}

// loadSession resolves configuration for a bundle command.
func loadSession(cmd *cobra.Command, args []string, flags *bundleFlags) (*session, error) {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    flags.cliConfig(cmd, args),
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}

	cfg := loadResult.Config
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	// A root given on the command line without an output location writes
	// the generated file into that root, named after it.
	if len(args) > 0 && !cmd.Flags().Changed("out") && cfg.Output == config.DefaultOutput {
		if abs, err := filepath.Abs(cfg.Root); err == nil {
			cfg.Output = filepath.Join(cfg.Root, filepath.Base(abs)+".go")
		}
	}

	logger.Debug("configuration loaded",
		logging.FieldRoot, cfg.Root,
		logging.FieldOutput, cfg.Output,
		logging.FieldPackage, cfg.PackageName(),
		logging.FieldEncoding, cfg.Encoding,
		logging.FieldExtensions, cfg.Extensions,
		logging.FieldDryRun, cfg.DryRun,
	)
	if resolved, err := cfg.ToYAML(); err == nil {
		logger.Debug("resolved configuration\n" + string(resolved))
	}

	return &session{ctx: ctx, cfg: cfg, workDir: workDir}, nil
}

// reporter creates the result renderer for the session's configured format.
func (s *session) reporter(cmd *cobra.Command, showSummary bool) (reporter.Reporter, error) {
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	format, err := reporter.ParseFormat(string(s.cfg.Format))
	if err != nil {
		return nil, fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       colorMode,
		ShowSummary: showSummary,
		WorkingDir:  s.workDir,
	})
	if err != nil {
		return nil, fmt.Errorf("create reporter: %w", err)
	}
	return rep, nil
}
