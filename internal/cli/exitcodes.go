package cli

import (
	"errors"
	"io/fs"
	"os"

	"github.com/yaklabco/assetpack/internal/configloader"
	"github.com/yaklabco/assetpack/pkg/collect"
	"github.com/yaklabco/assetpack/pkg/emit"
	"github.com/yaklabco/assetpack/pkg/fsutil"
	"github.com/yaklabco/assetpack/pkg/generator"
)

// Exit codes for assetpack.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailure indicates a generation failure that is neither a
	// configuration nor an I/O problem, such as a duplicate asset path.
	ExitFailure = 1

	// ExitStale indicates verify found the generated file out of date.
	ExitStale = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates invalid configuration or identifiers.
	ExitConfigError = 65

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrStale is returned by verify when the generated file must be regenerated.
var ErrStale = errors.New("generated file is out of date")

// errInvalidUsage marks command-line misuse that is not a config file problem.
var errInvalidUsage = errors.New("invalid usage")

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrStale) {
		return ExitStale
	}

	if errors.Is(err, errInvalidUsage) {
		return ExitInvalidUsage
	}

	if errors.Is(err, configloader.ErrInvalidConfig) || errors.Is(err, emit.ErrInvalidIdentifier) {
		return ExitConfigError
	}

	if isIOError(err) {
		return ExitIOError
	}

	return ExitFailure
}

func isIOError(err error) bool {
	for _, target := range []error{
		fsutil.ErrNotFound,
		fsutil.ErrPermissionDenied,
		fsutil.ErrIsDirectory,
		fsutil.ErrNotRegular,
		collect.ErrRootNotDirectory,
		os.ErrNotExist,
		os.ErrPermission,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return true
	}

	var genErr *generator.GenerationError
	return errors.As(err, &genErr) && genErr.Stage == generator.StageWrite &&
		!errors.Is(err, generator.ErrNoOutput)
}
