//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const binary = "bin/assetpack"

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"l":   Lint.Default,
	"c":   Check,
	"i":   Install,
	"s":   Smoke,
	"fmt": Lint.Fmt,
	"bp":  Bench.Pack,
}

// Namespace types group related targets.
type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

// Build compiles the assetpack binary with version info.
// Skips recompilation when source files have not changed.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary + " is up to date")
		return nil
	}
	fmt.Println("Building assetpack...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/assetpack")
}

// Check runs format, lint, and test sequentially.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	if err := sh.Rm("bin"); err != nil {
		return err
	}
	return sh.Rm("coverage.out")
}

// Install installs assetpack to $GOBIN or $GOPATH/bin.
func Install() error {
	fmt.Println("Installing assetpack...")
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/assetpack")
}

// Deps ensures all dependencies are downloaded.
func Deps() error {
	fmt.Println("Downloading dependencies...")
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "mod", "tidy")
}

// Smoke builds the binary and bundles a scratch asset tree with every
// encoding, checking that generate followed by verify succeeds and that
// the generated package compiles.
func Smoke() error {
	st.Deps(Build)

	dir, err := os.MkdirTemp("", "assetpack-smoke-")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files := map[string]string{
		"go.mod":              "module example.com/smoke\n\ngo 1.25\n",
		"web/index.html":      "<!doctype html><script src=\"/js/app.js\"></script>\n",
		"web/js/app.js":       "console.log(`ready`);\r\n",
		"web/css/site.css":    "body { margin: 0 }\n",
		"web/img/ignored.png": "\x89PNG\r\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}

	bin, err := filepath.Abs(binary)
	if err != nil {
		return err
	}

	// The zstd encoding needs klauspost/compress in the scratch module, which
	// would require network access, so it is only generated and verified.
	for _, enc := range []string{"quoted", "base64", "zstd"} {
		fmt.Printf("  encoding %s...\n", enc)
		args := []string{"--encoding", enc, "-o", "web/web.go", "web"}
		if err := runIn(dir, bin, append([]string{"generate"}, args...)...); err != nil {
			return fmt.Errorf("generate %s: %w", enc, err)
		}
		if err := runIn(dir, bin, append([]string{"verify"}, args...)...); err != nil {
			return fmt.Errorf("verify %s: %w", enc, err)
		}
		if enc != "zstd" {
			if err := runIn(dir, "go", "vet", "./web"); err != nil {
				return fmt.Errorf("vet %s output: %w", enc, err)
			}
		}
	}

	fmt.Println("✓ Smoke test passed")
	return nil
}

// Default runs all tests using gotestsum with race detection and coverage.
func (Test) Default() error {
	fmt.Println("Running tests...")
	nCores := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	return sh.RunV("go",
		"tool", "gotestsum",
		"-f", "pkgname-and-test-fails",
		"--",
		"-race",
		"-p", nCores,
		"-parallel", nCores,
		"./...",
		"-coverprofile=coverage.out",
		"-covermode=atomic",
	)
}

// Fuzz runs the fuzz targets for a short, fixed time each.
func (Test) Fuzz() error {
	fmt.Println("Fuzzing atomic writes...")
	return sh.RunV("go", "test", "-run=^$", "-fuzz=FuzzWriteAtomicReadFile", "-fuzztime=30s", "./pkg/fsutil")
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	fmt.Println("Running linters...")
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without auto-fix.
func (Lint) CI() error {
	fmt.Println("Running linters (CI mode)...")
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	fmt.Println("Formatting code...")
	return sh.RunV("gofmt", "-w", ".")
}

// Vet runs go vet.
func (Lint) Vet() error {
	fmt.Println("Running go vet...")
	return sh.RunV("go", "vet", "./...")
}

// Gate runs all CI checks.
func (CI) Gate() error {
	fmt.Println("Running CI gate checks...")
	st.SerialDeps(
		Lint.Vet,
		Lint.CI,
		Build,
		Test.Default,
		Smoke,
		CI.ModTidy,
	)
	fmt.Println("\n✓ All CI gate checks passed!")
	return nil
}

// ModTidy checks that go.mod and go.sum are tidy.
func (CI) ModTidy() error {
	fmt.Println("Checking go.mod/go.sum are tidy...")
	before, err := readModFiles()
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := readModFiles()
	if err != nil {
		return err
	}
	if before != after {
		return errors.New("go.mod or go.sum changed after 'go mod tidy' - please commit the changes")
	}
	fmt.Println("✓ go.mod/go.sum are tidy")
	return nil
}

// Default runs all Go benchmarks.
func (Bench) Default() error {
	fmt.Println("Running benchmarks...")
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Pack benchmarks the collect, pack and emit stages only.
func (Bench) Pack() error {
	fmt.Println("Running pipeline benchmarks...")
	return sh.RunV("go",
		"test",
		"-run=^$",
		"-bench=.",
		"-benchmem",
		"./pkg/collect/...",
		"./pkg/pack/...",
		"./pkg/emit/...",
		"./pkg/langdetect/...",
	)
}

// runIn runs a command with dir as its working directory.
func runIn(dir, cmd string, args ...string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := os.Chdir(dir); err != nil {
		return err
	}
	defer func() { _ = os.Chdir(wd) }()
	return sh.RunV(cmd, args...)
}

func readModFiles() (string, error) {
	mod, err := os.ReadFile("go.mod")
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	sum, err := os.ReadFile("go.sum")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read go.sum: %w", err)
	}
	return string(mod) + "\x00" + string(sum), nil
}

// gitOutput runs a git command and returns trimmed stdout, or empty on error.
func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags returns the linker flags for version injection.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		version, commit, date,
	)
}
