package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

// ConfigPaths represents discovered configuration file paths.
// Missing files are empty strings.
type ConfigPaths struct {
	// System is the system-wide config, e.g. /etc/assetpack/config.yaml.
	System string

	// User is the user config, e.g. ~/.config/assetpack/config.yaml.
	User string

	// Project is the nearest .assetpack.* file above the working directory.
	Project string

	// Explicit is the path given with --config.
	Explicit string
}

// ProjectConfigFiles are the project config file names, in order of preference.
//
//nolint:gochecknoglobals // Read-only lookup table.
var ProjectConfigFiles = []string{
	".assetpack.yml",
	".assetpack.yaml",
	".assetpack.json",
	".assetpack.jsonc",
}

// globalConfigFiles are the file names looked up in the system and user
// config directories.
//
//nolint:gochecknoglobals // Read-only lookup table.
var globalConfigFiles = []string{"config.yaml", "config.yml", "config.json", "config.jsonc"}

// Markers of a project boundary. The upward search for a project config
// checks the boundary directory itself and then stops. A Go module root is
// a boundary because the generated file belongs to exactly one module.
//
//nolint:gochecknoglobals // Read-only lookup tables.
var (
	boundaryDirs  = []string{".git", ".hg", ".svn"}
	boundaryFiles = []string{"go.mod", "go.work"}
)

// DiscoverPaths finds the system, user and project configuration files.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discover config: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstExisting(systemConfigDir(), globalConfigFiles),
		User:    firstExisting(userConfigDir(), globalConfigFiles),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, "assetpack")
	}
	return "/etc/assetpack"
}

// userConfigDir honors XDG_CONFIG_HOME and falls back to ~/.config.
func userConfigDir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "assetpack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "assetpack")
}

// firstExisting returns the first regular file named in names under dir.
func firstExisting(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		if path := filepath.Join(dir, name); isFile(path) {
			return path
		}
	}
	return ""
}

// FindProjectConfig searches startDir and its parents for a project config
// file and returns the first one found, or "" if there is none. The search
// stops at a project boundary (VCS root or Go module root), the home
// directory or the filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		var err error
		if startDir, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("find project config: %w", err)
		}

		if path := firstExisting(dir, ProjectConfigFiles); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if isBoundary(dir) || dir == home || parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isBoundary(dir string) bool {
	return slices.ContainsFunc(boundaryDirs, func(name string) bool {
		info, err := os.Stat(filepath.Join(dir, name))
		return err == nil && info.IsDir()
	}) || slices.ContainsFunc(boundaryFiles, func(name string) bool {
		return isFile(filepath.Join(dir, name))
	})
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsJSONConfig reports whether path names a JSON or JSONC config file.
// Every other config file is read as YAML.
func IsJSONConfig(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".jsonc":
		return true
	default:
		return false
	}
}
