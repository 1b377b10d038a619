package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/release-packager/internal/archive"
	"github.com/oshokin/release-packager/internal/config"
	"github.com/oshokin/release-packager/internal/logger"
	"github.com/oshokin/release-packager/internal/toolchain"
)

// Options contains inputs for the release-packager entry point.
// Non-empty fields override values read from the configuration file.
type Options struct {
	// ConfigPath is an optional path to a settings YAML file.
	ConfigPath string
	// CrateName is the crate identifier used in the archive filename.
	CrateName string
	// VersionTag is the release tag used in the archive filename.
	VersionTag string
	// TargetTriple selects the cross-compilation target.
	TargetTriple string
	// BuildPackage is the package selector passed to the toolchain.
	BuildPackage string
	// BinaryName overrides the produced binary's base name.
	BinaryName string
	// Resources overrides the auxiliary paths copied into the archive.
	Resources []string
	// OutputDir overrides the directory receiving the archive.
	OutputDir string
	// CargoBin overrides the toolchain executable.
	CargoBin string
	// Timeout overrides the overall run deadline.
	Timeout time.Duration
}

// errPackagerRunning indicates that another packaging run currently owns the
// working directory.
var errPackagerRunning = errors.New("another packaging run is in progress")

// Run executes the packaging workflow from CLI options.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "release-packager")

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	if IsPackagerRunningNow(ctx) {
		return errPackagerRunning
	}

	if err = createRunMarker(); err != nil {
		return fmt.Errorf("create run marker: %w", err)
	}

	defer removeRunMarker(ctx)

	archivePath, err := Package(ctx, cfg)
	if err != nil {
		return fmt.Errorf("packaging failed: %w", err)
	}

	logger.InfoKV(ctx, "Packaging completed successfully", "archive", archivePath)

	return nil
}

// Package produces one release archive from the provided configuration and
// returns its path. All intermediate state lives in a staging directory that
// is removed on every exit path.
func Package(ctx context.Context, cfg *config.Config) (string, error) {
	if err := config.Validate(cfg); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	staging, err := os.MkdirTemp("", "release-packager-*")
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	// The staging directory never survives the run, whichever way it ends.
	defer func() {
		_ = os.RemoveAll(staging)
	}()

	logger.DebugKV(ctx, "Created staging directory", "path", staging)

	cargo := toolchain.New(cfg.CargoBin, "")

	if err = cargo.EnsureLockFile(ctx); err != nil {
		return "", err
	}

	if err = cargo.BuildRelease(ctx, cfg.BuildPackage, cfg.TargetTriple); err != nil {
		return "", err
	}

	if err = stageBinary(ctx, cfg, staging); err != nil {
		return "", err
	}

	if err = stageResources(ctx, cfg, staging); err != nil {
		return "", err
	}

	archivePath := filepath.Join(cfg.OutputDir, ArchiveName(cfg))

	logger.InfoKV(ctx, "Writing archive", "path", archivePath)

	if err = archive.Create(archivePath, staging); err != nil {
		return "", err
	}

	if err = writeChecksumFile(ctx, archivePath); err != nil {
		return "", err
	}

	return archivePath, nil
}

// resolveConfig merges the optional configuration file with CLI overrides and
// validates the result before any side effect happens.
func resolveConfig(opts *Options) (*config.Config, error) {
	cfg := new(config.Config)

	if opts.ConfigPath != "" {
		switch _, err := os.Stat(opts.ConfigPath); {
		case err == nil:
			loaded, readErr := config.Read(opts.ConfigPath)
			if readErr != nil {
				return nil, readErr
			}

			cfg = loaded
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("stat settings: %w", err)
		}
	}

	if opts.CrateName != "" {
		cfg.CrateName = opts.CrateName
	}

	if opts.VersionTag != "" {
		cfg.VersionTag = opts.VersionTag
	}

	if opts.TargetTriple != "" {
		cfg.TargetTriple = opts.TargetTriple
	}

	if opts.BuildPackage != "" {
		cfg.BuildPackage = opts.BuildPackage
	}

	if opts.BinaryName != "" {
		cfg.BinaryName = opts.BinaryName
	}

	if len(opts.Resources) > 0 {
		cfg.Resources = append([]string(nil), opts.Resources...)
	}

	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}

	if opts.CargoBin != "" {
		cfg.CargoBin = opts.CargoBin
	}

	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
