package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the inputs of a single packaging run.
type Config struct {
	// CrateName is the crate identifier used in the output archive filename.
	CrateName string `yaml:"crate_name"`
	// VersionTag is the release tag used in the output archive filename.
	VersionTag string `yaml:"version_tag"`
	// TargetTriple selects the cross-compilation target and the binary suffix policy.
	TargetTriple string `yaml:"target_triple"`
	// BuildPackage is the package selector passed to the build toolchain.
	BuildPackage string `yaml:"build_package"`
	// BinaryName is the produced binary's base name. Defaults to BuildPackage.
	BinaryName string `yaml:"binary_name"`
	// Resources lists auxiliary paths copied verbatim into the archive root.
	Resources []string `yaml:"resources"`
	// OutputDir is the directory receiving the finished archive.
	OutputDir string `yaml:"output_dir"`
	// TargetDir is the toolchain's output root holding built binaries.
	TargetDir string `yaml:"target_dir"`
	// CargoBin is the toolchain executable name or path.
	CargoBin string `yaml:"cargo_bin"`
	// Timeout bounds the whole packaging run including the build.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for packaging settings.
	DefaultConfigFilename = "release-packager.yaml"

	// DefaultResourcesDir is the auxiliary path staged when none are configured.
	DefaultResourcesDir = "resources"

	// DefaultTargetDir is the toolchain output root when none is configured.
	DefaultTargetDir = "target"

	// DefaultCargoBin is the toolchain executable when none is configured.
	DefaultCargoBin = "cargo"

	// DefaultTimeout bounds a packaging run when none is configured.
	// Cross-compiling a cold workspace takes a while.
	DefaultTimeout = 15 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errCrateNameRequired is returned when the crate name is missing.
	errCrateNameRequired = errors.New("crate name must be provided")
	// errVersionTagRequired is returned when the version tag is missing.
	errVersionTagRequired = errors.New("version tag must be provided")
	// errTargetTripleRequired is returned when the target triple is missing.
	errTargetTripleRequired = errors.New("target triple must be provided")
	// errBuildPackageRequired is returned when the build package selector is missing.
	errBuildPackageRequired = errors.New("build package must be provided")
)

// Read parses configuration from the provided path without validating it.
// Callers that merge overrides on top validate the final result themselves.
func Read(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults.
// All four core inputs must be present before any side effect happens.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.CrateName) == "" {
		return errCrateNameRequired
	}

	if strings.TrimSpace(cfg.VersionTag) == "" {
		return errVersionTagRequired
	}

	if strings.TrimSpace(cfg.TargetTriple) == "" {
		return errTargetTripleRequired
	}

	if strings.TrimSpace(cfg.BuildPackage) == "" {
		return errBuildPackageRequired
	}

	if cfg.BinaryName == "" {
		cfg.BinaryName = cfg.BuildPackage
	}

	if len(cfg.Resources) == 0 {
		cfg.Resources = []string{DefaultResourcesDir}
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	if cfg.TargetDir == "" {
		cfg.TargetDir = DefaultTargetDir
	}

	if cfg.CargoBin == "" {
		cfg.CargoBin = DefaultCargoBin
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
