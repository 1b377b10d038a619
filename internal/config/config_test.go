package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Nil configuration.
	require.Error(t, Validate(nil))

	// Missing crate name.
	cfg := new(Config)

	require.ErrorIs(t, Validate(cfg), errCrateNameRequired)

	// Missing version tag.
	cfg = &Config{CrateName: "conwayste"}
	require.ErrorIs(t, Validate(cfg), errVersionTagRequired)

	// Missing target triple.
	cfg = &Config{CrateName: "conwayste", VersionTag: "v1.2.3"}
	require.ErrorIs(t, Validate(cfg), errTargetTripleRequired)

	// Missing build package.
	cfg = &Config{
		CrateName:    "conwayste",
		VersionTag:   "v1.2.3",
		TargetTriple: "x86_64-unknown-linux-gnu",
	}
	require.ErrorIs(t, Validate(cfg), errBuildPackageRequired)

	// Complete core inputs get defaults filled in.
	cfg.BuildPackage = "client"
	require.NoError(t, Validate(cfg))
	require.Equal(t, "client", cfg.BinaryName)
	require.Equal(t, []string{DefaultResourcesDir}, cfg.Resources)
	require.Equal(t, ".", cfg.OutputDir)
	require.Equal(t, DefaultTargetDir, cfg.TargetDir)
	require.Equal(t, DefaultCargoBin, cfg.CargoBin)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestValidateKeepsExplicitValues ensures defaults never clobber configured values.
func TestValidateKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		CrateName:    "conwayste",
		VersionTag:   "v1.2.3",
		TargetTriple: "x86_64-pc-windows-msvc",
		BuildPackage: "client",
		BinaryName:   "conwayste-client",
		Resources:    []string{"assets", "LICENSE"},
		OutputDir:    "dist",
		TargetDir:    "build-out",
		CargoBin:     "/opt/rust/bin/cargo",
		Timeout:      time.Minute,
	}

	require.NoError(t, Validate(cfg))
	require.Equal(t, "conwayste-client", cfg.BinaryName)
	require.Equal(t, []string{"assets", "LICENSE"}, cfg.Resources)
	require.Equal(t, "dist", cfg.OutputDir)
	require.Equal(t, "build-out", cfg.TargetDir)
	require.Equal(t, "/opt/rust/bin/cargo", cfg.CargoBin)
	require.Equal(t, time.Minute, cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		CrateName:    "conwayste",
		VersionTag:   "v1.2.3",
		TargetTriple: "x86_64-unknown-linux-gnu",
		BuildPackage: "client",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.CrateName, loaded.CrateName)
	require.Equal(t, cfg.VersionTag, loaded.VersionTag)
	require.Equal(t, cfg.TargetTriple, loaded.TargetTriple)
	require.Equal(t, cfg.BuildPackage, loaded.BuildPackage)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadMissingFile reports a read error instead of silently defaulting.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
