package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeCargo writes a shell script that appends its arguments to a log file
// and returns its path. The script exits with the provided code.
func fakeCargo(t *testing.T, dir string, exitCode int) (bin, argsLog string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain script requires a POSIX shell")
	}

	argsLog = filepath.Join(dir, "cargo-args.log")
	bin = filepath.Join(dir, "cargo")

	script := "#!/bin/sh\necho \"$@\" >> " + argsLog + "\nexit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	return bin, argsLog
}

// TestEnsureLockFileIsIdempotent verifies that a present lock file suppresses
// the toolchain invocation entirely.
func TestEnsureLockFileIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LockFilename), nil, 0o644))

	// A missing executable would fail if it were ever invoked.
	cargo := New(filepath.Join(dir, "no-such-cargo"), dir)
	require.NoError(t, cargo.EnsureLockFile(context.Background()))
}

// TestEnsureLockFileInvokesToolchain verifies the generate-lockfile call when
// the lock file is absent.
func TestEnsureLockFileInvokesToolchain(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bin, argsLog := fakeCargo(t, dir, 0)

	cargo := New(bin, dir)
	require.NoError(t, cargo.EnsureLockFile(context.Background()))

	recorded, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	require.Contains(t, string(recorded), "generate-lockfile")
}

// TestBuildRelease verifies the build invocation carries the package and
// target selectors in release mode.
func TestBuildRelease(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bin, argsLog := fakeCargo(t, dir, 0)

	cargo := New(bin, dir)
	err := cargo.BuildRelease(context.Background(), "client", "x86_64-unknown-linux-gnu")
	require.NoError(t, err)

	recorded, err := os.ReadFile(argsLog)
	require.NoError(t, err)
	require.Contains(t, string(recorded), "build --release")
	require.Contains(t, string(recorded), "--package client")
	require.Contains(t, string(recorded), "--target x86_64-unknown-linux-gnu")
}

// TestBuildReleaseFailure propagates a non-zero toolchain exit.
func TestBuildReleaseFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bin, _ := fakeCargo(t, dir, 1)

	cargo := New(bin, dir)
	err := cargo.BuildRelease(context.Background(), "client", "x86_64-unknown-linux-gnu")
	require.Error(t, err)
}

// TestBinaryPath checks the deterministic output path layout.
func TestBinaryPath(t *testing.T) {
	t.Parallel()

	got := BinaryPath("target", "x86_64-unknown-linux-gnu", "client")
	require.Equal(t, filepath.Join("target", "x86_64-unknown-linux-gnu", "release", "client"), got)
}
