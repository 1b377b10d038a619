package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/oshokin/release-packager/internal/logger"
)

// LockFilename is the dependency lock file pinning exact versions for
// reproducible builds.
const LockFilename = "Cargo.lock"

// releaseProfile is the build profile whose output directory holds the binary.
const releaseProfile = "release"

// errToolchainNotSet is returned when a Cargo value has no executable configured.
var errToolchainNotSet = errors.New("toolchain executable is not set")

// Cargo drives the external build toolchain.
// The zero value is not usable; construct it with New.
type Cargo struct {
	// bin is the toolchain executable name or path.
	bin string
	// dir is the working directory for invocations (the workspace root).
	dir string
}

// New returns a Cargo invoking the given executable inside dir.
// An empty dir means the current working directory.
func New(bin, dir string) *Cargo {
	return &Cargo{bin: bin, dir: dir}
}

// EnsureLockFile generates the dependency lock file when it is absent.
// A present lock file makes this a no-op, keeping the operation idempotent.
func (c *Cargo) EnsureLockFile(ctx context.Context) error {
	lockPath := filepath.Join(c.dir, LockFilename)

	if _, err := os.Stat(lockPath); err == nil {
		logger.DebugKV(ctx, "Lock file already present", "path", lockPath)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", lockPath, err)
	}

	logger.InfoKV(ctx, "Generating lock file", "path", lockPath)

	return c.run(ctx, nil, "generate-lockfile")
}

// BuildRelease cross-compiles the named package for the target triple in
// release mode with link-time optimization enabled.
func (c *Cargo) BuildRelease(ctx context.Context, buildPackage, targetTriple string) error {
	logger.InfoKV(ctx, "Building release binary",
		"package", buildPackage,
		"target", targetTriple)

	env := []string{"CARGO_PROFILE_RELEASE_LTO=true"}

	return c.run(ctx, env,
		"build",
		"--release",
		"--package", buildPackage,
		"--target", targetTriple)
}

// BinaryPath returns the deterministic output location of a built binary:
// <target-dir>/<triple>/release/<binary-name>.
func BinaryPath(targetDir, targetTriple, binaryName string) string {
	return filepath.Join(targetDir, targetTriple, releaseProfile, binaryName)
}

// run executes the toolchain with the provided arguments, streaming its
// output to the packager's own stdout and stderr so build diagnostics
// surface unchanged.
func (c *Cargo) run(ctx context.Context, extraEnv []string, args ...string) error {
	if c.bin == "" {
		return errToolchainNotSet
	}

	logger.Debugf(ctx, "Running %s %s", c.bin, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Dir = c.dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", c.bin, strings.Join(args, " "), err)
	}

	return nil
}
