package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/release-packager/internal/config"
	"github.com/oshokin/release-packager/internal/logger"
	"github.com/oshokin/release-packager/internal/toolchain"
)

// stageBinary copies the freshly built binary from the toolchain output
// directory into the staging root, applying the platform suffix rule to both
// the source lookup and the destination name.
func stageBinary(ctx context.Context, cfg *config.Config, staging string) error {
	name := BinaryFilename(cfg)
	source := toolchain.BinaryPath(cfg.TargetDir, cfg.TargetTriple, name)

	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("built binary not found at %s: %w", source, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("built binary at %s is not a regular file", source)
	}

	logger.InfoKV(ctx, "Staging binary", "source", source)

	return copyFile(filepath.Join(staging, name), source, info)
}

// stageResources copies every configured auxiliary path into the staging
// root, preserving directory structure, permissions and timestamps. A missing
// resource aborts the run.
func stageResources(ctx context.Context, cfg *config.Config, staging string) error {
	for _, resource := range cfg.Resources {
		logger.InfoKV(ctx, "Staging resource", "path", resource)

		destination := filepath.Join(staging, filepath.Base(resource))
		if err := copyTree(destination, resource); err != nil {
			return fmt.Errorf("stage resource %s: %w", resource, err)
		}
	}

	return nil
}

// copyTree copies src to dst recursively. Files keep their mode and
// modification time, symlinks are recreated with the same target.
func copyTree(dst, src string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, linkErr := os.Readlink(src)
		if linkErr != nil {
			return linkErr
		}

		return os.Symlink(target, dst)
	case info.IsDir():
		return copyDir(dst, src, info)
	case info.Mode().IsRegular():
		return copyFile(dst, src, info)
	default:
		return fmt.Errorf("unsupported file type at %s", src)
	}
}

// copyDir recreates a directory and its contents under dst.
func copyDir(dst, src string, info os.FileInfo) error {
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		err = copyTree(filepath.Join(dst, entry.Name()), filepath.Join(src, entry.Name()))
		if err != nil {
			return err
		}
	}

	// Restore the timestamp after the contents settled.
	return os.Chtimes(dst, time.Now(), info.ModTime())
}

// copyFile copies a regular file, preserving its mode and modification time.
func copyFile(dst, src string, info os.FileInfo) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	// Best-effort close on the read side.
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}

	if err = out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, time.Now(), info.ModTime())
}
