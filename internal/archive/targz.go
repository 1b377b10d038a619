package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Extension is the suffix of every archive this package produces.
const Extension = ".tar.gz"

// Create compresses the contents of dir into a gzip-compressed tar file at
// path. Entries are stored relative to dir, so the staged files sit directly
// at the archive root with no intermediate prefix. File modes and
// modification times are preserved in the entry headers.
//
// On failure the partially written archive is removed.
func Create(path, dir string) (err error) {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}

		// No partial archives on any error path.
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	gzWriter := gzip.NewWriter(out)
	tarWriter := tar.NewWriter(gzWriter)

	if err = addTree(tarWriter, dir); err != nil {
		return err
	}

	if err = tarWriter.Close(); err != nil {
		return fmt.Errorf("finalize tar stream: %w", err)
	}

	if err = gzWriter.Close(); err != nil {
		return fmt.Errorf("finalize gzip stream: %w", err)
	}

	return nil
}

// addTree walks dir and writes every entry beneath it into the tar stream.
func addTree(tarWriter *tar.Writer, dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		// The root itself is not an entry.
		if relPath == "." {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return fmt.Errorf("read link %s: %w", path, err)
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("build header for %s: %w", relPath, err)
		}

		// FileInfoHeader only records the base name.
		header.Name = filepath.ToSlash(relPath)
		if entry.IsDir() {
			header.Name += "/"
		}

		if err = tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("write header for %s: %w", relPath, err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return copyFileContents(tarWriter, path)
	})
}

// copyFileContents streams a regular file into the tar stream.
func copyFileContents(tarWriter *tar.Writer, path string) error {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	// Best-effort close, the copy error is the interesting one.
	defer func() {
		_ = file.Close()
	}()

	if _, err = io.Copy(tarWriter, file); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}

	return nil
}
