package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// stageTree builds a small directory tree resembling a staged release:
// a binary at the root and a resources subtree.
func stageTree(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "client"), []byte("binary"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources", "images"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "resources", "images", "logo.png"), []byte("png"), 0o644))

	return dir
}

// readEntries extracts names, modes and contents from a produced archive.
func readEntries(t *testing.T, path string) (map[string]string, map[string]os.FileMode) {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)

	defer func() {
		_ = file.Close()
	}()

	gzReader, err := gzip.NewReader(file)
	require.NoError(t, err)

	contents := make(map[string]string)
	modes := make(map[string]os.FileMode)

	tarReader := tar.NewReader(gzReader)

	for {
		header, readErr := tarReader.Next()
		if readErr == io.EOF {
			break
		}

		require.NoError(t, readErr)

		modes[header.Name] = os.FileMode(header.Mode) //nolint:gosec // Test data modes are small.

		if header.Typeflag == tar.TypeReg {
			data, copyErr := io.ReadAll(tarReader)
			require.NoError(t, copyErr)

			contents[header.Name] = string(data)
		}
	}

	return contents, modes
}

// TestCreate verifies entries land at the archive root with contents and
// modes intact.
func TestCreate(t *testing.T) {
	t.Parallel()

	dir := stageTree(t)
	path := filepath.Join(t.TempDir(), "out.tar.gz")

	require.NoError(t, Create(path, dir))

	contents, modes := readEntries(t, path)
	require.Equal(t, "binary", contents["client"])
	require.Equal(t, "png", contents["resources/images/logo.png"])
	require.Contains(t, modes, "resources/")
	require.Equal(t, os.FileMode(0o755), modes["client"].Perm())
}

// TestCreateMissingDir leaves no partial archive behind.
func TestCreateMissingDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.tar.gz")

	err := Create(path, filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
