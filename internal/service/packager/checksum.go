package packager

import (
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/release-packager/internal/logger"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ChecksumExtension is the suffix of the checksum sidecar file.
	ChecksumExtension = ".sha512"

	// checksumFunction is used to hash the finished archive.
	checksumFunction crypto.Hash = crypto.SHA512

	// checksumFilePermissions is applied to the sidecar file.
	checksumFilePermissions os.FileMode = 0o644
)

var errHashUnavailable = errors.New("hash function unavailable")

// FileChecksum returns checksum bytes for a file using checksumFunction.
func FileChecksum(path string) ([]byte, error) {
	if !checksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := checksumFunction.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// writeChecksumFile writes a sidecar next to the archive holding the
// base64-encoded checksum and the archive's base name.
func writeChecksumFile(ctx context.Context, archivePath string) error {
	checksum, err := FileChecksum(archivePath)
	if err != nil {
		return err
	}

	sidecarPath := archivePath + ChecksumExtension
	line := base64.StdEncoding.EncodeToString(checksum) + "  " + filepath.Base(archivePath) + "\n"

	logger.DebugKV(ctx, "Writing checksum sidecar", "path", sidecarPath)

	if err = os.WriteFile(sidecarPath, []byte(line), checksumFilePermissions); err != nil {
		return fmt.Errorf("write checksum sidecar: %w", err)
	}

	return nil
}
