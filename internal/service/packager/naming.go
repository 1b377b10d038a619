package packager

import (
	"strings"

	"github.com/oshokin/release-packager/internal/archive"
	"github.com/oshokin/release-packager/internal/config"
)

// windowsMarker identifies Windows-family target triples by substring match.
const windowsMarker = "windows"

// executableExtension is appended to binaries built for Windows-family targets.
const executableExtension = ".exe"

// ArchiveName returns the deterministic archive filename:
// <crate-name>-<version-tag>-<target-triple>.tar.gz.
func ArchiveName(cfg *config.Config) string {
	return cfg.CrateName + "-" + cfg.VersionTag + "-" + cfg.TargetTriple + archive.Extension
}

// BinaryFilename returns the binary name with the platform-appropriate
// suffix: ".exe" for Windows-family triples, nothing otherwise.
func BinaryFilename(cfg *config.Config) string {
	if strings.Contains(strings.ToLower(cfg.TargetTriple), windowsMarker) {
		return cfg.BinaryName + executableExtension
	}

	return cfg.BinaryName
}
