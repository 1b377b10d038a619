package packager

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/release-packager/internal/logger"
)

const (
	// MarkerFilename marks that a packaging run owns the working directory,
	// preventing two runs from clobbering the same output archive.
	MarkerFilename = "release-packager-marker.bin"

	// markerLifetime is the period after which a leftover marker from a
	// crashed run is considered stale. Release builds can take a while.
	markerLifetime = 30 * time.Minute

	// packagerExecutable is the base name used for stale-process cleanup.
	packagerExecutable = "release-packager"
)

// IsPackagerRunningNow checks presence of a run marker and attempts recovery
// if it looks stale.
func IsPackagerRunningNow(ctx context.Context) bool {
	logger.Debug(ctx, "Checking for the presence of a run marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The run marker is too old, attempting cleanup")

		if err = terminateProcessByName(packagerProcessName()); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Run marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// createRunMarker claims the working directory for this run.
func createRunMarker() error {
	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return err
	}

	return marker.Close()
}

// removeRunMarker releases the working directory.
func removeRunMarker(ctx context.Context) {
	if err := os.Remove(MarkerFilename); err != nil {
		logger.Warnf(ctx, "Unable to remove run marker: %v", err)
	}
}

// terminateProcessByName tries to kill processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

// packagerProcessName returns the packager's executable name for this platform.
func packagerProcessName() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), windowsMarker) {
		return packagerExecutable + executableExtension
	}

	return packagerExecutable
}
